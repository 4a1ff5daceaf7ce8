package services

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestTrackTime(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()
	prev := log.GetLevel()
	log.SetLevel(log.DebugLevel)
	defer log.SetLevel(prev)

	TrackTime("fast", time.Now())
	entry := hook.LastEntry()
	if entry == nil || entry.Level != log.DebugLevel || entry.Data["func"] != "fast" {
		t.Fatalf("expected a debug timing for fast, got %+v", entry)
	}

	TrackTime("slow", time.Now().Add(-3*time.Second))
	entry = hook.LastEntry()
	if entry == nil || entry.Level != log.InfoLevel || entry.Message != "slow call" {
		t.Fatalf("expected an info slow call entry, got %+v", entry)
	}
	if ms, ok := entry.Data["elapsed_ms"].(int64); !ok || ms < 3000 {
		t.Errorf("expected elapsed_ms >= 3000, got %v", entry.Data["elapsed_ms"])
	}
}
