package services

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// slowCallThreshold promotes a timing from debug to info
const slowCallThreshold = 2 * time.Second

// TrackTime logs how long funcName has run since start, meant for defer
func TrackTime(funcName string, start time.Time) {
	elapsed := time.Since(start)
	entry := log.WithFields(log.Fields{
		"func":       funcName,
		"elapsed_ms": elapsed.Milliseconds(),
	})
	if elapsed >= slowCallThreshold {
		entry.Info("slow call")
		return
	}
	entry.Debug("call timing")
}
