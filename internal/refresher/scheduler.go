package refresher

import (
	"context"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Scheduler runs a Refresher on a cron schedule
type Scheduler struct {
	cron      *cron.Cron
	refresher *Refresher
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewScheduler registers r under schedule. Accepted forms are standard five-field
// cron specs and descriptors such as "@every 6h" or "@daily".
// Overlapping runs are skipped.
func NewScheduler(schedule string, r *Refresher) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		refresher: r,
		ctx:       ctx,
		cancel:    cancel,
	}

	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		cancel()
		return nil, err
	}
	log.Infof("fund refresh scheduled %q for %d tickers", schedule, len(r.Tickers()))
	return s, nil
}

func (s *Scheduler) run() {
	log.Debug("running scheduled fund refresh")
	res := s.refresher.RefreshAll(s.ctx)
	if len(res.Failed) > 0 {
		log.Warnf("scheduled refresh failed for %v", res.Failed)
	}
}

// Start starts the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info("refresh scheduler started")
}

// Stop cancels a running refresh and waits for it to return
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	log.Info("refresh scheduler stopped")
}
