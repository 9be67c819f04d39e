package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultInterval is how often the background reconciliation runs when no
// interval is configured.
const DefaultInterval = 5 * time.Minute

// Scheduler owns the periodic reconciliation job. It runs independently of
// request handling and catches out-of-band edits to the flat files that
// never went through the API.
type Scheduler struct {
	cron     *cron.Cron
	engine   *Engine
	interval time.Duration
}

// NewScheduler creates a new scheduler instance
func NewScheduler(engine *Engine, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		engine:   engine,
		interval: interval,
	}
}

// Start begins the periodic reconciliation job
func (s *Scheduler) Start() {
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), s.run)
	if err != nil {
		zap.S().Errorw("failed to register reconciliation job", "error", err)
		return
	}
	s.cron.Start()
	zap.S().Infow("reconciliation scheduler started", "interval", s.interval.String())
}

// Stop gracefully stops the scheduler, waiting for a running pass to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("reconciliation scheduler stopped")
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	s.engine.Reconcile(ctx)
	zap.S().Info("data synchronized between flat files and document store")
}
