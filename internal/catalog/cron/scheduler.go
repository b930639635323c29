package cronjob

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Reloader is implemented by catalog.Catalog.
type Reloader interface {
	ReloadIfEmpty() bool
}

// Scheduler periodically reloads the component catalog while it is empty, so
// a catalog file deployed after startup is served without waiting for a
// request to trigger the lazy reload.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	target Reloader
	logger *zap.Logger
}

func NewScheduler(spec string, target Reloader, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:   cron.New(),
		spec:   spec,
		target: target,
		logger: logger.With(zap.String("component", "catalog-refresh")),
	}
}

// Start registers the refresh job and starts the cron runner.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runOnce); err != nil {
		return fmt.Errorf("schedule catalog refresh %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.Info("catalog refresh scheduled", zap.String("spec", s.spec))
	return nil
}

// Stop stops the runner; the returned context is done once a running job ends.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) runOnce() {
	if s.target.ReloadIfEmpty() {
		s.logger.Info("catalog was empty, reloaded")
	}
}
