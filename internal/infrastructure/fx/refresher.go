package fx

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresher keeps the rate cache warm on a cron schedule
type Refresher struct {
	cron     *cron.Cron
	provider *Provider
	schedule string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewRefresher creates a refresher. schedule uses the six-field cron format with
// a leading seconds field, e.g. "0 */30 * * * *".
func NewRefresher(provider *Provider, schedule string, logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{
		cron:     cron.New(cron.WithSeconds()),
		provider: provider,
		schedule: schedule,
		timeout:  30 * time.Second,
		logger:   logger,
	}
}

// Start schedules the refresh job, runs it once immediately and starts the scheduler
func (r *Refresher) Start() error {
	if _, err := r.cron.AddFunc(r.schedule, r.refresh); err != nil {
		return err
	}
	r.logger.Info("starting fx refresher", zap.String("schedule", r.schedule))
	go r.refresh()
	r.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running refresh to finish
func (r *Refresher) Stop() {
	r.logger.Info("stopping fx refresher")
	<-r.cron.Stop().Done()
}

func (r *Refresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if _, err := r.provider.Refresh(ctx); err != nil {
		r.logger.Warn("scheduled fx refresh failed", zap.Error(err))
	}
}
