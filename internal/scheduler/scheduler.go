package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Service is the part of the monitor driven by the scheduler.
type Service interface {
	RefreshAll(ctx context.Context)
	AlertTick(ctx context.Context) bool
}

// Options contains scheduling periods.
type Options struct {
	// RefreshInterval is the minimal time between two refresh cycles.
	RefreshInterval time.Duration
	// RefreshPoll is how often RefreshInterval is checked.
	RefreshPoll time.Duration
	// AlertPoll is how often the daily alert gate is checked.
	AlertPoll time.Duration
}

// Scheduler runs refresh cycles and daily alert scans in the background.
// Each job is skipped while its previous run is still in progress.
type Scheduler struct {
	cron    *cron.Cron
	svc     Service
	logger  *zap.Logger
	clock   clockwork.Clock
	options Options

	lastRefresh time.Time
}

// New returns Scheduler. Call Run to start it.
func New(logger *zap.Logger, svc Service, clock clockwork.Clock, options Options) *Scheduler {
	cl := cronLogger{logger: logger.Sugar()}

	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		svc:     svc,
		logger:  logger,
		clock:   clock,
		options: options,
	}
}

// Run performs the first refresh cycle, then keeps polling until ctx is
// done. Jobs in progress are waited for before Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	if _, err := s.cron.AddFunc(every(s.options.RefreshPoll), func() { s.refreshTick(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule refresh: %w", err)
	}
	if _, err := s.cron.AddFunc(every(s.options.AlertPoll), func() { s.alertTick(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule alerts: %w", err)
	}

	s.refreshTick(ctx)

	s.cron.Start()
	s.logger.Info("scheduler started",
		zap.Duration("refresh_interval", s.options.RefreshInterval),
		zap.Duration("refresh_poll", s.options.RefreshPoll),
		zap.Duration("alert_poll", s.options.AlertPoll),
	)

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")

	return nil
}

// refreshTick starts a refresh cycle if RefreshInterval has passed since
// the previous one started.
func (s *Scheduler) refreshTick(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}

	now := s.clock.Now()
	if !s.lastRefresh.IsZero() && now.Sub(s.lastRefresh) < s.options.RefreshInterval {
		return false
	}
	s.lastRefresh = now

	s.svc.RefreshAll(ctx)
	return true
}

func (s *Scheduler) alertTick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.svc.AlertTick(ctx)
}

func every(d time.Duration) string {
	if d < time.Second {
		d = time.Second
	}
	return "@every " + d.String()
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw("cron: "+msg, append(keysAndValues, zap.Error(err))...)
}
