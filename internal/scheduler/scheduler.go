// Package scheduler runs periodic maintenance on a cron clock.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"jobboard/internal/logging"
)

type TokenSweeper interface {
	SweepExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

type Scheduler struct {
	cron   *cron.Cron
	logger logging.Logger
	now    func() time.Time
	ctx    context.Context
	cancel context.CancelFunc
}

func New(logger logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.With("component", "scheduler")
	cl := cronLogger{l: logger}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		logger: logger,
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddTokenSweep clears reset tokens whose expiry has passed.
func (s *Scheduler) AddTokenSweep(spec string, users TokenSweeper) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.sweepTokens(users)
	})
	if err != nil {
		return fmt.Errorf("scheduler: token sweep %q: %w", spec, err)
	}
	return nil
}

func (s *Scheduler) sweepTokens(users TokenSweeper) {
	ctx, cancel := context.WithTimeout(s.ctx, 30*time.Second)
	defer cancel()

	n, err := users.SweepExpiredResetTokens(ctx, s.now())
	if err != nil {
		s.logger.Error(ctx, "reset token sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info(ctx, "reset tokens swept", "count", n)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info(s.ctx, "scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop cancels running jobs and waits for them, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn(ctx, "scheduler stop timed out")
	}
}

type cronLogger struct {
	l logging.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(context.Background(), msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(context.Background(), msg, append(keysAndValues, "error", err)...)
}
