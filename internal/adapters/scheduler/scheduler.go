// Package scheduler runs periodic maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"chyrp/internal/domain"
)

// Scheduler wraps a cron runner. Jobs run one at a time per entry; a run that is still
// going when the next tick arrives makes that tick a no-op.
type Scheduler struct {
	cron       *cron.Cron
	logger     *slog.Logger
	jobTimeout time.Duration
}

// New returns a stopped Scheduler. Each job run gets its own context bounded by jobTimeout.
func New(logger *slog.Logger, jobTimeout time.Duration) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:     logger,
		jobTimeout: jobTimeout,
	}
}

// Add registers fn under name on the standard 5-field spec (descriptors such as
// "@daily" and "@every 1h" are accepted).
func (s *Scheduler) Add(name, spec string, fn func(ctx context.Context) error) error {
	if _, err := s.cron.AddFunc(spec, s.job(name, fn)); err != nil {
		return fmt.Errorf("schedule %s %q: %w", name, spec, err)
	}
	s.logger.Info("job scheduled", "job", name, "spec", spec)
	return nil
}

func (s *Scheduler) job(name string, fn func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()
		start := time.Now()
		if err := fn(ctx); err != nil {
			s.logger.ErrorContext(ctx, "job failed", "job", name, "error", err)
			return
		}
		s.logger.InfoContext(ctx, "job finished", "job", name, "duration_ms", time.Since(start).Milliseconds())
	}
}

// AddMediaCleanup schedules removal of media rows no post references.
func (s *Scheduler) AddMediaCleanup(spec string, media domain.MediaService) error {
	return s.Add("media-cleanup", spec, func(ctx context.Context) error {
		_, err := media.CleanupOrphans(ctx)
		return err
	})
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stopped before running jobs finished")
	}
}
