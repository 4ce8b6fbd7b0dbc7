package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// BuildRunner executes one snapshot build. The runner serializes
// concurrent calls itself, so an overrunning build simply delays the
// next tick instead of overlapping it.
type BuildRunner interface {
	Run(ctx context.Context) error
}

// Scheduler runs the build pipeline on a cron schedule in serve mode.
type Scheduler struct {
	runner   BuildRunner
	schedule string
	cron     *cron.Cron
}

func NewScheduler(runner BuildRunner, schedule string) *Scheduler {
	return &Scheduler{
		runner:   runner,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start validates the schedule, registers the build job, and starts
// the cron loop in the background.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		start := time.Now()
		if err := s.runner.Run(context.Background()); err != nil {
			slog.Error("Scheduled build failed", "error", err)
			return
		}
		slog.Info("Scheduled build completed", "duration", time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("invalid build schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	slog.Info("Build scheduler started", "schedule", s.schedule)
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("Build scheduler stopped")
}
