// Package scheduler runs history retention on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/whhaicheng/SimDesk/internal/app/usecase"
)

// Pruner is implemented by usecase.RetentionUseCase.
type Pruner interface {
	Prune(ctx context.Context, now time.Time) (usecase.PruneResult, error)
}

// Scheduler triggers a Pruner on a standard cron expression.
type Scheduler struct {
	cron   *cron.Cron
	pruner Pruner
	now    func() time.Time

	mu      sync.Mutex
	ctx     context.Context
	entryID cron.EntryID
	running bool
}

// New creates a scheduler. Overlapping runs are skipped.
func New(pruner Pruner) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		pruner: pruner,
		now:    time.Now,
	}
}

// Start registers the retention job under spec and starts the cron loop.
// ctx is passed to every job run; cancel it and call Stop to shut down.
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler already started")
	}

	id, err := s.cron.AddFunc(spec, func() { s.RunOnce(s.jobContext()) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	s.ctx = ctx
	s.entryID = id
	s.running = true
	s.cron.Start()
	slog.Info("Retention scheduler started", "schedule", spec, "next", s.cron.Entry(id).Next)
	return nil
}

func (s *Scheduler) jobContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

// RunOnce performs a single prune and logs the outcome.
func (s *Scheduler) RunOnce(ctx context.Context) (usecase.PruneResult, error) {
	if err := ctx.Err(); err != nil {
		return usecase.PruneResult{}, err
	}
	res, err := s.pruner.Prune(ctx, s.now())
	if err != nil {
		slog.Error("Retention run failed", "error", err)
		return res, err
	}
	slog.Info("Retention run completed", "runs_deleted", res.RunsDeleted, "projects_trimmed", res.ProjectsTrimmed)
	return res, nil
}

// Next returns the next scheduled run, or the zero time when not started.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cron.Remove(s.entryID)
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	slog.Info("Retention scheduler stopped")
}
