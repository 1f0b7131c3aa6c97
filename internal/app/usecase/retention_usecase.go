package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/whhaicheng/SimDesk/internal/domain/simulation"
)

// PruneResult summarizes one retention pass.
type PruneResult struct {
	RunsDeleted     int
	ProjectsTrimmed int
}

// RetentionUseCase removes old run history and trims the recent projects list.
type RetentionUseCase struct {
	runRepo     RunRepository
	simulations *SimulationUseCase
	projects    *ProjectUseCase
	prefsRepo   PreferencesRepository
	metrics     Metrics
}

// NewRetentionUseCase creates a new retention use case. metrics may be nil.
func NewRetentionUseCase(
	runRepo RunRepository,
	simulations *SimulationUseCase,
	projects *ProjectUseCase,
	prefsRepo PreferencesRepository,
	metrics Metrics,
) *RetentionUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &RetentionUseCase{
		runRepo:     runRepo,
		simulations: simulations,
		projects:    projects,
		prefsRepo:   prefsRepo,
		metrics:     metrics,
	}
}

// Prune deletes finished runs recorded before now minus the retention period.
// PENDING and RUNNING runs are never deleted. A zero retention keeps all runs.
func (uc *RetentionUseCase) Prune(ctx context.Context, now time.Time) (PruneResult, error) {
	var res PruneResult

	prefs, err := uc.prefsRepo.Get(ctx)
	if err != nil {
		return res, fmt.Errorf("get preferences: %w", err)
	}

	if prefs.HistoryRetentionDays > 0 {
		cutoff := now.UTC().AddDate(0, 0, -prefs.HistoryRetentionDays)
		candidates, err := uc.runRepo.AllForSearch(ctx, simulation.Filter{RecordedTo: &cutoff})
		if err != nil {
			return res, fmt.Errorf("load runs: %w", err)
		}
		for _, run := range candidates {
			if run.Status().IsActive() || !run.RecordedAt().Before(cutoff) {
				continue
			}
			if _, err := uc.simulations.DeleteRun(ctx, run.ID()); err != nil {
				if errors.Is(err, ErrNotFound) {
					continue
				}
				return res, err
			}
			res.RunsDeleted++
		}
		uc.metrics.RunsPruned(res.RunsDeleted)
	}

	trimmed, err := uc.projects.Trim(ctx, prefs.RecentProjectsLimit)
	if err != nil {
		return res, err
	}
	res.ProjectsTrimmed = trimmed

	slog.Info("Retention: Prune finished", "runs_deleted", res.RunsDeleted, "projects_trimmed", res.ProjectsTrimmed)
	return res, nil
}
