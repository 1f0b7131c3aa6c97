// Package usecase provides recent projects business logic.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/whhaicheng/SimDesk/internal/domain/project"
	"github.com/whhaicheng/SimDesk/internal/domain/search"
	"github.com/whhaicheng/SimDesk/internal/domain/validation"
)

// ProjectUseCase manages the recent projects list.
type ProjectUseCase struct {
	projectRepo ProjectRepository
	prefsRepo   PreferencesRepository
	now         func() time.Time
}

// NewProjectUseCase creates a new project use case.
func NewProjectUseCase(projectRepo ProjectRepository, prefsRepo PreferencesRepository) *ProjectUseCase {
	return &ProjectUseCase{
		projectRepo: projectRepo,
		prefsRepo:   prefsRepo,
		now:         time.Now,
	}
}

// Open records that the project at path was opened and trims the list to the
// preferred length.
func (uc *ProjectUseCase) Open(ctx context.Context, path, name, toolVersion string) (*project.RecentProject, error) {
	openedAt := uc.now().UTC()

	p, err := uc.projectRepo.FindByPath(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}
	if p == nil {
		p, err = project.New(path, name, toolVersion, openedAt)
	} else {
		err = p.Reopen(name, toolVersion, openedAt)
	}
	if err != nil {
		return nil, err
	}

	if err := uc.projectRepo.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}

	prefs, err := uc.prefsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	if _, err := uc.Trim(ctx, prefs.RecentProjectsLimit); err != nil {
		return nil, err
	}
	return p, nil
}

// Search filters the recent projects and returns one page, most recently opened first.
func (uc *ProjectUseCase) Search(ctx context.Context, filter project.Filter, page search.PageRequest) (search.PageResult[*project.RecentProject], error) {
	if err := page.Validate(); err != nil {
		return search.PageResult[*project.RecentProject]{}, err
	}
	candidates, err := uc.projectRepo.AllForSearch(ctx, filter)
	if err != nil {
		return search.PageResult[*project.RecentProject]{}, fmt.Errorf("load projects: %w", err)
	}
	return search.Search(candidates, filter.Spec(), page, project.SortKey)
}

// Remove drops one project from the list.
func (uc *ProjectUseCase) Remove(ctx context.Context, path string) error {
	if err := uc.projectRepo.Delete(ctx, path); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// Clear empties the list.
func (uc *ProjectUseCase) Clear(ctx context.Context) error {
	if err := uc.projectRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear projects: %w", err)
	}
	slog.Info("Projects: Recent projects cleared")
	return nil
}

// Trim keeps the limit most recently opened projects and returns how many were removed.
func (uc *ProjectUseCase) Trim(ctx context.Context, limit int) (int, error) {
	if limit < 1 || limit > search.MaxPerPage {
		return 0, validation.Newf("limit", "limit must be between 1 and %d", search.MaxPerPage)
	}

	all, err := uc.projectRepo.AllForSearch(ctx, project.Filter{})
	if err != nil {
		return 0, fmt.Errorf("load projects: %w", err)
	}
	if len(all) <= limit {
		return 0, nil
	}

	kept, err := search.Search(all, search.Spec[*project.RecentProject]{}, search.PageRequest{Page: 1, PerPage: limit}, project.SortKey)
	if err != nil {
		return 0, err
	}
	keep := make(map[string]bool, len(kept.Items))
	for _, p := range kept.Items {
		keep[p.Path] = true
	}

	removed := 0
	for _, p := range all {
		if keep[p.Path] {
			continue
		}
		if err := uc.projectRepo.Delete(ctx, p.Path); err != nil {
			return removed, fmt.Errorf("delete project: %w", err)
		}
		removed++
	}
	slog.Debug("Projects: Trimmed recent projects", "removed", removed, "limit", limit)
	return removed, nil
}
