package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/whhaicheng/SimDesk/internal/domain/project"
)

// MemoryProjectRepository provides an in-memory implementation of ProjectRepository.
type MemoryProjectRepository struct {
	projects map[string]project.RecentProject // Keyed by path
	order    []string
	mu       sync.RWMutex
}

// NewMemoryProjectRepository creates a new in-memory project repository.
func NewMemoryProjectRepository() *MemoryProjectRepository {
	return &MemoryProjectRepository{
		projects: make(map[string]project.RecentProject),
	}
}

// Upsert inserts or replaces the entry for the project's path.
func (r *MemoryProjectRepository) Upsert(ctx context.Context, p *project.RecentProject) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[p.Path]; !ok {
		r.order = append(r.order, p.Path)
	}
	r.projects[p.Path] = *p
	slog.Debug("MemoryProjectRepository: Saved project", "path", p.Path, "open_count", p.OpenCount)
	return nil
}

// FindByPath returns the entry for path, or nil.
func (r *MemoryProjectRepository) FindByPath(ctx context.Context, path string) (*project.RecentProject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.projects[path]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// Delete removes the entry for path.
func (r *MemoryProjectRepository) Delete(ctx context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[path]; !ok {
		return &NotFoundError{Entity: "project", ID: path}
	}
	delete(r.projects, path)
	for i, p := range r.order {
		if p == path {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// DeleteAll clears the list.
func (r *MemoryProjectRepository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects = make(map[string]project.RecentProject)
	r.order = nil
	return nil
}

// AllForSearch returns copies of every entry in insertion order.
func (r *MemoryProjectRepository) AllForSearch(ctx context.Context, _ project.Filter) ([]*project.RecentProject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*project.RecentProject, 0, len(r.order))
	for _, path := range r.order {
		p := r.projects[path]
		out = append(out, &p)
	}
	return out, nil
}
