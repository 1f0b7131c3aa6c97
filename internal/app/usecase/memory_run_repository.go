// Package usecase provides the in-memory run repository used by tests and the CLI's --memory mode.
package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/whhaicheng/SimDesk/internal/domain/simulation"
)

// MemoryRunRepository provides an in-memory implementation of RunRepository.
// It stores snapshots, so callers never share a *simulation.Run with the store.
type MemoryRunRepository struct {
	runs  map[string]simulation.Snapshot
	order []string // Insertion order
	mu    sync.RWMutex
}

// NewMemoryRunRepository creates a new in-memory run repository.
func NewMemoryRunRepository() *MemoryRunRepository {
	return &MemoryRunRepository{
		runs: make(map[string]simulation.Snapshot),
	}
}

// Insert stores a new run.
func (r *MemoryRunRepository) Insert(ctx context.Context, run *simulation.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.runs[run.ID()]; ok {
		return &ConflictError{Entity: "run", ID: run.ID()}
	}
	r.runs[run.ID()] = run.Snapshot()
	r.order = append(r.order, run.ID())
	slog.Debug("MemoryRunRepository: Inserted run", "id", run.ID(), "status", run.Status())
	return nil
}

// Update replaces a stored run.
func (r *MemoryRunRepository) Update(ctx context.Context, run *simulation.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.runs[run.ID()]; !ok {
		return &NotFoundError{Entity: "run", ID: run.ID()}
	}
	r.runs[run.ID()] = run.Snapshot()
	slog.Debug("MemoryRunRepository: Updated run", "id", run.ID(), "status", run.Status())
	return nil
}

// FindByID finds a run by its ID.
func (r *MemoryRunRepository) FindByID(ctx context.Context, id string) (*simulation.Run, error) {
	r.mu.RLock()
	snap, ok := r.runs[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return simulation.Restore(snap)
}

// Exists reports whether a run is stored.
func (r *MemoryRunRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.runs[id]
	return ok, nil
}

// Delete deletes a run by its ID.
func (r *MemoryRunRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.runs[id]; !ok {
		return &NotFoundError{Entity: "run", ID: id}
	}
	delete(r.runs, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	slog.Debug("MemoryRunRepository: Deleted run", "id", id)
	return nil
}

// AllForSearch returns every stored run in insertion order.
// Filtering is left to search.Search.
func (r *MemoryRunRepository) AllForSearch(ctx context.Context, _ simulation.Filter) ([]*simulation.Run, error) {
	r.mu.RLock()
	snaps := make([]simulation.Snapshot, 0, len(r.order))
	for _, id := range r.order {
		snaps = append(snaps, r.runs[id])
	}
	r.mu.RUnlock()

	runs := make([]*simulation.Run, 0, len(snaps))
	for _, s := range snaps {
		run, err := simulation.Restore(s)
		if err != nil {
			return nil, NewStorageError("restore run", err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}
