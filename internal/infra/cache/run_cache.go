// Package cache provides a read-through LRU cache in front of a RunRepository.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/whhaicheng/SimDesk/internal/app/usecase"
	"github.com/whhaicheng/SimDesk/internal/domain/simulation"
)

// RunRepository caches FindByID results of another RunRepository.
// Entries hold snapshots and are dropped on every write to the same run.
type RunRepository struct {
	next    usecase.RunRepository
	cache   *expirable.LRU[string, simulation.Snapshot]
	metrics usecase.Metrics
}

// NewRunRepository wraps next with an LRU of maxSize entries that expire after ttl.
// metrics may be nil.
func NewRunRepository(next usecase.RunRepository, maxSize int, ttl time.Duration, metrics usecase.Metrics) *RunRepository {
	if metrics == nil {
		metrics = usecase.NopMetrics{}
	}
	return &RunRepository{
		next:    next,
		cache:   expirable.NewLRU[string, simulation.Snapshot](maxSize, nil, ttl),
		metrics: metrics,
	}
}

// Insert stores the run and caches it.
func (r *RunRepository) Insert(ctx context.Context, run *simulation.Run) error {
	if err := r.next.Insert(ctx, run); err != nil {
		return err
	}
	r.cache.Add(run.ID(), run.Snapshot())
	return nil
}

// Update stores the run and refreshes the cached entry.
func (r *RunRepository) Update(ctx context.Context, run *simulation.Run) error {
	r.cache.Remove(run.ID())
	if err := r.next.Update(ctx, run); err != nil {
		return err
	}
	r.cache.Add(run.ID(), run.Snapshot())
	return nil
}

// FindByID serves from cache when possible. Absent runs are not cached.
func (r *RunRepository) FindByID(ctx context.Context, id string) (*simulation.Run, error) {
	if snap, ok := r.cache.Get(id); ok {
		r.metrics.CacheHit()
		return simulation.Restore(snap)
	}
	r.metrics.CacheMiss()

	run, err := r.next.FindByID(ctx, id)
	if err != nil || run == nil {
		return run, err
	}
	r.cache.Add(id, run.Snapshot())
	return run, nil
}

// Exists answers from cache when the run is cached.
func (r *RunRepository) Exists(ctx context.Context, id string) (bool, error) {
	if r.cache.Contains(id) {
		return true, nil
	}
	return r.next.Exists(ctx, id)
}

// Delete removes the run from both the cache and the store.
func (r *RunRepository) Delete(ctx context.Context, id string) error {
	r.cache.Remove(id)
	return r.next.Delete(ctx, id)
}

// AllForSearch always reads the underlying store.
func (r *RunRepository) AllForSearch(ctx context.Context, filter simulation.Filter) ([]*simulation.Run, error) {
	return r.next.AllForSearch(ctx, filter)
}

// Len returns the number of cached runs.
func (r *RunRepository) Len() int {
	return r.cache.Len()
}
