package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whhaicheng/SimDesk/internal/app/usecase"
	"github.com/whhaicheng/SimDesk/internal/domain/simulation"
)

type countingRepo struct {
	*usecase.MemoryRunRepository
	finds int
}

func (r *countingRepo) FindByID(ctx context.Context, id string) (*simulation.Run, error) {
	r.finds++
	return r.MemoryRunRepository.FindByID(ctx, id)
}

type hitMiss struct {
	usecase.NopMetrics
	hits, misses int
}

func (m *hitMiss) CacheHit()  { m.hits++ }
func (m *hitMiss) CacheMiss() { m.misses++ }

func newRun(t *testing.T) *simulation.Run {
	t.Helper()
	run, err := simulation.Create(
		simulation.Descriptor{ProjectPath: "/p/x.sim", ProjectName: "X", ToolVersion: "1", InputConfig: "{}"},
		simulation.Telemetry{},
	)
	require.NoError(t, err)
	return run
}

func setup(t *testing.T) (*RunRepository, *countingRepo, *hitMiss) {
	t.Helper()
	backing := &countingRepo{MemoryRunRepository: usecase.NewMemoryRunRepository()}
	metrics := &hitMiss{}
	return NewRunRepository(backing, 16, time.Minute, metrics), backing, metrics
}

func TestRunRepository_ReadThrough(t *testing.T) {
	ctx := context.Background()
	repo, backing, metrics := setup(t)

	run := newRun(t)
	require.NoError(t, backing.Insert(ctx, run))

	first, err := repo.FindByID(ctx, run.ID())
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, run.ID())
	require.NoError(t, err)

	assert.Equal(t, run.Snapshot(), first.Snapshot())
	assert.Equal(t, run.Snapshot(), second.Snapshot())
	assert.Equal(t, 1, backing.finds)
	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 1, metrics.misses)
}

func TestRunRepository_InvalidatedOnWrite(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := setup(t)

	run := newRun(t)
	require.NoError(t, repo.Insert(ctx, run))
	require.NoError(t, run.MarkRunning())
	require.NoError(t, repo.Update(ctx, run))

	found, err := repo.FindByID(ctx, run.ID())
	require.NoError(t, err)
	assert.Equal(t, simulation.StatusRunning, found.Status())

	require.NoError(t, repo.Delete(ctx, run.ID()))
	assert.Zero(t, repo.Len())

	found, err = repo.FindByID(ctx, run.ID())
	require.NoError(t, err)
	assert.Nil(t, found)

	ok, err := repo.Exists(ctx, run.ID())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunRepository_FailedUpdateDropsEntry(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := setup(t)

	// Never inserted, so the backing store rejects the update.
	run := newRun(t)
	err := repo.Update(ctx, run)
	assert.ErrorIs(t, err, usecase.ErrNotFound)
	assert.Zero(t, repo.Len())
}

func TestRunRepository_CachedCopyIsIsolated(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := setup(t)

	run := newRun(t)
	require.NoError(t, repo.Insert(ctx, run))

	found, err := repo.FindByID(ctx, run.ID())
	require.NoError(t, err)
	require.NoError(t, found.Cancel())

	again, err := repo.FindByID(ctx, run.ID())
	require.NoError(t, err)
	assert.Equal(t, simulation.StatusPending, again.Status())
}
