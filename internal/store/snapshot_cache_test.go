package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/fpl-optimizer/internal/optimizer"
)

type countingLoader struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (l *countingLoader) Snapshot(_ context.Context, start, window int) (*optimizer.Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return &optimizer.Snapshot{Gameweek: start, Version: "v"}, nil
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func TestSnapshotCache_Memoises(t *testing.T) {
	loader := &countingLoader{}
	cache := NewSnapshotCache(loader, nil)
	ctx := context.Background()

	first, err := cache.Snapshot(ctx, 5, 1)
	require.NoError(t, err)
	second, err := cache.Snapshot(ctx, 5, 0)
	require.NoError(t, err)
	assert.Same(t, first, second, "window below one counts as one")
	assert.Equal(t, 1, loader.count())

	_, err = cache.Snapshot(ctx, 5, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, loader.count())
	assert.Equal(t, 2, cache.Len())

	cache.Invalidate()
	assert.Zero(t, cache.Len())
	_, err = cache.Snapshot(ctx, 5, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, loader.count())
}

func TestSnapshotCache_ErrorsAreNotCached(t *testing.T) {
	loader := &countingLoader{err: errors.New("db down")}
	cache := NewSnapshotCache(loader, nil)

	_, err := cache.Snapshot(context.Background(), 1, 1)
	assert.Error(t, err)
	assert.Zero(t, cache.Len())

	loader.err = nil
	_, err = cache.Snapshot(context.Background(), 1, 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, cache.Len())
}

func TestSnapshotCache_ScheduledRefresh(t *testing.T) {
	cache := NewSnapshotCache(&countingLoader{}, nil)
	_, err := cache.Snapshot(context.Background(), 1, 1)
	require.NoError(t, err)

	require.NoError(t, cache.Start("@every 1s"))
	defer cache.Stop()

	assert.Eventually(t, func() bool { return cache.Len() == 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestSnapshotCache_InvalidSchedule(t *testing.T) {
	cache := NewSnapshotCache(&countingLoader{}, nil)
	assert.Error(t, cache.Start("not a schedule"))
}

func TestSnapshotCache_OverRepository(t *testing.T) {
	repo := newTestRepository(t)
	seed(t, repo)
	cache := NewSnapshotCache(repo, nil)
	ctx := context.Background()

	snap, err := cache.Snapshot(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, snap.Players, 3)

	require.NoError(t, repo.SavePlayers(ctx, []PlayerRecord{
		{PlayerID: 9, WebName: "New", TeamID: 4, Position: "DEF", NowCost: 40},
	}))
	stale, err := cache.Snapshot(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, stale.Players, 3)

	cache.Invalidate()
	fresh, err := cache.Snapshot(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, fresh.Players, 4)
	assert.NotEqual(t, snap.Version, fresh.Version)
}
