package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fpl-optimizer/internal/optimizer"
)

// SnapshotLoader loads a fresh engine snapshot
type SnapshotLoader interface {
	Snapshot(ctx context.Context, start, window int) (*optimizer.Snapshot, error)
}

type snapshotKey struct {
	start  int
	window int
}

// SnapshotCache memoises snapshots per (start, window) and drops them all on
// a cron schedule, so repeated requests between data refreshes skip the database.
// Cached snapshots are shared between requests and must not be mutated.
type SnapshotCache struct {
	loader  SnapshotLoader
	cron    *cron.Cron
	mu      sync.RWMutex
	entries map[snapshotKey]*optimizer.Snapshot
	logger  *logrus.Entry
}

// NewSnapshotCache wraps a loader
func NewSnapshotCache(loader SnapshotLoader, logger *logrus.Logger) *SnapshotCache {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SnapshotCache{
		loader:  loader,
		cron:    cron.New(),
		entries: make(map[snapshotKey]*optimizer.Snapshot),
		logger:  logger.WithField("component", "snapshot_cache"),
	}
}

// Snapshot returns the cached snapshot or loads and stores a new one
func (c *SnapshotCache) Snapshot(ctx context.Context, start, window int) (*optimizer.Snapshot, error) {
	if window < 1 {
		window = 1
	}
	key := snapshotKey{start: start, window: window}

	c.mu.RLock()
	snap, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return snap, nil
	}

	snap, err := c.loader.Snapshot(ctx, start, window)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = snap
	c.mu.Unlock()
	return snap, nil
}

// Invalidate drops every cached snapshot
func (c *SnapshotCache) Invalidate() {
	c.mu.Lock()
	dropped := len(c.entries)
	c.entries = make(map[snapshotKey]*optimizer.Snapshot)
	c.mu.Unlock()

	c.logger.WithField("dropped", dropped).Debug("Snapshot cache invalidated")
}

// Len returns the number of cached snapshots
func (c *SnapshotCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Start schedules invalidation using a cron spec such as "@every 5m"
func (c *SnapshotCache) Start(schedule string) error {
	if _, err := c.cron.AddFunc(schedule, c.Invalidate); err != nil {
		return fmt.Errorf("invalid snapshot refresh schedule %q: %w", schedule, err)
	}
	c.cron.Start()

	c.logger.WithField("schedule", schedule).Info("Snapshot refresh scheduled")
	return nil
}

// Stop halts the refresh schedule and waits for a running invalidation to finish
func (c *SnapshotCache) Stop() {
	<-c.cron.Stop().Done()
}
