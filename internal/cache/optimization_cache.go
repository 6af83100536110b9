package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/stitts-dev/fpl-optimizer/internal/models"
)

const keyPrefix = "optimization"

// OptimizationCache stores optimization results keyed by request and data version.
// Redis calls go through a circuit breaker so an unreachable server costs one
// fast failure per request instead of a dial timeout.
type OptimizationCache struct {
	client  *redis.Client
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker
	logger  *logrus.Entry
}

// NewOptimizationCache wraps a redis client; a nil client yields a cache that never hits
func NewOptimizationCache(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *OptimizationCache {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	entry := logger.WithField("component", "optimization_cache")

	settings := gobreaker.Settings{
		Name:        "redis-cache",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			entry.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	}

	return &OptimizationCache{
		client:  client,
		ttl:     ttl,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  entry,
	}
}

// Enabled reports whether results are cached at all
func (c *OptimizationCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Key derives a stable cache key from the request and the snapshot version.
// Player id lists are order-insensitive so they are sorted before hashing.
func Key(req models.OptimizationRequest, dataVersion string) (string, error) {
	canonical := req
	canonical.PreferredPlayerIDs = sortedCopy(req.PreferredPlayerIDs)
	canonical.ExcludedPlayerIDs = sortedCopy(req.ExcludedPlayerIDs)
	canonical.ExistingSquad = sortedCopy(req.ExistingSquad)

	payload, err := json.Marshal(struct {
		Request     models.OptimizationRequest `json:"request"`
		DataVersion string                     `json:"data_version"`
	}{canonical, dataVersion})
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

func sortedCopy(ids []int) []int {
	if len(ids) == 0 {
		return nil
	}
	out := append([]int(nil), ids...)
	sort.Ints(out)
	return out
}

func fullKey(key string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, key)
}

// Get returns the cached result, or nil on a miss
func (c *OptimizationCache) Get(ctx context.Context, key string) (*models.OptimizationResult, error) {
	if !c.Enabled() {
		return nil, nil
	}

	raw, err := c.breaker.Execute(func() (interface{}, error) {
		data, err := c.client.Get(ctx, fullKey(key)).Bytes()
		if errors.Is(err, redis.Nil) {
			return []byte(nil), nil
		}
		return data, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get optimization result from cache: %w", err)
	}
	data := raw.([]byte)
	if data == nil {
		c.logger.WithField("cache_key", key).Debug("Cache miss for optimization result")
		return nil, nil
	}

	var result models.OptimizationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal optimization result: %w", err)
	}

	c.logger.WithField("cache_key", key).Debug("Cache hit for optimization result")
	return &result, nil
}

// Set stores a result under key for the configured TTL
func (c *OptimizationCache) Set(ctx context.Context, key string, result *models.OptimizationResult) error {
	if !c.Enabled() || result == nil {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal optimization result: %w", err)
	}
	_, err = c.breaker.Execute(func() (interface{}, error) {
		return nil, c.client.Set(ctx, fullKey(key), data, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to set optimization result in cache: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key":  key,
		"expiration": c.ttl,
	}).Debug("Cached optimization result")
	return nil
}

// Count returns the number of cached optimization results
func (c *OptimizationCache) Count(ctx context.Context) (int, error) {
	if !c.Enabled() {
		return 0, nil
	}

	count := 0
	iter := c.client.Scan(ctx, 0, keyPrefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan cache keys: %w", err)
	}
	return count, nil
}

// Ping checks the redis connection directly, bypassing the breaker
func (c *OptimizationCache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return errors.New("cache not configured")
	}
	return c.client.Ping(ctx).Err()
}

// BreakerState reports the circuit breaker state for health output
func (c *OptimizationCache) BreakerState() string {
	if !c.Enabled() {
		return "disabled"
	}
	return c.breaker.State().String()
}
