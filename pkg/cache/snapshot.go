// Package cache provides a Redis-backed snapshot cache so repeated pipeline
// runs within the TTL can skip re-fetching an organization's repositories.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache.
	ErrCacheMiss = errors.New("cache miss")
)

// Prometheus metrics for snapshot cache operations.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "repolang_cache_hits_total",
		Help: "Total snapshot cache hits",
	})

	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "repolang_cache_misses_total",
		Help: "Total snapshot cache misses",
	})

	cacheErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repolang_cache_errors_total",
		Help: "Total snapshot cache errors by operation",
	}, []string{"operation"})
)

// RepoKey builds the cache key for an owner's repository snapshot.
func RepoKey(owner string) string {
	return "repolang:repos:" + owner
}

// Manager handles snapshot storage with a Redis backend.
type Manager struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewManager creates a new snapshot cache manager. Entries expire after ttl.
func NewManager(redisClient *redis.Client, ttl time.Duration) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Manager{
		redis: redisClient,
		ttl:   ttl,
	}
}

// Get retrieves a snapshot payload by key.
// Returns ErrCacheMiss if the key doesn't exist or has expired.
func (m *Manager) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := m.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			cacheMissesTotal.Inc()
			return nil, ErrCacheMiss
		}
		cacheErrorsTotal.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	cacheHitsTotal.Inc()
	return data, nil
}

// Set stores a snapshot payload under key with the manager's TTL.
func (m *Manager) Set(ctx context.Context, key string, data []byte) error {
	if err := m.redis.Set(ctx, key, data, m.ttl).Err(); err != nil {
		cacheErrorsTotal.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes a snapshot.
func (m *Manager) Delete(ctx context.Context, key string) error {
	if err := m.redis.Del(ctx, key).Err(); err != nil {
		cacheErrorsTotal.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// TTL returns the configured snapshot lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}
