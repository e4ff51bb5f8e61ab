// Package cache memoizes search results in Redis. Keys are scoped to the
// snapshot version, so a swapped-in index never serves results computed
// against its predecessor.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/resilience"
)

const (
	keyPrefix   = "search:"
	breakerName = "redis-cache"
	// opTimeout bounds a single Get or Set so a slow Redis costs a search at
	// most this much before it falls back to the index.
	opTimeout = 250 * time.Millisecond
	// flushTimeout bounds a full keyspace scan on invalidation.
	flushTimeout = 5 * time.Second
)

// Backend is the subset of the Redis client the cache uses.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

var _ Backend = (*pkgredis.Client)(nil)

type QueryCache struct {
	backend Backend
	ttl     time.Duration
	breaker *resilience.CircuitBreaker
	metrics *metrics.Metrics
	group   singleflight.Group
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New returns a cache over backend. Backend failures trip a circuit breaker;
// while it is open lookups are treated as misses and writes are skipped.
func New(backend Backend, ttl time.Duration, m *metrics.Metrics) *QueryCache {
	c := &QueryCache{
		backend: backend,
		ttl:     ttl,
		metrics: m,
		logger:  slog.Default().With("component", "query-cache"),
	}
	c.breaker = resilience.NewCircuitBreaker(breakerName, resilience.CircuitBreakerConfig{
		FailureThreshold: 5,
		ResetTimeout:     30 * time.Second,
		OnStateChange: func(name string, _, to resilience.State) {
			if m != nil {
				m.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			}
		},
	})
	return c
}

func (c *QueryCache) Get(ctx context.Context, version uint64, plan *parser.QueryPlan, limit int) (*executor.SearchResult, bool) {
	key := BuildKey(version, plan, limit)
	var data string
	err := c.call(ctx, "cache get", opTimeout, func(ctx context.Context) error {
		var err error
		data, err = c.backend.Get(ctx, key)
		if pkgredis.IsNilError(err) {
			data = ""
			return nil
		}
		return err
	})
	if err != nil {
		c.logger.Warn("cache get failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	if data == "" {
		c.miss()
		return nil, false
	}
	var result executor.SearchResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
	c.logger.Debug("cache hit", "query", plan.RawQuery, "key", key)
	return &result, true
}

func (c *QueryCache) Set(ctx context.Context, version uint64, plan *parser.QueryPlan, limit int, result *executor.SearchResult) {
	key := BuildKey(version, plan, limit)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.call(ctx, "cache set", opTimeout, func(ctx context.Context) error {
		return c.backend.Set(ctx, key, data, c.ttl)
	}); err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result for plan or runs computeFn once per
// key across concurrent callers. The boolean reports a cache hit.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	version uint64,
	plan *parser.QueryPlan,
	limit int,
	computeFn func() (*executor.SearchResult, error),
) (*executor.SearchResult, bool, error) {
	if result, ok := c.Get(ctx, version, plan, limit); ok {
		return result, true, nil
	}
	key := BuildKey(version, plan, limit)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, version, plan, limit, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*executor.SearchResult), false, nil
}

func (c *QueryCache) Invalidate(ctx context.Context) (int64, error) {
	var deleted int64
	err := c.call(ctx, "cache invalidate", flushTimeout, func(ctx context.Context) error {
		var err error
		deleted, err = c.backend.FlushByPattern(ctx, keyPrefix+"*")
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidate", "keys_deleted", deleted)
	return deleted, nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// BreakerState reports the backend circuit breaker state.
func (c *QueryCache) BreakerState() resilience.State {
	return c.breaker.State()
}

// call runs one backend operation through the breaker under its own
// deadline.
func (c *QueryCache) call(ctx context.Context, name string, timeout time.Duration, fn func(ctx context.Context) error) error {
	return c.breaker.Execute(func() error {
		return resilience.WithTimeout(ctx, timeout, name, fn)
	})
}

func (c *QueryCache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// BuildKey derives the cache key from the parsed plan rather than the raw
// query, so queries that normalize to the same terms share an entry.
func BuildKey(version uint64, plan *parser.QueryPlan, limit int) string {
	mode := "OR"
	if plan.Type == parser.QueryAND {
		mode = "AND"
	}
	raw := fmt.Sprintf("%s|%s|NOT:%s|limit=%d",
		mode, strings.Join(plan.Terms, ","), strings.Join(plan.ExcludeTerms, ","), limit)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%sv%d:%x", keyPrefix, version, hash[:16])
}
