package cache

import (
	"context"
	"errors"
	"path"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/resilience"
)

type memoryBackend struct {
	mu   sync.Mutex
	data map[string]string
	fail error
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{data: make(map[string]string)}
}

func (b *memoryBackend) Get(_ context.Context, key string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return "", b.fail
	}
	v, ok := b.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (b *memoryBackend) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return b.fail
	}
	b.data[key] = string(value.([]byte))
	return nil
}

func (b *memoryBackend) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var n int64
	for k := range b.data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(b.data, k)
			n++
		}
	}
	return n, nil
}

func plan(terms ...string) *parser.QueryPlan {
	return &parser.QueryPlan{Terms: terms, ExcludeTerms: []string{}, RawQuery: "q"}
}

func sampleResult() *executor.SearchResult {
	return &executor.SearchResult{
		Query:     "q",
		Terms:     []string{"ekonom"},
		TotalHits: 1,
		Results:   []ranker.ScoredDoc{{DocID: "A", Score: 1.25}},
		TermStats: map[string]int{"ekonom": 1},
		Version:   3,
	}
}

func TestGetOrCompute(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	c := New(newMemoryBackend(), time.Minute, m)
	ctx := context.Background()

	var calls atomic.Int32
	compute := func() (*executor.SearchResult, error) {
		calls.Add(1)
		return sampleResult(), nil
	}

	first, hit, err := c.GetOrCompute(ctx, 3, plan("ekonom"), 10, compute)
	if err != nil || hit {
		t.Fatalf("first call: hit=%v err=%v", hit, err)
	}
	second, hit, err := c.GetOrCompute(ctx, 3, plan("ekonom"), 10, compute)
	if err != nil || !hit {
		t.Fatalf("second call: hit=%v err=%v", hit, err)
	}
	if calls.Load() != 1 {
		t.Errorf("compute ran %d times, want 1", calls.Load())
	}
	if second.Results[0] != first.Results[0] || second.Version != 3 {
		t.Errorf("cached result = %+v, want %+v", second, first)
	}
	if got := testutil.ToFloat64(m.CacheHitsTotal); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
}

func TestKeyScopedToSnapshotVersion(t *testing.T) {
	c := New(newMemoryBackend(), time.Minute, nil)
	ctx := context.Background()
	c.Set(ctx, 1, plan("ekonom"), 10, sampleResult())

	if _, ok := c.Get(ctx, 2, plan("ekonom"), 10); ok {
		t.Error("entry from version 1 served for version 2")
	}
	if _, ok := c.Get(ctx, 1, plan("ekonom"), 5); ok {
		t.Error("entry served for a different limit")
	}
	if _, ok := c.Get(ctx, 1, plan("ekonom"), 10); !ok {
		t.Error("expected hit for the same version, plan and limit")
	}
}

func TestBuildKeyDistinguishesPlans(t *testing.T) {
	or := plan("ekonom", "politik")
	and := plan("ekonom", "politik")
	and.Type = parser.QueryAND
	not := plan("ekonom")
	not.ExcludeTerms = []string{"politik"}

	keys := map[string]bool{}
	for _, p := range []*parser.QueryPlan{or, and, not, plan("ekonom")} {
		keys[BuildKey(1, p, 10)] = true
	}
	if len(keys) != 4 {
		t.Errorf("got %d distinct keys, want 4", len(keys))
	}
	if BuildKey(1, or, 10) != BuildKey(1, plan("ekonom", "politik"), 10) {
		t.Error("equal plans must share a key")
	}
}

func TestComputeErrorNotCached(t *testing.T) {
	backend := newMemoryBackend()
	c := New(backend, time.Minute, nil)
	boom := errors.New("boom")
	_, _, err := c.GetOrCompute(context.Background(), 1, plan("ekonom"), 10, func() (*executor.SearchResult, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if len(backend.data) != 0 {
		t.Errorf("failed computation was cached: %v", backend.data)
	}
}

func TestBackendFailureOpensBreaker(t *testing.T) {
	backend := newMemoryBackend()
	backend.fail = errors.New("connection refused")
	m := metrics.New(prometheus.NewRegistry())
	c := New(backend, time.Minute, m)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		res, hit, err := c.GetOrCompute(ctx, 1, plan("ekonom"), 10, func() (*executor.SearchResult, error) {
			return sampleResult(), nil
		})
		if err != nil || hit || res == nil {
			t.Fatalf("backend failure must degrade to compute: hit=%v err=%v", hit, err)
		}
	}
	if c.BreakerState() != resilience.StateOpen {
		t.Errorf("breaker state = %v, want open", c.BreakerState())
	}
	if got := testutil.ToFloat64(m.CircuitBreakerState.WithLabelValues(breakerName)); got != float64(resilience.StateOpen) {
		t.Errorf("breaker gauge = %v, want %d", got, resilience.StateOpen)
	}
	_, misses := c.Stats()
	if misses != 5 {
		t.Errorf("misses = %d, want 5", misses)
	}
}

func TestInvalidate(t *testing.T) {
	backend := newMemoryBackend()
	c := New(backend, time.Minute, nil)
	ctx := context.Background()
	c.Set(ctx, 1, plan("ekonom"), 10, sampleResult())
	c.Set(ctx, 2, plan("politik"), 10, sampleResult())
	backend.data["unrelated"] = "x"

	deleted, err := c.Invalidate(ctx)
	if err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if deleted != 2 || len(backend.data) != 1 {
		t.Errorf("deleted=%d remaining=%v", deleted, backend.data)
	}
}
