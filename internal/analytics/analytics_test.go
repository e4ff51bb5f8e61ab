package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/kafka"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events  []kafka.Event
	batches int
}

func (p *recordingPublisher) PublishBatch(_ context.Context, events []kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batches++
	p.events = append(p.events, events...)
	return nil
}

func TestAggregatorStats(t *testing.T) {
	agg := NewAggregator()
	agg.Record(SearchEvent{Type: EventCacheMiss, Query: "ekonomi", Outcome: "ok", TotalHits: 2, LatencyMs: 10})
	agg.Record(SearchEvent{Type: EventCacheHit, Query: "ekonomi", Outcome: "ok", TotalHits: 2, LatencyMs: 2, CacheHit: true})
	agg.Record(&SearchEvent{Type: EventZeroResult, Query: "teknologi", Outcome: "zero_result", LatencyMs: 6})
	agg.Record(IndexEvent{Type: EventIndexLoaded, Version: 4, Documents: 3})
	agg.Record("ignored")

	stats := agg.Stats()
	if stats.TotalSearches != 3 || stats.CacheHits != 1 || stats.CacheMisses != 2 {
		t.Errorf("counts = %+v", stats)
	}
	if stats.ZeroResultCount != 1 || len(stats.ZeroResultQueries) != 1 || stats.ZeroResultQueries[0].Query != "teknologi" {
		t.Errorf("zero results = %d %+v", stats.ZeroResultCount, stats.ZeroResultQueries)
	}
	if stats.Outcomes["ok"] != 2 || stats.Outcomes["zero_result"] != 1 {
		t.Errorf("outcomes = %v", stats.Outcomes)
	}
	if len(stats.TopQueries) == 0 || stats.TopQueries[0] != (QueryCount{Query: "ekonomi", Count: 2}) {
		t.Errorf("top queries = %+v", stats.TopQueries)
	}
	if stats.AvgLatencyMs != 6 || stats.P50LatencyMs != 6 || stats.P99LatencyMs != 10 {
		t.Errorf("latency avg=%v p50=%d p99=%d", stats.AvgLatencyMs, stats.P50LatencyMs, stats.P99LatencyMs)
	}
	if stats.SnapshotLoads != 1 || stats.LastSnapshot == nil || stats.LastSnapshot.Version != 4 {
		t.Errorf("snapshot stats = %d %+v", stats.SnapshotLoads, stats.LastSnapshot)
	}
}

func TestAggregatorLatencyWindow(t *testing.T) {
	agg := NewAggregator()
	for i := 0; i < maxLatencySamples+10; i++ {
		agg.Record(SearchEvent{Query: "q", TotalHits: 1, LatencyMs: 1})
	}
	agg.mu.RLock()
	n := len(agg.latencies)
	agg.mu.RUnlock()
	if n != maxLatencySamples {
		t.Errorf("latency window = %d, want %d", n, maxLatencySamples)
	}
}

func TestHandleEventDecodesByType(t *testing.T) {
	agg := NewAggregator()
	handle := HandleEvent(agg)
	search, _ := json.Marshal(SearchEvent{Type: EventCacheMiss, Query: "pemilu", TotalHits: 1})
	index, _ := json.Marshal(IndexEvent{Type: EventIndexLoaded, Version: 2})
	for _, msg := range [][]byte{search, index, []byte("not json")} {
		if err := handle(context.Background(), nil, msg); err != nil {
			t.Fatalf("handler returned %v", err)
		}
	}
	stats := agg.Stats()
	if stats.TotalSearches != 1 || stats.SnapshotLoads != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestCollectorPublishesAndRecords(t *testing.T) {
	pub := &recordingPublisher{}
	agg := NewAggregator()
	c := NewCollector(pub, agg, 8)
	c.Start(context.Background())
	c.Track(SearchEvent{Type: EventCacheMiss, Query: "ekonomi", TotalHits: 1, Timestamp: time.Now()})
	c.Track(IndexEvent{Type: EventIndexLoaded, Version: 1})
	c.Close()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.events) != 2 {
		t.Fatalf("published %d events, want 2", len(pub.events))
	}
	if pub.batches != 1 {
		t.Errorf("published in %d batches, want 1", pub.batches)
	}
	if pub.events[0].Key != "analytics" {
		t.Errorf("key = %q", pub.events[0].Key)
	}
	if agg.Stats().TotalSearches != 1 {
		t.Error("local aggregator did not record the search")
	}
}

func TestCollectorFlushesFullBatches(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewCollector(pub, nil, 1000)
	for i := 0; i < maxBatchSize*2+5; i++ {
		c.Track(SearchEvent{Query: "q", TotalHits: 1})
	}
	c.Start(context.Background())
	c.Close()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.events) != maxBatchSize*2+5 || pub.batches != 3 {
		t.Errorf("published %d events in %d batches, want %d in 3", len(pub.events), pub.batches, maxBatchSize*2+5)
	}
}

func TestCollectorWithoutPublisher(t *testing.T) {
	agg := NewAggregator()
	c := NewCollector(nil, agg, 1)
	c.Start(context.Background())
	for i := 0; i < 5; i++ {
		c.Track(SearchEvent{Query: "q", TotalHits: 1})
	}
	c.Close()
	if agg.Stats().TotalSearches != 5 {
		t.Errorf("TotalSearches = %d, want 5", agg.Stats().TotalSearches)
	}
}

func TestStatsHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Record(SearchEvent{Query: "ekonomi", TotalHits: 1})
	rec := httptest.NewRecorder()
	NewHandler(agg, nil).Stats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got AggregatedStats
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TotalSearches != 1 {
		t.Errorf("TotalSearches = %d", got.TotalSearches)
	}
}

type fakeHistory struct {
	snapshots []AggregatedStats
	err       error
	limit     int
}

func (f *fakeHistory) ListSnapshots(_ context.Context, limit int) ([]AggregatedStats, error) {
	f.limit = limit
	return f.snapshots, f.err
}

func TestHistoryHandler(t *testing.T) {
	serve := func(h *Handler, target string) *httptest.ResponseRecorder {
		mux := http.NewServeMux()
		h.Routes(mux)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec
	}
	agg := NewAggregator()

	if rec := serve(NewHandler(agg, nil), "/api/v1/analytics/history"); rec.Code != http.StatusNotFound {
		t.Errorf("without store: status = %d, want 404", rec.Code)
	}

	store := &fakeHistory{snapshots: []AggregatedStats{{TotalSearches: 7}, {TotalSearches: 3}}}
	rec := serve(NewHandler(agg, store), "/api/v1/analytics/history?limit=5000")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if store.limit != maxHistoryLimit {
		t.Errorf("limit passed to store = %d, want %d", store.limit, maxHistoryLimit)
	}
	var body struct {
		Count     int               `json:"count"`
		Snapshots []AggregatedStats `json:"snapshots"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 2 || body.Snapshots[0].TotalSearches != 7 {
		t.Errorf("body = %+v", body)
	}

	if rec := serve(NewHandler(agg, store), "/api/v1/analytics/history?limit=0"); rec.Code != http.StatusBadRequest {
		t.Errorf("limit=0: status = %d, want 400", rec.Code)
	}
	failing := &fakeHistory{err: errors.New("connection refused")}
	if rec := serve(NewHandler(agg, failing), "/api/v1/analytics/history"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("store failure: status = %d, want 503", rec.Code)
	}
}
