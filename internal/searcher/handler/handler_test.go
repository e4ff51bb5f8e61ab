package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/docstore"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/normalizer"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher/cache"
)

type mapBackend struct {
	mu   sync.Mutex
	data map[string]string
}

func (b *mapBackend) Get(_ context.Context, key string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (b *mapBackend) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = string(value.([]byte))
	return nil
}

func (b *mapBackend) FlushByPattern(_ context.Context, _ string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := int64(len(b.data))
	b.data = map[string]string{}
	return n, nil
}

func newEngine(t *testing.T, load bool) *searcher.Engine {
	t.Helper()
	n, err := normalizer.New(normalizer.Options{Language: "indonesian"})
	if err != nil {
		t.Fatalf("normalizer.New: %v", err)
	}
	e, err := searcher.NewEngine(n, searcher.Options{PreviewWords: 3})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if !load {
		return e
	}
	docs := []docstore.Document{
		{ID: "A", Title: "Ekonomi tumbuh", Content: "ekonomi indonesia tumbuh lima persen tahun ini"},
		{ID: "https://example.com/b", URL: "https://example.com/b", Content: "politik dan ekonomi nasional"},
		{ID: "C", Content: "olahraga sepak bola"},
	}
	snap, err := indexer.Build(context.Background(), docs, n, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := e.Swap(snap); err != nil {
		t.Fatalf("Swap: %v", err)
	}
	return e
}

func serve(t *testing.T, h *Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	h.Routes(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestSearchStatusCodes(t *testing.T) {
	ready := New(newEngine(t, true), nil, nil, nil, Config{})
	notReady := New(newEngine(t, false), nil, nil, nil, Config{})

	tests := []struct {
		name    string
		handler *Handler
		target  string
		want    int
	}{
		{"not ready", notReady, "/api/v1/search?q=ekonomi", http.StatusServiceUnavailable},
		{"missing q", ready, "/api/v1/search", http.StatusBadRequest},
		{"stopwords only", ready, "/api/v1/search?q=dan", http.StatusUnprocessableEntity},
		{"blank q", ready, "/api/v1/search?q=", http.StatusUnprocessableEntity},
		{"bad limit", ready, "/api/v1/search?q=ekonomi&limit=abc", http.StatusBadRequest},
		{"zero page", ready, "/api/v1/search?q=ekonomi&page=0", http.StatusBadRequest},
		{"ok", ready, "/api/v1/search?q=ekonomi", http.StatusOK},
		{"no match", ready, "/api/v1/search?q=teknologi", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, tt.handler, http.MethodGet, tt.target)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestSearchResponse(t *testing.T) {
	h := New(newEngine(t, true), nil, nil, nil, Config{})
	rec := serve(t, h, http.MethodGet, "/api/v1/search?q=ekonomi")
	resp := decode[SearchResponse](t, rec)

	if resp.TotalHits != 2 || len(resp.Results) != 2 {
		t.Fatalf("hits=%d results=%d, want 2 and 2", resp.TotalHits, len(resp.Results))
	}
	if resp.IndexVersion != 1 || resp.Page != 1 || resp.TotalPages != 1 {
		t.Errorf("response meta = %+v", resp)
	}
	for _, r := range resp.Results {
		if r.DocID == "https://example.com/b" && r.Title != docstore.NoTitle {
			t.Errorf("title = %q, want placeholder", r.Title)
		}
		if r.DocID == "A" && r.Preview != "ekonomi indonesia tumbuh"+docstore.Ellipsis {
			t.Errorf("preview = %q", r.Preview)
		}
	}
}

func TestSearchPagination(t *testing.T) {
	h := New(newEngine(t, true), nil, nil, nil, Config{Trace: true})

	resp := decode[SearchResponse](t, serve(t, h, http.MethodGet, "/api/v1/search?q=ekonomi&page=2&page_size=1"))
	if len(resp.Results) != 1 || resp.TotalPages != 2 || resp.PageSize != 1 {
		t.Errorf("page 2 = %+v", resp)
	}

	resp = decode[SearchResponse](t, serve(t, h, http.MethodGet, "/api/v1/search?q=ekonomi&page=5&page_size=1"))
	if resp.Results == nil || len(resp.Results) != 0 {
		t.Errorf("out of range page = %#v, want empty list", resp.Results)
	}
}

func TestSearchUsesCache(t *testing.T) {
	qc := cache.New(&mapBackend{data: map[string]string{}}, time.Minute, nil)
	agg := analytics.NewAggregator()
	collector := analytics.NewCollector(nil, agg, 1)
	collector.Start(context.Background())
	defer collector.Close()
	h := New(newEngine(t, true), qc, collector, nil, Config{})

	first := decode[SearchResponse](t, serve(t, h, http.MethodGet, "/api/v1/search?q=ekonomi"))
	second := decode[SearchResponse](t, serve(t, h, http.MethodGet, "/api/v1/search?q=Ekonomi!"))
	if first.CacheHit || !second.CacheHit {
		t.Errorf("cache hits = %v, %v; want false, true", first.CacheHit, second.CacheHit)
	}
	if len(second.Results) != len(first.Results) {
		t.Errorf("cached results differ: %d vs %d", len(second.Results), len(first.Results))
	}
	serve(t, h, http.MethodGet, "/api/v1/search?q=dan")

	stats := agg.Stats()
	if stats.TotalSearches != 3 || stats.CacheHits != 1 || stats.Outcomes["empty_query"] != 1 {
		t.Errorf("analytics = %+v", stats)
	}

	cs := decode[map[string]any](t, serve(t, h, http.MethodGet, "/api/v1/cache/stats"))
	if cs["hits"].(float64) != 1 || cs["circuit_state"] != "closed" {
		t.Errorf("cache stats = %v", cs)
	}
	rec := serve(t, h, http.MethodPost, "/api/v1/cache/invalidate")
	if rec.Code != http.StatusOK {
		t.Errorf("invalidate status = %d", rec.Code)
	}
}

func TestCachedSearchFollowsSwap(t *testing.T) {
	qc := cache.New(&mapBackend{data: map[string]string{}}, time.Minute, nil)
	e := newEngine(t, true)
	h := New(e, qc, nil, nil, Config{})

	before := decode[SearchResponse](t, serve(t, h, http.MethodGet, "/api/v1/search?q=ekonomi"))
	if before.IndexVersion != 1 || len(before.Results) != 2 {
		t.Fatalf("before swap: version %d, %d results", before.IndexVersion, len(before.Results))
	}

	n, err := normalizer.New(normalizer.Options{Language: "indonesian"})
	if err != nil {
		t.Fatalf("normalizer.New: %v", err)
	}
	snap, err := indexer.Build(context.Background(), []docstore.Document{
		{ID: "D", Title: "Ekonomi digital", Content: "ekonomi digital berkembang"},
	}, n, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := e.Swap(snap); err != nil {
		t.Fatalf("Swap: %v", err)
	}

	after := decode[SearchResponse](t, serve(t, h, http.MethodGet, "/api/v1/search?q=ekonomi"))
	if after.CacheHit || after.IndexVersion != 2 {
		t.Errorf("after swap: cache_hit %v, version %d; want a fresh search on version 2", after.CacheHit, after.IndexVersion)
	}
	if len(after.Results) != 1 || after.Results[0].DocID != "D" {
		t.Errorf("after swap results = %+v", after.Results)
	}
}

func TestDocumentLookup(t *testing.T) {
	h := New(newEngine(t, true), nil, nil, nil, Config{})

	rec := serve(t, h, http.MethodGet, "/api/v1/documents/A")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if doc := decode[docstore.Document](t, rec); doc.Title != "Ekonomi tumbuh" {
		t.Errorf("doc = %+v", doc)
	}

	rec = serve(t, h, http.MethodGet, "/api/v1/documents?id="+url.QueryEscape("https://example.com/b"))
	if rec.Code != http.StatusOK {
		t.Errorf("url id status = %d", rec.Code)
	}
	if rec := serve(t, h, http.MethodGet, "/api/v1/documents/Z"); rec.Code != http.StatusNotFound {
		t.Errorf("missing doc status = %d, want 404", rec.Code)
	}
	if rec := serve(t, h, http.MethodGet, "/api/v1/documents"); rec.Code != http.StatusBadRequest {
		t.Errorf("no id status = %d, want 400", rec.Code)
	}
}

func TestIndexStatsAndCacheDisabled(t *testing.T) {
	h := New(newEngine(t, true), nil, nil, nil, Config{})
	stats := decode[searcher.IndexStats](t, serve(t, h, http.MethodGet, "/api/v1/index/stats"))
	if stats.Documents != 3 || stats.Version != 1 || stats.Terms == 0 {
		t.Errorf("stats = %+v", stats)
	}
	if rec := serve(t, h, http.MethodPost, "/api/v1/cache/invalidate"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("invalidate without cache = %d, want 503", rec.Code)
	}

	notReady := New(newEngine(t, false), nil, nil, nil, Config{})
	if rec := serve(t, notReady, http.MethodGet, "/api/v1/index/stats"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("stats before load = %d, want 503", rec.Code)
	}
}
