// Package handler exposes the query engine over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/docstore"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher/parser"
	apperrors "github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/tracing"
)

// Engine is the part of searcher.Engine the handler needs.
type Engine interface {
	Acquire() (*searcher.View, error)
	Plan(query string) *parser.QueryPlan
	Lookup(id string) (*docstore.Document, error)
	Stats() (searcher.IndexStats, error)
}

var _ Engine = (*searcher.Engine)(nil)

type Config struct {
	DefaultLimit int
	MaxResults   int
	PageSize     int
	// Trace records a span tree per search, logged at debug level.
	Trace bool
}

// SearchResponse is one page of assembled results.
type SearchResponse struct {
	Query        string            `json:"query"`
	Terms        []string          `json:"terms"`
	TotalHits    int               `json:"total_hits"`
	Returned     int               `json:"returned"`
	Page         int               `json:"page"`
	PageSize     int               `json:"page_size"`
	TotalPages   int               `json:"total_pages"`
	IndexVersion uint64            `json:"index_version"`
	CacheHit     bool              `json:"cache_hit"`
	LatencyMs    int64             `json:"latency_ms"`
	Results      []docstore.Result `json:"results"`
}

type Handler struct {
	engine    Engine
	cache     *cache.QueryCache
	collector *analytics.Collector
	metrics   *metrics.Metrics
	cfg       Config
	logger    *slog.Logger
}

// New wires the handler. queryCache, collector and m may be nil.
func New(engine Engine, queryCache *cache.QueryCache, collector *analytics.Collector, m *metrics.Metrics, cfg Config) *Handler {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 20
	}
	if cfg.MaxResults < cfg.DefaultLimit {
		cfg.MaxResults = cfg.DefaultLimit
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	return &Handler{
		engine:    engine,
		cache:     queryCache,
		collector: collector,
		metrics:   m,
		cfg:       cfg,
		logger:    slog.Default().With("component", "search-handler"),
	}
}

// Routes registers every endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/documents", h.Document)
	mux.HandleFunc("GET /api/v1/documents/{id}", h.Document)
	mux.HandleFunc("GET /api/v1/index/stats", h.IndexStats)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := logger.FromContext(r.Context())
	ctx := r.Context()
	var span *tracing.Span
	if h.cfg.Trace {
		ctx, span = tracing.StartSpan(ctx, "search", logger.RequestID(ctx))
		defer func() {
			span.End()
			span.Log(ctx, log)
		}()
	}
	params := r.URL.Query()

	if !params.Has("q") {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	query := params.Get("q")

	limit, err := positiveInt(params.Get("limit"), h.cfg.DefaultLimit)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	if limit > h.cfg.MaxResults {
		limit = h.cfg.MaxResults
	}
	page, err := positiveInt(params.Get("page"), 1)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}
	pageSize, err := positiveInt(params.Get("page_size"), h.cfg.PageSize)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "page_size must be a positive integer")
		return
	}

	var (
		result    *executor.SearchResult
		assembled []docstore.Result
		cacheHit  bool
	)
	view, err := h.engine.Acquire()
	if err == nil {
		result, cacheHit, err = h.execute(ctx, view, query, limit)
	}
	if err == nil {
		assembled, err = view.Assemble(result)
	}
	latency := time.Since(start)
	span.SetAttr("cache_hit", cacheHit)
	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		span.SetAttr("status", status)
		if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
			log.Error("search failed", "query", query, "error", err)
		} else {
			log.Info("search rejected", "query", query, "status", status, "error", err)
		}
		h.track(ctx, analytics.SearchEvent{
			Type:      analytics.EventSearchFailed,
			Query:     query,
			Outcome:   outcomeFor(err),
			Page:      page,
			LatencyMs: latency.Milliseconds(),
		})
		h.writeAppError(w, err)
		return
	}

	pageResults := docstore.Paginate(assembled, page, pageSize)
	if pageResults == nil {
		pageResults = []docstore.Result{}
	}
	resp := SearchResponse{
		Query:        query,
		Terms:        result.Terms,
		TotalHits:    result.TotalHits,
		Returned:     len(result.Results),
		Page:         page,
		PageSize:     pageSize,
		TotalPages:   docstore.PageCount(len(assembled), pageSize),
		IndexVersion: result.Version,
		CacheHit:     cacheHit,
		LatencyMs:    latency.Milliseconds(),
		Results:      pageResults,
	}
	if h.metrics != nil {
		h.metrics.SearchLatency.WithLabelValues(h.cacheStatus(cacheHit)).Observe(latency.Seconds())
	}
	log.Info("search completed",
		"query", query,
		"total_hits", result.TotalHits,
		"returned", len(result.Results),
		"page", page,
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)

	eventType := analytics.EventCacheMiss
	switch {
	case len(result.Results) == 0:
		eventType = analytics.EventZeroResult
	case cacheHit:
		eventType = analytics.EventCacheHit
	}
	outcome := metrics.OutcomeOK
	if len(result.Results) == 0 {
		outcome = metrics.OutcomeZeroResult
	}
	h.track(ctx, analytics.SearchEvent{
		Type:         eventType,
		Query:        query,
		Terms:        result.Terms,
		Outcome:      outcome,
		TotalHits:    result.TotalHits,
		Returned:     len(result.Results),
		Page:         page,
		LatencyMs:    latency.Milliseconds(),
		CacheHit:     cacheHit,
		IndexVersion: result.Version,
	})
	h.writeJSON(w, http.StatusOK, resp)
}

// execute consults the cache when one is configured. Cache entries are
// keyed by the pinned view's version, and empty queries are rejected first
// so they are never cached.
func (h *Handler) execute(ctx context.Context, view *searcher.View, query string, limit int) (*executor.SearchResult, bool, error) {
	if h.cache == nil {
		res, err := view.Search(ctx, query, limit)
		return res, false, err
	}
	plan := h.engine.Plan(query)
	if plan.Empty() {
		return nil, false, apperrors.ErrEmptyQuery
	}
	return h.cache.GetOrCompute(ctx, view.Version(), plan, limit, func() (*executor.SearchResult, error) {
		return view.Search(ctx, query, limit)
	})
}

// Document looks up a document by the {id} path segment or the id query
// parameter. Ids are usually URLs, which only survive as a query parameter.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		id = r.URL.Query().Get("id")
	}
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "document id is required")
		return
	}
	doc, err := h.engine.Lookup(id)
	if err != nil {
		h.writeAppError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) IndexStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.Stats()
	if err != nil {
		h.writeAppError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":          hits,
		"misses":        misses,
		"total":         total,
		"hit_rate":      fmt.Sprintf("%.1f%%", hitRate),
		"circuit_state": h.cache.BreakerState().String(),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

func (h *Handler) track(ctx context.Context, event analytics.SearchEvent) {
	if h.collector == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	event.RequestID = middleware.GetRequestID(ctx)
	h.collector.Track(event)
}

func (h *Handler) cacheStatus(hit bool) string {
	switch {
	case h.cache == nil:
		return "disabled"
	case hit:
		return "hit"
	default:
		return "miss"
	}
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrNotReady):
		return metrics.OutcomeNotReady
	case errors.Is(err, apperrors.ErrEmptyQuery):
		return metrics.OutcomeEmptyQuery
	default:
		return metrics.OutcomeError
	}
}

func positiveInt(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperrors.ErrInvalidInput
	}
	return n, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) writeAppError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatusCode(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	h.writeError(w, status, message)
}
