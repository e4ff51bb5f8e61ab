// Package searcher serves BM25 queries from an immutable index snapshot
// that can be replaced atomically while queries are running.
package searcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/docstore"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/normalizer"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/tracing"
)

// ErrVersionMismatch is returned when a result is assembled against a
// snapshot other than the one it was scored on.
var ErrVersionMismatch = errors.New("snapshot version mismatch")

// Options tunes an Engine. Zero values fall back to the defaults.
type Options struct {
	Params       ranker.Params
	MaxResults   int
	PreviewWords int
	Metrics      *metrics.Metrics
}

// IndexStats describes the active snapshot.
type IndexStats struct {
	Version               uint64    `json:"version"`
	Documents             int       `json:"documents"`
	Terms                 int       `json:"terms"`
	AverageDocumentLength float64   `json:"average_document_length"`
	Fingerprint           string    `json:"fingerprint"`
	Checksum              string    `json:"checksum,omitempty"`
	LoadedAt              time.Time `json:"loaded_at"`
}

type active struct {
	snap     *indexer.Snapshot
	version  uint64
	checksum string
	loadedAt time.Time
}

// Engine answers queries against whichever snapshot was swapped in last.
// In-flight queries keep the snapshot they started with.
type Engine struct {
	current    atomic.Pointer[active]
	versions   atomic.Uint64
	normalizer *normalizer.Normalizer
	executor   *executor.Executor
	opts       Options
	logger     *slog.Logger
}

func NewEngine(n *normalizer.Normalizer, opts Options) (*Engine, error) {
	if opts.Params == (ranker.Params{}) {
		opts.Params = ranker.DefaultParams()
	}
	if err := opts.Params.Validate(); err != nil {
		return nil, err
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 100
	}
	return &Engine{
		normalizer: n,
		executor:   executor.New(opts.Params),
		opts:       opts,
		logger:     slog.Default().With("component", "search-engine"),
	}, nil
}

// Swap makes snap the active snapshot and returns its version. A snapshot
// built with a different normalizer is rejected and the current one kept.
func (e *Engine) Swap(snap *indexer.Snapshot) (uint64, error) {
	return e.swap(snap, "")
}

func (e *Engine) swap(snap *indexer.Snapshot, checksum string) (uint64, error) {
	if snap == nil || snap.Index == nil || snap.Store == nil {
		return 0, fmt.Errorf("%w: nil snapshot", apperrors.ErrInvalidInput)
	}
	if snap.Fingerprint != "" && snap.Fingerprint != e.normalizer.Fingerprint() {
		return 0, fmt.Errorf("%w: snapshot %s, normalizer %s",
			segment.ErrFingerprintMismatch, snap.Fingerprint, e.normalizer.Fingerprint())
	}
	next := &active{
		snap:     snap,
		version:  e.versions.Add(1),
		checksum: checksum,
		loadedAt: time.Now().UTC(),
	}
	e.current.Store(next)
	if m := e.opts.Metrics; m != nil {
		m.SnapshotVersion.Set(float64(next.version))
		m.SnapshotDocuments.Set(float64(snap.Index.DocumentCount()))
		m.SnapshotTerms.Set(float64(snap.Index.TermCount()))
	}
	e.logger.Info("index snapshot activated",
		"version", next.version,
		"documents", snap.Index.DocumentCount(),
		"terms", snap.Index.TermCount(),
	)
	return next.version, nil
}

// LoadFrom reads the persisted segment in dataDir and swaps it in. On any
// failure the active snapshot is left as it was.
func (e *Engine) LoadFrom(dataDir string) (uint64, error) {
	seg, err := segment.Load(segment.Path(dataDir))
	if err != nil {
		return 0, err
	}
	if err := seg.CheckFingerprint(e.normalizer.Fingerprint()); err != nil {
		return 0, err
	}
	return e.swap(indexer.FromSegment(seg), seg.ChecksumHex())
}

// Ready reports whether a snapshot is active.
func (e *Engine) Ready() bool {
	return e.current.Load() != nil
}

// Version returns the active snapshot version, or 0 if none.
func (e *Engine) Version() uint64 {
	if cur := e.current.Load(); cur != nil {
		return cur.version
	}
	return 0
}

// Checksum returns the segment checksum of the active snapshot when it was
// loaded from disk.
func (e *Engine) Checksum() string {
	if cur := e.current.Load(); cur != nil {
		return cur.checksum
	}
	return ""
}

// Plan parses query with the engine's normalizer.
func (e *Engine) Plan(query string) *parser.QueryPlan {
	return parser.Parse(query, e.normalizer)
}

// View pins one snapshot. Searching and assembling through the same View
// never mixes data from two snapshots, however many swaps happen meanwhile.
type View struct {
	engine *Engine
	cur    *active
}

// Acquire pins the active snapshot, or fails with ErrNotReady.
func (e *Engine) Acquire() (*View, error) {
	cur := e.current.Load()
	if cur == nil {
		e.observe(metrics.OutcomeNotReady, 0)
		return nil, apperrors.ErrNotReady
	}
	return &View{engine: e, cur: cur}, nil
}

// Version returns the pinned snapshot version.
func (v *View) Version() uint64 { return v.cur.version }

// Search returns up to k scored document ids for query, best first. It
// fails with ErrNotReady before any snapshot is active and with
// ErrEmptyQuery when the query normalizes to nothing. k is capped at
// MaxResults.
func (e *Engine) Search(ctx context.Context, query string, k int) (*executor.SearchResult, error) {
	v, err := e.Acquire()
	if err != nil {
		return nil, err
	}
	return v.Search(ctx, query, k)
}

// Search scores query against the pinned snapshot.
func (v *View) Search(ctx context.Context, query string, k int) (*executor.SearchResult, error) {
	e := v.engine
	if k < 1 {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, 400, "k must be positive, got %d", k)
	}
	if k > e.opts.MaxResults {
		k = e.opts.MaxResults
	}

	_, span := tracing.StartChildSpan(ctx, "parse")
	plan := e.Plan(query)
	span.SetAttr("terms", len(plan.Terms))
	span.End()
	if plan.Empty() {
		e.observe(metrics.OutcomeEmptyQuery, 0)
		return nil, apperrors.ErrEmptyQuery
	}

	res, err := e.executor.Execute(ctx, v.cur.snap, plan, k)
	if err != nil {
		e.observe(metrics.OutcomeError, 0)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrTimeout, err)
		}
		return nil, err
	}
	res.Version = v.cur.version
	if len(res.Results) == 0 {
		e.observe(metrics.OutcomeZeroResult, 0)
	} else {
		e.observe(metrics.OutcomeOK, len(res.Results))
	}
	return res, nil
}

// Assemble joins res with metadata from the pinned snapshot. res must have
// been scored against that same snapshot.
func (v *View) Assemble(res *executor.SearchResult) ([]docstore.Result, error) {
	if res.Version != v.cur.version {
		return nil, fmt.Errorf("%w: result scored against version %d, view pins %d",
			ErrVersionMismatch, res.Version, v.cur.version)
	}
	return v.cur.snap.Store.AssembleResults(res.Results, v.engine.opts.PreviewWords), nil
}

// SearchResults runs Search and joins the hits with document metadata, both
// against the same snapshot.
func (e *Engine) SearchResults(ctx context.Context, query string, k int) ([]docstore.Result, error) {
	v, err := e.Acquire()
	if err != nil {
		return nil, err
	}
	res, err := v.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}
	return v.Assemble(res)
}

// Lookup returns a document from the active snapshot.
func (e *Engine) Lookup(id string) (*docstore.Document, error) {
	cur := e.current.Load()
	if cur == nil {
		return nil, apperrors.ErrNotReady
	}
	return cur.snap.Store.Lookup(id)
}

// Stats describes the active snapshot.
func (e *Engine) Stats() (IndexStats, error) {
	cur := e.current.Load()
	if cur == nil {
		return IndexStats{}, apperrors.ErrNotReady
	}
	idx := cur.snap.Index
	return IndexStats{
		Version:               cur.version,
		Documents:             idx.DocumentCount(),
		Terms:                 idx.TermCount(),
		AverageDocumentLength: idx.AverageDocumentLength(),
		Fingerprint:           cur.snap.Fingerprint,
		Checksum:              cur.checksum,
		LoadedAt:              cur.loadedAt,
	}, nil
}

func (e *Engine) observe(outcome string, results int) {
	m := e.opts.Metrics
	if m == nil {
		return
	}
	m.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	if outcome == metrics.OutcomeOK || outcome == metrics.OutcomeZeroResult {
		m.SearchResultsCount.Observe(float64(results))
	}
}
