package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/normalizer"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/metrics"
)

// IndexCompleteEvent is published after a segment has been written so
// searchers can load it.
type IndexCompleteEvent struct {
	Path        string `json:"path"`
	Checksum    string `json:"checksum"`
	Fingerprint string `json:"fingerprint"`
	Documents   int    `json:"documents"`
	Terms       int    `json:"terms"`
}

// Publisher delivers index lifecycle events. *kafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// Result reports what Run did.
type Result struct {
	Snapshot *Snapshot
	Segment  segment.Info
	Rebuilt  bool
}

// Engine runs the batch pipeline: read corpus, build, persist, announce.
type Engine struct {
	cfg        config.IndexerConfig
	normalizer *normalizer.Normalizer
	writer     *segment.Writer
	publisher  Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewEngine creates an Engine. publisher and m may be nil.
func NewEngine(cfg config.IndexerConfig, n *normalizer.Normalizer, publisher Publisher, m *metrics.Metrics) *Engine {
	return &Engine{
		cfg:        cfg,
		normalizer: n,
		writer:     segment.NewWriter(cfg.DataDir),
		publisher:  publisher,
		metrics:    m,
		logger:     slog.Default().With("component", "indexer"),
	}
}

// Run produces the index for src. Unless ForceRebuild is set, a valid
// existing segment built with the same normalizer is reused and src is not
// read. A failed build leaves any existing segment untouched.
func (e *Engine) Run(ctx context.Context, src corpus.Source) (*Result, error) {
	if !e.cfg.ForceRebuild {
		if res, ok := e.reuseExisting(); ok {
			return res, nil
		}
	}

	start := time.Now()
	res, err := e.rebuild(ctx, src)
	if err != nil {
		e.observeBuild("failed", 0)
		return nil, err
	}
	e.observeBuild("built", time.Since(start))

	e.announce(ctx, res)
	return res, nil
}

func (e *Engine) reuseExisting() (*Result, bool) {
	path := segment.Path(e.cfg.DataDir)
	if _, err := os.Stat(path); err != nil {
		return nil, false
	}
	seg, err := segment.Load(path)
	if err != nil {
		e.logger.Warn("existing segment unreadable, rebuilding", "path", path, "error", err)
		return nil, false
	}
	if err := seg.CheckFingerprint(e.normalizer.Fingerprint()); err != nil {
		e.logger.Warn("existing segment built with a different normalizer, rebuilding",
			"path", path,
			"error", err,
		)
		return nil, false
	}
	e.logger.Info("reusing existing index",
		"path", path,
		"documents", seg.Index.DocumentCount(),
		"terms", seg.Index.TermCount(),
	)
	e.observeBuild("reused", 0)
	return &Result{
		Snapshot: FromSegment(seg),
		Segment: segment.Info{
			Path:     path,
			Size:     seg.Header.FooterOffset() + int64(segment.FooterSize),
			Checksum: seg.ChecksumHex(),
		},
	}, true
}

func (e *Engine) rebuild(ctx context.Context, src corpus.Source) (*Result, error) {
	docs, err := corpus.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}
	snap, err := Build(ctx, docs, e.normalizer, e.cfg.Workers)
	if err != nil {
		return nil, err
	}
	info, err := e.writer.Write(snap.Index, snap.Store, snap.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("persisting index: %w", err)
	}
	if e.metrics != nil {
		e.metrics.DocsIndexedTotal.Add(float64(snap.Index.DocumentCount()))
	}
	e.logger.Info("segment written",
		"path", info.Path,
		"bytes", info.Size,
		"checksum", info.Checksum,
	)
	return &Result{Snapshot: snap, Segment: info, Rebuilt: true}, nil
}

func (e *Engine) announce(ctx context.Context, res *Result) {
	if e.publisher == nil {
		return
	}
	event := IndexCompleteEvent{
		Path:        res.Segment.Path,
		Checksum:    res.Segment.Checksum,
		Fingerprint: res.Snapshot.Fingerprint,
		Documents:   res.Snapshot.Index.DocumentCount(),
		Terms:       res.Snapshot.Index.TermCount(),
	}
	err := e.publisher.Publish(ctx, kafka.Event{Key: res.Segment.Checksum, Value: event})
	if err != nil && !errors.Is(err, context.Canceled) {
		e.logger.Error("failed to publish index.complete", "error", err)
	}
}

func (e *Engine) observeBuild(status string, d time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.IndexBuildsTotal.WithLabelValues(status).Inc()
	if d > 0 {
		e.metrics.IndexBuildDuration.Observe(d.Seconds())
	}
}
