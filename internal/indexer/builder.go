// Package indexer builds inverted index snapshots from a document batch and
// persists them as segments.
package indexer

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/docstore"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/normalizer"
)

// Snapshot is an immutable, queryable index together with the documents it
// was built from.
type Snapshot struct {
	Index       *index.Index
	Store       *docstore.Store
	Fingerprint string
}

// Build normalizes every document and assembles an index snapshot. The work
// is split across workers, each filling its own MemoryIndex, and merged at
// the end; the result is identical for any worker count. Documents with a
// duplicate id after the first are skipped. Build fails only if ctx is
// cancelled.
func Build(ctx context.Context, docs []docstore.Document, n *normalizer.Normalizer, workers int) (*Snapshot, error) {
	logger := slog.Default().With("component", "index-builder")
	if workers < 1 {
		workers = 1
	}

	unique := make([]docstore.Document, 0, len(docs))
	seen := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		if _, dup := seen[d.ID]; dup {
			logger.Warn("duplicate document id, keeping first", "doc_id", d.ID)
			continue
		}
		seen[d.ID] = struct{}{}
		unique = append(unique, d)
	}
	if workers > len(unique) && len(unique) > 0 {
		workers = len(unique)
	}

	parts := make([]*index.MemoryIndex, workers)
	chunk := (len(unique) + workers - 1) / workers
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		start, end := w*chunk, (w+1)*chunk
		if start > len(unique) {
			start = len(unique)
		}
		if end > len(unique) {
			end = len(unique)
		}
		mem := index.NewMemoryIndex()
		parts[w] = mem
		batch := unique[start:end]
		g.Go(func() error {
			for i := range batch {
				if err := gctx.Err(); err != nil {
					return err
				}
				d := &batch[i]
				d.Terms = n.Normalize(d.Title + "\n" + d.Content)
				mem.AddDocument(d.ID, d.Terms)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}

	for w, part := range parts {
		logger.Debug("build worker finished",
			"worker", w,
			"documents", part.DocCount(),
			"postings_bytes", part.Size(),
		)
	}
	idx := index.Merge(parts...)
	logger.Info("index built",
		"documents", idx.DocumentCount(),
		"terms", idx.TermCount(),
		"avg_doc_length", idx.AverageDocumentLength(),
		"workers", workers,
	)
	return &Snapshot{
		Index:       idx,
		Store:       docstore.NewStore(unique),
		Fingerprint: n.Fingerprint(),
	}, nil
}

// FromSegment wraps a loaded segment as a snapshot.
func FromSegment(seg *segment.Segment) *Snapshot {
	return &Snapshot{
		Index:       seg.Index,
		Store:       seg.Store,
		Fingerprint: seg.Fingerprint(),
	}
}

// LoadSnapshot reads the segment in dataDir and checks that it was built
// with the normalizer configuration identified by fingerprint.
func LoadSnapshot(dataDir, fingerprint string) (*Snapshot, error) {
	seg, err := segment.Load(segment.Path(dataDir))
	if err != nil {
		return nil, err
	}
	if err := seg.CheckFingerprint(fingerprint); err != nil {
		return nil, err
	}
	return FromSegment(seg), nil
}
