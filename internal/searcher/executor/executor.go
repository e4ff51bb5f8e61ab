// Package executor runs a parsed query against an index snapshot.
package executor

import (
	"context"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher/merger"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/tracing"
)

type SearchResult struct {
	Query     string             `json:"query"`
	Terms     []string           `json:"terms"`
	TotalHits int                `json:"total_hits"`
	Results   []ranker.ScoredDoc `json:"results"`
	TermStats map[string]int     `json:"term_stats"`
	Version   uint64             `json:"index_version"`
}

type Executor struct {
	params ranker.Params
	logger *slog.Logger
}

func New(params ranker.Params) *Executor {
	return &Executor{
		params: params,
		logger: slog.Default().With("component", "query-executor"),
	}
}

// Execute scores plan against snap and returns the best limit documents.
// Terms missing from the index contribute nothing. ctx is checked between
// terms so a request deadline can stop a query with large postings lists.
func (e *Executor) Execute(ctx context.Context, snap *indexer.Snapshot, plan *parser.QueryPlan, limit int) (*SearchResult, error) {
	result := &SearchResult{
		Query:     plan.RawQuery,
		Terms:     plan.Terms,
		Results:   []ranker.ScoredDoc{},
		TermStats: make(map[string]int),
	}
	if len(plan.Terms) == 0 {
		return result, nil
	}

	_, span := tracing.StartChildSpan(ctx, "execute")
	defer span.End()

	idx := snap.Index
	termPostings := make([]ranker.TermPostings, 0, len(plan.Terms))
	missing := false
	for _, term := range plan.Terms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		postings := idx.Postings(term)
		if len(postings) == 0 {
			missing = true
			continue
		}
		termPostings = append(termPostings, ranker.TermPostings{Term: term, Postings: postings, DocFreq: len(postings)})
		result.TermStats[term] = len(postings)
	}

	excludeDocIDs := make(map[string]struct{})
	for _, term := range plan.ExcludeTerms {
		for _, p := range idx.Postings(term) {
			excludeDocIDs[p.DocID] = struct{}{}
		}
	}

	if plan.Type == parser.QueryAND || len(excludeDocIDs) > 0 {
		var candidates map[string]struct{}
		switch {
		case plan.Type == parser.QueryAND && missing:
			candidates = map[string]struct{}{}
		case plan.Type == parser.QueryAND:
			candidates = intersectPostings(termPostings)
		default:
			candidates = unionPostings(termPostings)
		}
		for docID := range excludeDocIDs {
			delete(candidates, docID)
		}
		termPostings = filterPostings(termPostings, candidates)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scored := ranker.Rank(termPostings, ranker.RankParams{
		TotalDocs:    idx.DocumentCount(),
		AvgDocLength: idx.AverageDocumentLength(),
		Params:       e.params,
	}, idx.DocLength)
	result.TotalHits = len(scored)
	result.Results = merger.TopK(scored, limit)
	if result.Results == nil {
		result.Results = []ranker.ScoredDoc{}
	}

	span.SetAttr("terms", len(plan.Terms))
	span.SetAttr("candidates", len(scored))
	e.logger.Debug("query executed",
		"query", plan.RawQuery,
		"terms", plan.Terms,
		"candidates", len(scored),
		"results", len(result.Results),
	)
	return result, nil
}

func intersectPostings(termPostings []ranker.TermPostings) map[string]struct{} {
	if len(termPostings) == 0 {
		return make(map[string]struct{})
	}
	shortest := 0
	for i, tp := range termPostings {
		if len(tp.Postings) < len(termPostings[shortest].Postings) {
			shortest = i
		}
	}
	candidates := make(map[string]struct{})
	for _, p := range termPostings[shortest].Postings {
		candidates[p.DocID] = struct{}{}
	}
	for i, tp := range termPostings {
		if i == shortest {
			continue
		}
		docSet := make(map[string]struct{}, len(tp.Postings))
		for _, p := range tp.Postings {
			docSet[p.DocID] = struct{}{}
		}
		for docID := range candidates {
			if _, exists := docSet[docID]; !exists {
				delete(candidates, docID)
			}
		}
	}
	return candidates
}

func unionPostings(termPostings []ranker.TermPostings) map[string]struct{} {
	result := make(map[string]struct{})
	for _, tp := range termPostings {
		for _, p := range tp.Postings {
			result[p.DocID] = struct{}{}
		}
	}
	return result
}

func filterPostings(termPostings []ranker.TermPostings, candidates map[string]struct{}) []ranker.TermPostings {
	filtered := make([]ranker.TermPostings, 0, len(termPostings))
	for _, tp := range termPostings {
		kept := make(index.PostingList, 0, len(tp.Postings))
		for _, p := range tp.Postings {
			if _, ok := candidates[p.DocID]; ok {
				kept = append(kept, p)
			}
		}
		if len(kept) > 0 {
			filtered = append(filtered, ranker.TermPostings{Term: tp.Term, Postings: kept, DocFreq: tp.DocFreq})
		}
	}
	return filtered
}
