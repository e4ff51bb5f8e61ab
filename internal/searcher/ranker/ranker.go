// Package ranker scores documents against query terms with Okapi BM25.
package ranker

import (
	"fmt"
	"math"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/errors"
)

const (
	DefaultK1 = 0.9
	DefaultB  = 0.4
)

type ScoredDoc struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// Params are the BM25 tuning knobs: K1 controls term-frequency saturation
// and B the strength of document length normalization.
type Params struct {
	K1 float64
	B  float64
}

func DefaultParams() Params {
	return Params{K1: DefaultK1, B: DefaultB}
}

// Validate requires K1 > 0 and B in [0, 1].
func (p Params) Validate() error {
	if !(p.K1 > 0) || math.IsInf(p.K1, 0) {
		return fmt.Errorf("%w: bm25 k1 must be > 0, got %v", apperrors.ErrInvalidInput, p.K1)
	}
	if !(p.B >= 0 && p.B <= 1) {
		return fmt.Errorf("%w: bm25 b must be in [0,1], got %v", apperrors.ErrInvalidInput, p.B)
	}
	return nil
}

// RankParams carries the corpus statistics a ranking pass needs.
type RankParams struct {
	TotalDocs    int
	AvgDocLength float64
	Params
}

// TermPostings pairs a query term with its postings list. DocFreq is the
// term's document frequency in the whole index; it defaults to the postings
// length and must be set when Postings has been filtered.
type TermPostings struct {
	Term     string
	Postings index.PostingList
	DocFreq  int
}

// Rank returns one ScoredDoc per candidate document, ordered by doc id.
// Terms are accumulated in the given order so the floating point sums are
// reproducible. Selecting the best k is left to the caller.
func Rank(terms []TermPostings, params RankParams, docLength func(docID string) int) []ScoredDoc {
	scores := make(map[string]float64)
	for _, tp := range terms {
		if len(tp.Postings) == 0 {
			continue
		}
		df := tp.DocFreq
		if df == 0 {
			df = len(tp.Postings)
		}
		idf := IDF(params.TotalDocs, df)
		for _, posting := range tp.Postings {
			scores[posting.DocID] += idf * TFNorm(
				float64(posting.Frequency),
				float64(docLength(posting.DocID)),
				params.AvgDocLength,
				params.Params,
			)
		}
	}
	result := make([]ScoredDoc, 0, len(scores))
	for docID, score := range scores {
		result = append(result, ScoredDoc{DocID: docID, Score: score})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DocID < result[j].DocID
	})
	return result
}

// IDF is ln((N - df + 0.5) / (df + 0.5) + 1). It is positive for every
// 0 < df <= N.
func IDF(totalDocs, docFreq int) float64 {
	numerator := float64(totalDocs) - float64(docFreq) + 0.5
	denominator := float64(docFreq) + 0.5
	return math.Log(numerator/denominator + 1)
}

// TFNorm is the saturating term-frequency component of BM25.
func TFNorm(termFreq, docLength, avgDocLength float64, p Params) float64 {
	if avgDocLength == 0 {
		return 0
	}
	lengthRatio := docLength / avgDocLength
	denominator := termFreq + p.K1*(1-p.B+p.B*lengthRatio)
	return (termFreq * (p.K1 + 1)) / denominator
}
