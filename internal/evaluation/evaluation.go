// Package evaluation measures retrieval quality against a keyword relevance
// oracle: a document is relevant to a query when its raw content contains
// any query word as a whole word, case-insensitively.
package evaluation

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/docstore"
	apperrors "github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/errors"
)

// DefaultK is the cutoff used when none is given.
const DefaultK = 20

// DefaultQueries is the standing query set for the Kompas national corpus.
var DefaultQueries = []string{
	"politik",
	"prabowo tetapkan ikn jadi ibukota politik 2028",
	"korupsi anggaran",
	"ekonomi indonesia",
	"pemilu presiden",
}

var queryWordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Searcher is satisfied by searcher.Engine.
type Searcher interface {
	SearchResults(ctx context.Context, query string, k int) ([]docstore.Result, error)
}

type QueryResult struct {
	Query             string  `json:"query"`
	Retrieved         int     `json:"retrieved"`
	RetrievedRelevant int     `json:"retrieved_relevant_docs"`
	TotalRelevant     int     `json:"total_relevant_docs"`
	Precision         float64 `json:"precision"`
	Recall            float64 `json:"recall"`
}

type Report struct {
	K                int           `json:"k"`
	Queries          []QueryResult `json:"queries"`
	AveragePrecision float64       `json:"average_precision"`
	AverageRecall    float64       `json:"average_recall"`
}

// Oracle decides relevance of raw document content for one query.
type Oracle struct {
	pattern *regexp.Regexp
}

// NewOracle builds the whole-word matcher for query. A query without any
// word characters matches nothing.
func NewOracle(query string) *Oracle {
	words := queryWordPattern.FindAllString(strings.ToLower(query), -1)
	if len(words) == 0 {
		return &Oracle{}
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	expr := `(?i)(?:^|[^\p{L}\p{N}_])(?:` + strings.Join(quoted, "|") + `)(?:$|[^\p{L}\p{N}_])`
	return &Oracle{pattern: regexp.MustCompile(expr)}
}

func (o *Oracle) Relevant(content string) bool {
	if o.pattern == nil || content == "" {
		return false
	}
	return o.pattern.MatchString(content)
}

// Evaluate runs every query through s with cutoff k and scores the results
// against the oracle over docs. Queries that normalize to nothing count as
// retrieving zero documents.
func Evaluate(ctx context.Context, s Searcher, docs []docstore.Document, queries []string, k int) (*Report, error) {
	if k <= 0 {
		k = DefaultK
	}
	logger := slog.Default().With("component", "evaluation")
	report := &Report{K: k, Queries: make([]QueryResult, 0, len(queries))}

	for _, q := range queries {
		results, err := s.SearchResults(ctx, q, k)
		if err != nil && !errors.Is(err, apperrors.ErrEmptyQuery) {
			return nil, fmt.Errorf("evaluating %q: %w", q, err)
		}
		oracle := NewOracle(q)
		qr := QueryResult{Query: q, Retrieved: len(results)}
		for _, r := range results {
			if oracle.Relevant(r.Content) {
				qr.RetrievedRelevant++
			}
		}
		for _, d := range docs {
			if oracle.Relevant(d.Content) {
				qr.TotalRelevant++
			}
		}
		if qr.Retrieved > 0 {
			qr.Precision = float64(qr.RetrievedRelevant) / float64(qr.Retrieved)
		}
		if qr.TotalRelevant > 0 {
			qr.Recall = float64(qr.RetrievedRelevant) / float64(qr.TotalRelevant)
		}
		logger.Debug("query evaluated",
			"query", q,
			"retrieved", qr.Retrieved,
			"relevant", qr.RetrievedRelevant,
			"total_relevant", qr.TotalRelevant,
		)
		report.Queries = append(report.Queries, qr)
	}

	if n := len(report.Queries); n > 0 {
		for _, qr := range report.Queries {
			report.AveragePrecision += qr.Precision
			report.AverageRecall += qr.Recall
		}
		report.AveragePrecision /= float64(n)
		report.AverageRecall /= float64(n)
	}
	return report, nil
}

// ReadQueries reads one query per line, skipping blank lines and lines
// starting with '#'.
func ReadQueries(r io.Reader) ([]string, error) {
	var queries []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if q := strings.TrimSpace(sc.Text()); q != "" && !strings.HasPrefix(q, "#") {
			queries = append(queries, q)
		}
	}
	return queries, sc.Err()
}

// ReadQueriesFile is ReadQueries on the named file.
func ReadQueriesFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening query file: %w", err)
	}
	defer f.Close()
	return ReadQueries(f)
}
