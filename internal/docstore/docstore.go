// Package docstore holds display metadata for indexed articles and joins it
// with ranked document ids to produce result records.
package docstore

import (
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/errors"
)

const (
	// NoTitle is shown for articles the crawler could not extract a title from.
	NoTitle = "[NO TITLE]"
	// Ellipsis marks a truncated preview.
	Ellipsis = "..."
)

// Document is a single news article. Terms is the normalized token sequence
// derived from Title and Content; it may be empty.
type Document struct {
	ID      string   `json:"id"`
	Title   string   `json:"title,omitempty"`
	Date    string   `json:"date,omitempty"`
	Author  string   `json:"author,omitempty"`
	URL     string   `json:"url,omitempty"`
	Content string   `json:"content,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	Terms   []string `json:"terms,omitempty"`
}

// Result is a ranked document joined with its metadata.
type Result struct {
	DocID   string  `json:"doc_id"`
	Score   float64 `json:"score"`
	Title   string  `json:"title"`
	Date    string  `json:"date"`
	Author  string  `json:"author"`
	URL     string  `json:"url"`
	Content string  `json:"content,omitempty"`
	Preview string  `json:"preview"`
}

// Store is an immutable id-keyed document collection.
type Store struct {
	docs map[string]*Document
	ids  []string
}

// NewStore indexes docs by id. When two documents share an id the first one
// wins.
func NewStore(docs []Document) *Store {
	s := &Store{docs: make(map[string]*Document, len(docs))}
	for i := range docs {
		d := &docs[i]
		if _, dup := s.docs[d.ID]; dup {
			continue
		}
		s.docs[d.ID] = d
		s.ids = append(s.ids, d.ID)
	}
	sort.Strings(s.ids)
	return s
}

// Lookup returns the document with the given id or ErrDocumentNotFound.
func (s *Store) Lookup(id string) (*Document, error) {
	if s == nil {
		return nil, apperrors.ErrDocumentNotFound
	}
	d, ok := s.docs[id]
	if !ok {
		return nil, apperrors.ErrDocumentNotFound
	}
	return d, nil
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// Documents returns the stored documents ordered by id.
func (s *Store) Documents() []Document {
	if s == nil {
		return nil
	}
	out := make([]Document, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, *s.docs[id])
	}
	return out
}

// AssembleResults joins scored ids with metadata, keeping the ranked order.
// Ids missing from the store are skipped. previewWords bounds the preview
// length; zero or less disables previews.
func (s *Store) AssembleResults(scored []ranker.ScoredDoc, previewWords int) []Result {
	results := make([]Result, 0, len(scored))
	for _, sd := range scored {
		d, err := s.Lookup(sd.DocID)
		if err != nil {
			continue
		}
		r := Result{
			DocID:   sd.DocID,
			Score:   sd.Score,
			Title:   d.Title,
			Date:    d.Date,
			Author:  d.Author,
			URL:     d.URL,
			Content: d.Content,
		}
		if r.Title == "" {
			r.Title = NoTitle
		}
		if r.URL == "" {
			r.URL = d.ID
		}
		if previewWords > 0 {
			r.Preview = Preview(d.Content, previewWords)
		}
		results = append(results, r)
	}
	return results
}

// Preview keeps the first maxWords whitespace-separated words of text and
// appends Ellipsis when anything was cut.
func Preview(text string, maxWords int) string {
	if text == "" || maxWords <= 0 {
		return ""
	}
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}
	return strings.Join(words[:maxWords], " ") + Ellipsis
}

// Paginate returns the 1-based page of items. Out-of-range pages are empty.
func Paginate[T any](items []T, page, pageSize int) []T {
	if page < 1 || pageSize < 1 {
		return nil
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return nil
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// PageCount returns how many pages of pageSize are needed for total items.
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize < 1 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
