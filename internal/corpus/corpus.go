// Package corpus loads the raw article batch produced by the crawler and
// turns it into documents ready for indexing. Articles can come from the
// crawler's JSON export or from a PostgreSQL or SQLite table.
package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/docstore"
	apperrors "github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/errors"
)

// Article is one crawled record. Any field may be missing.
type Article struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Date    string `json:"date"`
	Author  string `json:"author"`
	Content string `json:"content"`
	Tags    Tags   `json:"tags"`
}

// Tags accepts either a JSON array of strings or the semicolon-joined form
// used by the CSV export. Non-string array items are dropped and any other
// value decodes to no tags.
type Tags []string

func (t *Tags) UnmarshalJSON(data []byte) error {
	var joined string
	if err := json.Unmarshal(data, &joined); err == nil {
		*t = SplitTags(joined)
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		*t = nil
		return nil
	}
	tags := make([]string, 0, len(items))
	for _, item := range items {
		var tag string
		if json.Unmarshal(item, &tag) == nil {
			tags = append(tags, tag)
		}
	}
	*t = tags
	return nil
}

// decodeArticles decodes each raw record on its own. A record with
// wrong-typed fields keeps the fields that did decode; one that is not an
// object at all becomes an empty article. Neither stops the batch.
func decodeArticles(records []json.RawMessage) []Article {
	logger := slog.Default().With("component", "corpus")
	articles := make([]Article, len(records))
	for i, raw := range records {
		var a Article
		if err := json.Unmarshal(raw, &a); err != nil {
			var typeErr *json.UnmarshalTypeError
			if !errors.As(err, &typeErr) {
				a = Article{}
			}
			logger.Warn("malformed article, substituting empty fields",
				"ordinal", i,
				"error", fmt.Errorf("%w: %w", apperrors.ErrMalformedDocument, err),
			)
		}
		articles[i] = a
	}
	return articles
}

// SplitTags splits a semicolon-joined tag list, dropping blanks.
func SplitTags(joined string) []string {
	var tags []string
	for _, tag := range strings.Split(joined, ";") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Source supplies the full article batch. Failing to read the batch is a
// CorpusIO error; individual bad records are repaired, not reported.
type Source interface {
	Articles(ctx context.Context) ([]Article, error)
	Close() error
}

// ToDocuments converts articles to documents. The id is the trimmed url, or
// the article's position in the batch when the url is missing. Articles
// without content are kept with an empty body and logged.
func ToDocuments(articles []Article) []docstore.Document {
	logger := slog.Default().With("component", "corpus")
	docs := make([]docstore.Document, 0, len(articles))
	for i, a := range articles {
		doc := docstore.Document{
			ID:      strings.TrimSpace(a.URL),
			Title:   strings.TrimSpace(a.Title),
			Date:    strings.TrimSpace(a.Date),
			Author:  strings.TrimSpace(a.Author),
			URL:     strings.TrimSpace(a.URL),
			Content: a.Content,
			Tags:    a.Tags,
		}
		if doc.ID == "" {
			doc.ID = strconv.Itoa(i)
		}
		if strings.TrimSpace(doc.Content) == "" {
			logger.Warn("article has no content, indexing it empty",
				"doc_id", doc.ID,
				"ordinal", i,
				"error", apperrors.ErrMalformedDocument,
			)
			doc.Content = ""
		}
		docs = append(docs, doc)
	}
	return docs
}

// Load reads every article from src and converts it.
func Load(ctx context.Context, src Source) ([]docstore.Document, error) {
	articles, err := src.Articles(ctx)
	if err != nil {
		return nil, err
	}
	return ToDocuments(articles), nil
}
