package corpus

import (
	"context"
	"encoding/json"
	"os"

	apperrors "github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/errors"
)

// JSONFile reads the crawler's JSON export: a single array of articles.
// Only an unreadable file or a top level that is not an array fails the
// batch.
type JSONFile struct {
	path string
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

func (j *JSONFile) Articles(ctx context.Context) ([]Article, error) {
	f, err := os.Open(j.path)
	if err != nil {
		return nil, apperrors.CorpusIO("opening corpus file", err)
	}
	defer f.Close()

	var records []json.RawMessage
	if err := json.NewDecoder(f).Decode(&records); err != nil {
		return nil, apperrors.CorpusIO("decoding corpus file "+j.path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return decodeArticles(records), nil
}

func (j *JSONFile) Close() error { return nil }
