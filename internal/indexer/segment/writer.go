package segment

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/codec"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/docstore"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/errors"
)

// Writer persists index snapshots into a data directory.
type Writer struct {
	dataDir string
}

// NewWriter creates a Writer that writes segments into the given directory.
func NewWriter(dataDir string) *Writer {
	return &Writer{dataDir: dataDir}
}

// Path returns where the segment lives for dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}

// Encode serialises a snapshot into segment bytes.
func Encode(idx *index.Index, store *docstore.Store, fingerprint string) ([]byte, error) {
	fp, err := parseFingerprint(fingerprint)
	if err != nil {
		return nil, err
	}
	entries := idx.Entries()

	var postings bytes.Buffer
	dict := make([]DictEntry, 0, len(entries))
	for _, entry := range entries {
		data, err := codec.Marshal(entry.Postings)
		if err != nil {
			return nil, fmt.Errorf("marshaling postings for term %q: %w", entry.Term, err)
		}
		dict = append(dict, DictEntry{
			Term:       entry.Term,
			PostOffset: int64(postings.Len()),
			PostLen:    len(data),
			DocFreq:    len(entry.Postings),
		})
		postings.Write(data)
	}
	dictData, err := codec.Marshal(dict)
	if err != nil {
		return nil, fmt.Errorf("marshaling dictionary: %w", err)
	}
	statsData, err := codec.Marshal(idx.Stats())
	if err != nil {
		return nil, fmt.Errorf("marshaling stats: %w", err)
	}
	docsData, err := codec.Marshal(store.Documents())
	if err != nil {
		return nil, fmt.Errorf("marshaling documents: %w", err)
	}
	docsData = codec.Compress(docsData)

	header := SegmentHeader{
		Magic:       MagicBytes,
		Version:     FormatVersion,
		TermCount:   uint32(len(entries)),
		DocCount:    uint32(idx.DocumentCount()),
		PostSize:    int64(postings.Len()),
		DictSize:    int64(len(dictData)),
		StatsSize:   int64(len(statsData)),
		DocsSize:    int64(len(docsData)),
		Fingerprint: fp,
	}

	var out bytes.Buffer
	out.Grow(int(header.FooterOffset()) + FooterSize)
	out.Write(header.encode())
	out.Write(postings.Bytes())
	out.Write(dictData)
	out.Write(statsData)
	out.Write(docsData)
	sum := blake3.Sum256(out.Bytes())
	out.Write(sum[:])
	return out.Bytes(), nil
}

// Info describes a segment written to disk.
type Info struct {
	Path     string
	Size     int64
	Checksum string
}

// Write atomically replaces the segment in the data directory with the given
// snapshot. It writes to a .tmp file first and renames on success, so a
// failed write leaves any previous segment intact.
func (w *Writer) Write(idx *index.Index, store *docstore.Store, fingerprint string) (Info, error) {
	data, err := Encode(idx, store, fingerprint)
	if err != nil {
		return Info{}, err
	}
	if err := os.MkdirAll(w.dataDir, 0755); err != nil {
		return Info{}, apperrors.CorpusIO("creating segment directory", err)
	}
	finalPath := Path(w.dataDir)
	tmpPath := finalPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return Info{}, apperrors.CorpusIO("creating temp segment file", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		os.Remove(tmpPath)
		return Info{}, apperrors.CorpusIO("writing segment", err)
	}
	if err := f.Sync(); err != nil {
		os.Remove(tmpPath)
		return Info{}, apperrors.CorpusIO("syncing segment file", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return Info{}, apperrors.CorpusIO("closing segment file", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return Info{}, apperrors.CorpusIO("renaming segment file", err)
	}
	return Info{
		Path:     finalPath,
		Size:     int64(len(data)),
		Checksum: hex.EncodeToString(data[len(data)-FooterSize:]),
	}, nil
}
