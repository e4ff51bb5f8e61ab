package segment

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/codec"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/docstore"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/errors"
)

// Segment is a fully decoded persisted index.
type Segment struct {
	Header   SegmentHeader
	Index    *index.Index
	Store    *docstore.Store
	Checksum [32]byte
}

// Fingerprint returns the normalizer fingerprint the segment was built with.
func (s *Segment) Fingerprint() string {
	return s.Header.FingerprintHex()
}

// ChecksumHex returns the footer checksum, which identifies the segment's
// exact contents.
func (s *Segment) ChecksumHex() string {
	return hex.EncodeToString(s.Checksum[:])
}

// CheckFingerprint fails when the segment was built with a different
// normalizer configuration than want. Segments without a recorded
// fingerprint are accepted.
func (s *Segment) CheckFingerprint(want string) error {
	got := s.Fingerprint()
	if got == "" || want == "" || got == want {
		return nil
	}
	return fmt.Errorf("%w: segment %s, normalizer %s", ErrFingerprintMismatch, got, want)
}

// Load reads, verifies and decodes the segment at path. Every failure is
// reported as a CorpusIO error.
func Load(path string) (*Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.CorpusIO("opening segment file", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.CorpusIO("reading segment file", err)
	}
	seg, err := Decode(data)
	if err != nil {
		return nil, apperrors.CorpusIO("decoding "+path, err)
	}
	return seg, nil
}

// Decode verifies and decodes segment bytes produced by Encode.
func Decode(data []byte) (*Segment, error) {
	if len(data) < HeaderSize+FooterSize {
		return nil, ErrTruncated
	}
	header, err := decodeHeader(data[:HeaderSize])
	if err != nil {
		return nil, err
	}
	if !header.fitsIn(int64(len(data))) {
		return nil, ErrTruncated
	}
	footerAt := header.FooterOffset()
	if footerAt < int64(HeaderSize) || footerAt+int64(FooterSize) != int64(len(data)) {
		return nil, ErrTruncated
	}
	var stored [32]byte
	copy(stored[:], data[footerAt:])
	if sum := blake3.Sum256(data[:footerAt]); !bytes.Equal(sum[:], stored[:]) {
		return nil, ErrChecksumMismatch
	}

	region := func(off, size int64) []byte { return data[off : off+size] }

	var dict []DictEntry
	if err := codec.Unmarshal(region(header.DictOffset(), header.DictSize), &dict); err != nil {
		return nil, fmt.Errorf("parsing dictionary: %w", err)
	}
	if len(dict) != int(header.TermCount) {
		return nil, fmt.Errorf("dictionary has %d terms, header says %d", len(dict), header.TermCount)
	}
	postings := region(header.PostOffset(), header.PostSize)
	entries := make([]index.TermEntry, 0, len(dict))
	for _, d := range dict {
		if d.PostOffset < 0 || d.PostLen < 0 || d.PostOffset > int64(len(postings)) ||
			int64(d.PostLen) > int64(len(postings))-d.PostOffset {
			return nil, fmt.Errorf("postings for term %q out of range", d.Term)
		}
		var list index.PostingList
		if err := codec.Unmarshal(postings[d.PostOffset:d.PostOffset+int64(d.PostLen)], &list); err != nil {
			return nil, fmt.Errorf("parsing postings for term %q: %w", d.Term, err)
		}
		entries = append(entries, index.TermEntry{Term: d.Term, Postings: list})
	}

	var stats index.Stats
	if err := codec.Unmarshal(region(header.StatsOffset(), header.StatsSize), &stats); err != nil {
		return nil, fmt.Errorf("parsing stats: %w", err)
	}
	if stats.DocumentCount != int(header.DocCount) || len(stats.DocumentLengths) != stats.DocumentCount {
		return nil, fmt.Errorf("stats disagree with header: %d documents, header says %d",
			stats.DocumentCount, header.DocCount)
	}

	docsData, err := codec.Decompress(region(header.DocsOffset(), header.DocsSize))
	if err != nil {
		return nil, fmt.Errorf("decompressing documents: %w", err)
	}
	var docs []docstore.Document
	if err := codec.Unmarshal(docsData, &docs); err != nil {
		return nil, fmt.Errorf("parsing documents: %w", err)
	}

	return &Segment{
		Header:   header,
		Index:    index.New(entries, stats.DocumentLengths),
		Store:    docstore.NewStore(docs),
		Checksum: stored,
	}, nil
}
