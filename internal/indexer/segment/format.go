// Package segment reads and writes the persisted index: a single .nrx file
// holding the postings, term dictionary, corpus statistics and document
// store of one index snapshot.
//
// Layout (little endian):
//
//	header     64 bytes   magic, version, counts, region sizes, normalizer fingerprint
//	postings   CBOR []index.Posting per term, concatenated in term order
//	dictionary CBOR []DictEntry sorted by term
//	stats      CBOR index.Stats
//	documents  zstd(CBOR []docstore.Document sorted by id)
//	footer     32 bytes   blake3-256 of everything before it
//
// Nothing time dependent is written, so the same snapshot always produces
// the same bytes.
package segment

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
)

const (
	MagicBytes    uint32 = 0x4E525831 // "NRX1"
	FormatVersion uint32 = 1
	HeaderSize    int    = 64
	FooterSize    int    = 32
)

// FileName is the segment's name inside the index data directory.
const FileName = "index.nrx"

var (
	ErrBadMagic            = errors.New("segment: bad magic bytes")
	ErrUnsupportedVersion  = errors.New("segment: unsupported format version")
	ErrChecksumMismatch    = errors.New("segment: checksum mismatch")
	ErrTruncated           = errors.New("segment: file truncated")
	ErrFingerprintMismatch = errors.New("segment: normalizer fingerprint mismatch")
)

// SegmentHeader is the fixed-size header at the start of every segment.
// Regions follow the header back to back in the order listed, so offsets are
// derived from the sizes.
type SegmentHeader struct {
	Magic       uint32
	Version     uint32
	TermCount   uint32
	DocCount    uint32
	PostSize    int64
	DictSize    int64
	StatsSize   int64
	DocsSize    int64
	Fingerprint [16]byte
}

func (h SegmentHeader) PostOffset() int64 { return int64(HeaderSize) }
func (h SegmentHeader) DictOffset() int64 { return h.PostOffset() + h.PostSize }
func (h SegmentHeader) StatsOffset() int64 { return h.DictOffset() + h.DictSize }
func (h SegmentHeader) DocsOffset() int64 { return h.StatsOffset() + h.StatsSize }
func (h SegmentHeader) FooterOffset() int64 {
	return h.DocsOffset() + h.DocsSize
}

// fitsIn reports whether every region size is at most n. With n bounded by
// a file length the offset sums cannot overflow.
func (h SegmentHeader) fitsIn(n int64) bool {
	for _, size := range []int64{h.PostSize, h.DictSize, h.StatsSize, h.DocsSize} {
		if size < 0 || size > n {
			return false
		}
	}
	return true
}

// FingerprintHex returns the stored normalizer fingerprint, or "" when the
// writer did not record one.
func (h SegmentHeader) FingerprintHex() string {
	if h.Fingerprint == ([16]byte{}) {
		return ""
	}
	return hex.EncodeToString(h.Fingerprint[:])
}

func (h SegmentHeader) encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint32(buf[8:12], h.TermCount)
	binary.LittleEndian.PutUint32(buf[12:16], h.DocCount)
	binary.LittleEndian.PutUint64(buf[16:24], uint64(h.PostSize))
	binary.LittleEndian.PutUint64(buf[24:32], uint64(h.DictSize))
	binary.LittleEndian.PutUint64(buf[32:40], uint64(h.StatsSize))
	binary.LittleEndian.PutUint64(buf[40:48], uint64(h.DocsSize))
	copy(buf[48:64], h.Fingerprint[:])
	return buf
}

func decodeHeader(buf []byte) (SegmentHeader, error) {
	if len(buf) < HeaderSize {
		return SegmentHeader{}, ErrTruncated
	}
	h := SegmentHeader{
		Magic:     binary.LittleEndian.Uint32(buf[0:4]),
		Version:   binary.LittleEndian.Uint32(buf[4:8]),
		TermCount: binary.LittleEndian.Uint32(buf[8:12]),
		DocCount:  binary.LittleEndian.Uint32(buf[12:16]),
		PostSize:  int64(binary.LittleEndian.Uint64(buf[16:24])),
		DictSize:  int64(binary.LittleEndian.Uint64(buf[24:32])),
		StatsSize: int64(binary.LittleEndian.Uint64(buf[32:40])),
		DocsSize:  int64(binary.LittleEndian.Uint64(buf[40:48])),
	}
	copy(h.Fingerprint[:], buf[48:64])
	if h.Magic != MagicBytes {
		return h, fmt.Errorf("%w: %x", ErrBadMagic, h.Magic)
	}
	if h.Version != FormatVersion {
		return h, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.PostSize < 0 || h.DictSize < 0 || h.StatsSize < 0 || h.DocsSize < 0 {
		return h, ErrTruncated
	}
	return h, nil
}

// DictEntry maps a term to its postings bytes, relative to the start of the
// postings region.
type DictEntry struct {
	Term       string `json:"t"`
	PostOffset int64  `json:"o"`
	PostLen    int    `json:"l"`
	DocFreq    int    `json:"d"`
}

func parseFingerprint(s string) ([16]byte, error) {
	var fp [16]byte
	if s == "" {
		return fp, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(fp) {
		return fp, fmt.Errorf("segment: fingerprint %q is not 16 hex-encoded bytes", s)
	}
	copy(fp[:], b)
	return fp, nil
}
