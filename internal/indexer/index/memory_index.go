package index

import (
	"sort"
	"sync"
)

// MemoryIndex accumulates postings for a batch of documents. Each build
// worker owns one; Merge combines them into an Index.
type MemoryIndex struct {
	mu         sync.RWMutex
	index      map[string]map[string]*Posting
	docLengths map[string]int
	size       int64
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		index:      make(map[string]map[string]*Posting),
		docLengths: make(map[string]int),
	}
}

// AddDocument records the normalized terms of one document. A document with
// no terms still counts towards the corpus with length 0.
func (m *MemoryIndex) AddDocument(docID string, terms []string) {
	termData := make(map[string]*Posting)
	for _, term := range terms {
		p, exists := termData[term]
		if !exists {
			p = &Posting{DocID: docID}
			termData[term] = p
		}
		p.Frequency++
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for term, posting := range termData {
		if _, exists := m.index[term]; !exists {
			m.index[term] = make(map[string]*Posting)
		}
		m.index[term][docID] = posting
		m.size += int64(len(term) + len(docID) + 16)
	}
	m.docLengths[docID] = len(terms)
}

// Snapshot returns the accumulated entries ordered by term, each postings
// list ordered by document id.
func (m *MemoryIndex) Snapshot() []TermEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := make([]TermEntry, 0, len(m.index))
	for term, docs := range m.index {
		postings := make(PostingList, 0, len(docs))
		for _, posting := range docs {
			postings = append(postings, *posting)
		}
		sort.Slice(postings, func(i, j int) bool {
			return postings[i].DocID < postings[j].DocID
		})
		entries = append(entries, TermEntry{
			Term:     term,
			Postings: postings,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}

// Size estimates the memory held by postings, in bytes.
func (m *MemoryIndex) Size() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.size
}

func (m *MemoryIndex) DocCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docLengths)
}

// DocLengths returns a copy of the per-document term counts.
func (m *MemoryIndex) DocLengths() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lengths := make(map[string]int, len(m.docLengths))
	for id, n := range m.docLengths {
		lengths[id] = n
	}
	return lengths
}

// Merge combines partial indexes built over disjoint document sets. The
// result does not depend on how documents were spread across parts or on
// the order of parts.
func Merge(parts ...*MemoryIndex) *Index {
	postings := make(map[string]PostingList)
	docLengths := make(map[string]int)
	for _, part := range parts {
		if part == nil {
			continue
		}
		for _, entry := range part.Snapshot() {
			postings[entry.Term] = append(postings[entry.Term], entry.Postings...)
		}
		for id, n := range part.DocLengths() {
			docLengths[id] = n
		}
	}
	entries := make([]TermEntry, 0, len(postings))
	for term, list := range postings {
		entries = append(entries, TermEntry{Term: term, Postings: list})
	}
	return New(entries, docLengths)
}
