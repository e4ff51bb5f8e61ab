// Package index defines the inverted index: postings, corpus statistics, the
// immutable Index snapshot served to queries, and the MemoryIndex used to
// accumulate postings while building.
package index

import "sort"

// Index is an immutable inverted index snapshot. All methods are safe for
// concurrent use without locking.
type Index struct {
	terms map[string]PostingList
	order []string
	stats Stats
}

// New assembles an Index from term entries and per-document lengths. Entries
// with no postings are dropped; postings are sorted by document id.
func New(entries []TermEntry, docLengths map[string]int) *Index {
	idx := &Index{
		terms: make(map[string]PostingList, len(entries)),
		stats: NewStats(docLengths),
	}
	for _, e := range entries {
		if len(e.Postings) == 0 {
			continue
		}
		postings := append(PostingList(nil), e.Postings...)
		sort.Slice(postings, func(i, j int) bool {
			return postings[i].DocID < postings[j].DocID
		})
		idx.terms[e.Term] = postings
		idx.order = append(idx.order, e.Term)
	}
	sort.Strings(idx.order)
	return idx
}

// Postings returns the postings list for term, or nil when the term is not
// indexed. The returned slice must not be modified.
func (idx *Index) Postings(term string) PostingList {
	return idx.terms[term]
}

// DocFreq is the number of documents containing term.
func (idx *Index) DocFreq(term string) int {
	return len(idx.terms[term])
}

// DocLength returns the number of terms in the document, or 0 if unknown.
func (idx *Index) DocLength(docID string) int {
	return idx.stats.DocumentLengths[docID]
}

func (idx *Index) DocumentCount() int { return idx.stats.DocumentCount }
func (idx *Index) AverageDocumentLength() float64 { return idx.stats.AverageDocumentLength }
func (idx *Index) TermCount() int { return len(idx.order) }
func (idx *Index) Stats() Stats { return idx.stats }

// Entries returns every term entry ordered by term.
func (idx *Index) Entries() []TermEntry {
	out := make([]TermEntry, 0, len(idx.order))
	for _, term := range idx.order {
		out = append(out, TermEntry{Term: term, Postings: idx.terms[term]})
	}
	return out
}
