package index

// Posting records how often a term occurs in one document. Frequency is
// always at least 1.
type Posting struct {
	DocID     string `json:"doc_id"`
	Frequency int    `json:"tf"`
}

// PostingList is ordered by DocID ascending.
type PostingList []Posting

type TermEntry struct {
	Term     string
	Postings PostingList
}

// Stats are the corpus-wide figures BM25 needs. They are derived from the
// document lengths and never updated in place.
type Stats struct {
	DocumentCount         int            `json:"document_count"`
	AverageDocumentLength float64        `json:"average_document_length"`
	DocumentLengths       map[string]int `json:"document_lengths"`
}

// NewStats computes the document count and average length from per-document
// term counts. An empty corpus has an average length of 0.
func NewStats(docLengths map[string]int) Stats {
	s := Stats{
		DocumentCount:   len(docLengths),
		DocumentLengths: docLengths,
	}
	if s.DocumentLengths == nil {
		s.DocumentLengths = map[string]int{}
	}
	if s.DocumentCount == 0 {
		return s
	}
	total := 0
	for _, n := range docLengths {
		total += n
	}
	s.AverageDocumentLength = float64(total) / float64(s.DocumentCount)
	return s
}
