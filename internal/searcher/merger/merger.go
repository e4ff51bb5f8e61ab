// Package merger selects the best k scored documents.
package merger

import (
	"container/heap"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher/ranker"
)

// TopK returns at most k documents ordered by score descending, ties broken
// by doc id ascending. It keeps a min-heap of size k, so the input is never
// fully sorted.
func TopK(docs []ranker.ScoredDoc, k int) []ranker.ScoredDoc {
	if k <= 0 {
		return nil
	}
	h := &scoredDocHeap{}
	heap.Init(h)
	for _, doc := range docs {
		if h.Len() < k {
			heap.Push(h, doc)
			continue
		}
		if worse((*h)[0], doc) {
			(*h)[0] = doc
			heap.Fix(h, 0)
		}
	}
	result := make([]ranker.ScoredDoc, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(ranker.ScoredDoc)
	}
	return result
}

// worse reports whether a ranks below b.
func worse(a, b ranker.ScoredDoc) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.DocID > b.DocID
}

type scoredDocHeap []ranker.ScoredDoc

func (h scoredDocHeap) Len() int { return len(h) }

func (h scoredDocHeap) Less(i, j int) bool { return worse(h[i], h[j]) }

func (h scoredDocHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *scoredDocHeap) Push(x interface{}) {
	*h = append(*h, x.(ranker.ScoredDoc))
}

func (h *scoredDocHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
