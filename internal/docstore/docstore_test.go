package docstore

import (
	"errors"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/errors"
)

func sampleStore() *Store {
	return NewStore([]Document{
		{ID: "b", Title: "Politik", URL: "https://example.com/b", Content: "politik dan ekonomi nasional"},
		{ID: "a", Title: "Ekonomi", Content: "ekonomi indonesia tumbuh"},
		{ID: "c", Content: "olahraga sepak bola"},
		{ID: "a", Title: "duplicate"},
	})
}

func TestLookup(t *testing.T) {
	s := sampleStore()
	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}
	d, err := s.Lookup("a")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if d.Title != "Ekonomi" {
		t.Errorf("first document with a duplicate id should win, got title %q", d.Title)
	}
	if _, err := s.Lookup("missing"); !errors.Is(err, apperrors.ErrDocumentNotFound) {
		t.Errorf("Lookup(missing) err = %v, want ErrDocumentNotFound", err)
	}
	var nilStore *Store
	if _, err := nilStore.Lookup("a"); !errors.Is(err, apperrors.ErrDocumentNotFound) {
		t.Errorf("nil store err = %v", err)
	}
}

func TestDocumentsSortedByID(t *testing.T) {
	docs := sampleStore().Documents()
	var ids []string
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	if strings.Join(ids, ",") != "a,b,c" {
		t.Errorf("ids = %v, want [a b c]", ids)
	}
}

func TestAssembleResults(t *testing.T) {
	s := sampleStore()
	scored := []ranker.ScoredDoc{
		{DocID: "b", Score: 2.5},
		{DocID: "missing", Score: 2.0},
		{DocID: "c", Score: 1.0},
	}
	results := s.AssembleResults(scored, 2)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].DocID != "b" || results[0].Score != 2.5 {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[0].Preview != "politik dan..." {
		t.Errorf("preview = %q", results[0].Preview)
	}
	if results[1].Title != NoTitle {
		t.Errorf("title = %q, want %q", results[1].Title, NoTitle)
	}
	if results[1].URL != "c" {
		t.Errorf("url fallback = %q, want doc id", results[1].URL)
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		text string
		max  int
		want string
	}{
		{"", 5, ""},
		{"satu dua tiga", 5, "satu dua tiga"},
		{"satu dua tiga", 3, "satu dua tiga"},
		{"satu  dua\ntiga empat", 2, "satu dua..."},
		{"satu dua", 0, ""},
	}
	for _, tt := range tests {
		if got := Preview(tt.text, tt.max); got != tt.want {
			t.Errorf("Preview(%q, %d) = %q, want %q", tt.text, tt.max, got, tt.want)
		}
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	tests := []struct {
		page, size int
		want       []int
	}{
		{1, 2, []int{1, 2}},
		{3, 2, []int{5}},
		{4, 2, nil},
		{0, 2, nil},
		{1, 0, nil},
		{1, 10, []int{1, 2, 3, 4, 5}},
	}
	for _, tt := range tests {
		got := Paginate(items, tt.page, tt.size)
		if len(got) != len(tt.want) {
			t.Errorf("Paginate(page=%d, size=%d) = %v, want %v", tt.page, tt.size, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Paginate(page=%d, size=%d) = %v, want %v", tt.page, tt.size, got, tt.want)
				break
			}
		}
	}
	if PageCount(5, 2) != 3 || PageCount(0, 2) != 0 || PageCount(4, 2) != 2 {
		t.Error("PageCount mismatch")
	}
}
