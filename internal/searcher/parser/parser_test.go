package parser

import (
	"reflect"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/normalizer"
)

func newNormalizer(t *testing.T) *normalizer.Normalizer {
	t.Helper()
	n, err := normalizer.New(normalizer.Options{
		Language:           "indonesian",
		ExtraStopwords:     []string{"baca", "juga", "halaman", "kompas"},
		BoilerplatePattern: `baca juga.*`,
	})
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestParse(t *testing.T) {
	n := newNormalizer(t)
	tests := []struct {
		name     string
		query    string
		terms    []string
		exclude  []string
		wantType QueryType
	}{
		{"plain", "Ekonomi Indonesia", []string{"ekonom", "indonesia"}, nil, QueryOR},
		{"duplicates collapse", "ekonomi perekonomian EKONOMI", []string{"ekonom"}, nil, QueryOR},
		{"stopwords only", "dan yang di", nil, nil, QueryOR},
		{"blank", "   ", nil, nil, QueryOR},
		{"and", "ekonomi AND politik", []string{"ekonom", "politik"}, nil, QueryAND},
		{"not", "ekonomi NOT politik", []string{"ekonom"}, []string{"politik"}, QueryOR},
		{"lowercase operators are words", "ekonomi not politik", []string{"ekonom", "not", "politik"}, nil, QueryOR},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Parse(tt.query, n)
			if len(plan.Terms) != len(tt.terms) || (len(tt.terms) > 0 && !reflect.DeepEqual(plan.Terms, tt.terms)) {
				t.Errorf("Terms = %v, want %v", plan.Terms, tt.terms)
			}
			if len(plan.ExcludeTerms) != len(tt.exclude) || (len(tt.exclude) > 0 && !reflect.DeepEqual(plan.ExcludeTerms, tt.exclude)) {
				t.Errorf("ExcludeTerms = %v, want %v", plan.ExcludeTerms, tt.exclude)
			}
			if plan.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", plan.Type, tt.wantType)
			}
			if plan.Empty() != (len(tt.terms) == 0) {
				t.Errorf("Empty() = %v", plan.Empty())
			}
		})
	}
}

func TestParseMatchesDocumentNormalization(t *testing.T) {
	n := newNormalizer(t)
	text := "Pertumbuhan ekonomi <b>nasional</b> baca juga: harga"
	plan := Parse(text, n)
	if !reflect.DeepEqual(plan.Terms, n.Normalize(text)) {
		t.Errorf("query terms %v differ from document terms %v", plan.Terms, n.Normalize(text))
	}
}
