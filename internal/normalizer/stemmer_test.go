package normalizer

import "testing"

func TestIndonesianStemmer(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{"membaca", "baca"},
		{"pertumbuhan", "tumbuh"},
		{"perekonomian", "ekonomi"},
		{"ekonomi", "ekonom"},
		{"dilakukan", "laku"},
		{"bukunya", "buku"},
		{"bacalah", "baca"},
		{"menyapu", "sapu"},
		{"memukul", "pukul"},
		{"pelajaran", "ajar"},
		{"indonesia", "indonesia"},
		{"olahraga", "olahraga"},
		{"politik", "politik"},
		{"bola", "bola"},
	}
	s := indonesianStemmer{}
	for _, tt := range tests {
		if got := s.Stem(tt.word); got != tt.want {
			t.Errorf("Stem(%q) = %q, want %q", tt.word, got, tt.want)
		}
	}
}

func TestFixedPointStem(t *testing.T) {
	n := newIndonesian(t)
	for _, word := range []string{"perekonomian", "pertumbuhan", "kebijakan", "pembangunan"} {
		once := n.stem(word)
		if twice := n.stem(once); twice != once {
			t.Errorf("stem(%q) = %q but stem(%q) = %q", word, once, once, twice)
		}
	}
}

func TestNewStemmer(t *testing.T) {
	for _, lang := range []string{"indonesian", "english", "spanish", "none"} {
		if _, err := NewStemmer(lang); err != nil {
			t.Errorf("NewStemmer(%q): %v", lang, err)
		}
	}
	s, _ := NewStemmer("none")
	if got := s.Stem("berlari"); got != "berlari" {
		t.Errorf("none stemmer changed word to %q", got)
	}
}
