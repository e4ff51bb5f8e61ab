package normalizer

import (
	"fmt"

	"github.com/kljensen/snowball"
	"github.com/kljensen/snowball/english"
)

// Stemmer reduces an inflected, lowercased word to its root form.
type Stemmer interface {
	Stem(word string) string
}

// StemmerFunc adapts a plain function to Stemmer.
type StemmerFunc func(word string) string

func (f StemmerFunc) Stem(word string) string { return f(word) }

var snowballLanguages = map[string]struct{}{
	"spanish":   {},
	"french":    {},
	"russian":   {},
	"swedish":   {},
	"norwegian": {},
	"hungarian": {},
}

// NewStemmer returns the stemmer for language. "none" disables stemming.
func NewStemmer(language string) (Stemmer, error) {
	switch language {
	case "indonesian", "":
		return indonesianStemmer{}, nil
	case "english":
		return StemmerFunc(func(word string) string {
			return english.Stem(word, true)
		}), nil
	case "none":
		return StemmerFunc(func(word string) string { return word }), nil
	}
	if _, ok := snowballLanguages[language]; !ok {
		return nil, fmt.Errorf("unsupported stemming language %q", language)
	}
	return StemmerFunc(func(word string) string {
		stemmed, err := snowball.Stem(word, language, true)
		if err != nil {
			return word
		}
		return stemmed
	}), nil
}
