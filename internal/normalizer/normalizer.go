// Package normalizer turns raw article text into index terms. The same
// Normalizer must be used when building an index and when parsing queries
// against it; Fingerprint identifies a configuration so a persisted index can
// detect a mismatch.
package normalizer

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/config"
)

// maxStemPasses bounds the fixed-point stemming loop.
const maxStemPasses = 4

var (
	markupPattern    = regexp.MustCompile(`<.*?>`)
	nonLetterPattern = regexp.MustCompile(`[^\p{L}\s]+`)
)

// Options configures a Normalizer.
type Options struct {
	Language           string
	ExtraStopwords     []string
	BoilerplatePattern string
	StripPatterns      []string
}

// Normalizer is immutable after construction and safe for concurrent use.
type Normalizer struct {
	opts        Options
	stopwords   map[string]struct{}
	boilerplate *regexp.Regexp
	strip       []*regexp.Regexp
	stemmer     Stemmer
	fingerprint string
}

// New compiles the configured patterns and resolves the language's stopword
// list and stemmer.
func New(opts Options) (*Normalizer, error) {
	stemmer, err := NewStemmer(opts.Language)
	if err != nil {
		return nil, err
	}
	n := &Normalizer{
		opts:      opts,
		stopwords: StopwordsFor(opts.Language),
		stemmer:   stemmer,
	}
	for _, w := range opts.ExtraStopwords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			n.stopwords[w] = struct{}{}
		}
	}
	if opts.BoilerplatePattern != "" {
		n.boilerplate, err = regexp.Compile(opts.BoilerplatePattern)
		if err != nil {
			return nil, fmt.Errorf("compiling boilerplate pattern %q: %w", opts.BoilerplatePattern, err)
		}
	}
	for _, p := range opts.StripPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling strip pattern %q: %w", p, err)
		}
		n.strip = append(n.strip, re)
	}
	n.fingerprint = n.computeFingerprint()
	return n, nil
}

// FromConfig builds a Normalizer from the normalizer config section.
func FromConfig(cfg config.NormalizerConfig) (*Normalizer, error) {
	return New(Options{
		Language:           cfg.Language,
		ExtraStopwords:     cfg.ExtraStopwords,
		BoilerplatePattern: cfg.BoilerplatePattern,
		StripPatterns:      cfg.StripPatterns,
	})
}

// Normalize lowercases text, strips markup and boilerplate, drops digits and
// punctuation, splits on whitespace, removes stopwords and stems what is
// left. Empty input yields an empty slice.
func (n *Normalizer) Normalize(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ToLower(text)
	text = markupPattern.ReplaceAllString(text, " ")
	if n.boilerplate != nil {
		text = n.boilerplate.ReplaceAllString(text, " ")
	}
	for _, re := range n.strip {
		text = re.ReplaceAllString(text, " ")
	}
	text = nonLetterPattern.ReplaceAllString(text, " ")

	words := strings.Fields(text)
	terms := make([]string, 0, len(words))
	for _, word := range words {
		if n.IsStopword(word) {
			continue
		}
		term := n.stem(word)
		if term == "" || n.IsStopword(term) {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}

// IsStopword reports whether an already-lowercased token is in the stopword
// set.
func (n *Normalizer) IsStopword(token string) bool {
	_, ok := n.stopwords[token]
	return ok
}

// Language returns the configured language name.
func (n *Normalizer) Language() string {
	return n.opts.Language
}

// Fingerprint is a stable hash of everything that influences Normalize.
func (n *Normalizer) Fingerprint() string {
	return n.fingerprint
}

// stem applies the stemmer until the token stops changing so that stemming
// a stemmed token is a no-op.
func (n *Normalizer) stem(word string) string {
	for i := 0; i < maxStemPasses; i++ {
		next := n.stemmer.Stem(word)
		if next == word {
			break
		}
		word = next
	}
	return word
}

func (n *Normalizer) computeFingerprint() string {
	words := make([]string, 0, len(n.stopwords))
	for w := range n.stopwords {
		words = append(words, w)
	}
	sort.Strings(words)

	h := blake3.New()
	fmt.Fprintf(h, "lang=%s\n", n.opts.Language)
	fmt.Fprintf(h, "boilerplate=%s\n", n.opts.BoilerplatePattern)
	for _, p := range n.opts.StripPatterns {
		fmt.Fprintf(h, "strip=%s\n", p)
	}
	fmt.Fprintf(h, "stop=%s\n", strings.Join(words, ","))
	return hex.EncodeToString(h.Sum(nil)[:16])
}
