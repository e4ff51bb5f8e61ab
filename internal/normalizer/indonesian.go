package normalizer

import "strings"

// indonesianStemmer is a rule-based affix stripper for Bahasa Indonesia
// (Tala's algorithm as published for Snowball). It needs no root-word
// dictionary: a word is only trimmed while it still has more than two
// vowels, and every removed affix costs exactly one vowel.
type indonesianStemmer struct{}

const (
	prefixNone = iota
	prefixDiMeTer
	prefixPer
	prefixKePeng
	prefixBer
)

type idWord struct {
	word    string
	measure int
	prefix  int
}

func (indonesianStemmer) Stem(word string) string {
	w := &idWord{word: word, measure: countVowels(word)}
	if w.measure <= 2 {
		return word
	}
	w.removeParticle()
	if w.measure > 2 {
		w.removePossessivePronoun()
	}
	if w.measure <= 2 {
		return w.word
	}
	if w.removeFirstOrderPrefix() {
		if w.measure > 2 {
			w.removeSuffix()
		}
		if w.measure > 2 {
			w.removeSecondOrderPrefix()
		}
		return w.word
	}
	w.removeSecondOrderPrefix()
	if w.measure > 2 {
		w.removeSuffix()
	}
	return w.word
}

func (w *idWord) trimSuffix(suffix string) bool {
	if !strings.HasSuffix(w.word, suffix) {
		return false
	}
	w.word = w.word[:len(w.word)-len(suffix)]
	w.measure--
	return true
}

func (w *idWord) removeParticle() {
	for _, p := range []string{"kah", "lah", "pun"} {
		if w.trimSuffix(p) {
			return
		}
	}
}

func (w *idWord) removePossessivePronoun() {
	for _, p := range []string{"nya", "ku", "mu"} {
		if w.trimSuffix(p) {
			return
		}
	}
}

// removeSuffix strips -kan, -an or -i. Which one is allowed depends on the
// prefix removed earlier: ke-/peng- and per- block -kan, di-/me-/ter- block
// -an, and ber- blocks -i. Only the longest matching suffix is considered.
func (w *idWord) removeSuffix() {
	switch {
	case strings.HasSuffix(w.word, "kan"):
		if w.prefix != prefixKePeng && w.prefix != prefixPer {
			w.trimSuffix("kan")
		}
	case strings.HasSuffix(w.word, "an"):
		if w.prefix != prefixDiMeTer {
			w.trimSuffix("an")
		}
	case strings.HasSuffix(w.word, "i"):
		if w.prefix <= prefixPer && !strings.HasSuffix(w.word, "si") {
			w.trimSuffix("i")
		}
	}
}

type prefixRule struct {
	prefix      string
	replacement string
	needsVowel  bool
	kind        int
}

// Longest prefixes first; vowel-conditional rules precede their plain form.
var firstOrderPrefixes = []prefixRule{
	{"meny", "s", true, prefixDiMeTer},
	{"peny", "s", true, prefixKePeng},
	{"meng", "", false, prefixDiMeTer},
	{"peng", "", false, prefixKePeng},
	{"mem", "p", true, prefixDiMeTer},
	{"pem", "p", true, prefixKePeng},
	{"mem", "", false, prefixDiMeTer},
	{"pem", "", false, prefixKePeng},
	{"men", "", false, prefixDiMeTer},
	{"pen", "", false, prefixKePeng},
	{"ter", "", false, prefixDiMeTer},
	{"di", "", false, prefixDiMeTer},
	{"me", "", false, prefixDiMeTer},
	{"ke", "", false, prefixKePeng},
}

func (w *idWord) removeFirstOrderPrefix() bool {
	for _, rule := range firstOrderPrefixes {
		if !strings.HasPrefix(w.word, rule.prefix) {
			continue
		}
		rest := w.word[len(rule.prefix):]
		if rule.needsVowel && (rest == "" || !isVowel(rest[0])) {
			continue
		}
		w.word = rule.replacement + rest
		w.prefix = rule.kind
		w.measure--
		return true
	}
	return false
}

func (w *idWord) removeSecondOrderPrefix() {
	switch {
	case strings.HasPrefix(w.word, "pelajar"):
		w.word = w.word[len("pel"):]
		w.prefix = prefixPer
	case strings.HasPrefix(w.word, "belajar"):
		w.word = w.word[len("bel"):]
		w.prefix = prefixBer
	case strings.HasPrefix(w.word, "per"):
		w.word = w.word[len("per"):]
		w.prefix = prefixPer
	case strings.HasPrefix(w.word, "ber"):
		w.word = w.word[len("ber"):]
		w.prefix = prefixBer
	case strings.HasPrefix(w.word, "pe"):
		w.word = w.word[len("pe"):]
		w.prefix = prefixPer
	case len(w.word) > 4 && strings.HasPrefix(w.word, "be") && !isVowel(w.word[2]) && w.word[3:5] == "er":
		w.word = w.word[len("be"):]
		w.prefix = prefixBer
	default:
		return
	}
	w.measure--
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

func countVowels(word string) int {
	n := 0
	for i := 0; i < len(word); i++ {
		if isVowel(word[i]) {
			n++
		}
	}
	return n
}
