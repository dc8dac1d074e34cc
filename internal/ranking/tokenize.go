package ranking

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Tokenizer splits text into case-folded terms.
// A Tokenizer is safe for concurrent use.
type Tokenizer struct {
	minLength int
	stopWords map[string]struct{}
}

// NewTokenizer returns a tokenizer dropping terms shorter than minLength runes
// and, when stopWords is true, the English stop words.
func NewTokenizer(minLength int, stopWords bool) *Tokenizer {
	if minLength < 1 {
		minLength = 1
	}
	t := &Tokenizer{minLength: minLength}
	if stopWords {
		t.stopWords = englishStopWords
	}
	return t
}

// Tokenize returns the terms of text in order of appearance.
// Text is NFKC-normalized and case-folded, then split on every rune that is
// neither a letter nor a digit.
func (t *Tokenizer) Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	// Casers keep internal state and must not be shared between goroutines.
	folded := cases.Fold().String(norm.NFKC.String(text))

	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	terms := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < t.minLength {
			continue
		}
		if _, stop := t.stopWords[f]; stop {
			continue
		}
		terms = append(terms, f)
	}
	if len(terms) == 0 {
		return nil
	}
	return terms
}

// IsStopWord reports whether term is removed by this tokenizer.
func (t *Tokenizer) IsStopWord(term string) bool {
	_, ok := t.stopWords[term]
	return ok
}
