// Package similarity implements the identity similarity engine: tokenizing
// free text, weighted and unweighted Jaccard scoring, per-lens blending, and
// overall aggregation across lenses.
package similarity

import "strings"

// stopWords are common English function words excluded from text comparison.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "if": true, "on": true, "in": true, "with": true,
	"to": true, "for": true, "of": true, "by": true, "is": true,
	"are": true, "am": true, "be": true, "was": true, "were": true,
	"this": true, "that": true,
}

// Tokenize normalizes free text into comparable tokens: lowercase, split on
// runs of non-alphanumeric characters, drop stopwords, then apply a light
// suffix-stripping heuristic. It is a heuristic normalizer, not a stemmer;
// over- and under-stemming are tolerated. Output order follows input order.
func Tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})

	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if stopWords[word] {
			continue
		}
		tokens = append(tokens, stem(word))
	}
	return tokens
}

// TokenizeAll tokenizes each text independently and concatenates the token
// streams in order.
func TokenizeAll(texts []string) []string {
	var tokens []string
	for _, text := range texts {
		tokens = append(tokens, Tokenize(text)...)
	}
	return tokens
}

// stem strips at most one common suffix, longest first, keeping the result
// above a minimum length.
func stem(word string) string {
	switch {
	case len(word) > 4 && strings.HasSuffix(word, "ing"):
		return word[:len(word)-3]
	case len(word) > 3 && strings.HasSuffix(word, "ed"):
		return word[:len(word)-2]
	case len(word) > 3 && strings.HasSuffix(word, "s"):
		return word[:len(word)-1]
	}
	return word
}
