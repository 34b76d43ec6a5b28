package bm25

import (
	"unicode"

	"github.com/rivo/uniseg"
)

// stopWords are dropped from both documents and queries. Matching is
// case-sensitive, so capitalised occurrences survive.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "but": {}, "by": {}, "for": {}, "if": {}, "in": {},
	"into": {}, "is": {}, "it": {}, "no": {}, "not": {}, "of": {},
	"on": {}, "or": {}, "such": {}, "that": {}, "the": {}, "their": {},
	"then": {}, "there": {}, "these": {}, "they": {}, "this": {},
	"to": {}, "was": {}, "will": {}, "with": {},
}

// tokenize splits text at Unicode word boundaries, keeps segments that
// contain a letter or digit, and drops stop words.
func tokenize(text string) []string {
	var tokens []string
	state := -1
	var segment string
	for len(text) > 0 {
		segment, text, state = uniseg.FirstWordInString(text, state)
		if !isWord(segment) {
			continue
		}
		if _, stop := stopWords[segment]; stop {
			continue
		}
		tokens = append(tokens, segment)
	}
	return tokens
}

func isWord(segment string) bool {
	for _, r := range segment {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}
