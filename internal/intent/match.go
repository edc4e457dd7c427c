package intent

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// containsPhrase reports a plain substring hit.
func containsPhrase(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// containsTerm reports whether any term occurs in text. With wordStart set
// a hit must begin a word, so "now" does not fire inside "know".
func containsTerm(text string, terms []string, wordStart bool) bool {
	if !wordStart {
		return containsPhrase(text, terms)
	}
	for _, term := range terms {
		if indexWordStart(text, term, false) >= 0 {
			return true
		}
	}
	return false
}

// containsWord reports whole-word hits only.
func containsWord(text string, words []string, wordStart bool) bool {
	if !wordStart {
		return containsPhrase(text, words)
	}
	for _, w := range words {
		if indexWordStart(text, w, true) >= 0 {
			return true
		}
	}
	return false
}

func indexWordStart(text, term string, wholeWord bool) int {
	if term == "" {
		return -1
	}
	offset := 0
	for {
		i := strings.Index(text[offset:], term)
		if i < 0 {
			return -1
		}
		at := offset + i
		end := at + len(term)
		if boundaryBefore(text, at) && (!wholeWord || boundaryAfter(text, end)) {
			return at
		}
		offset = at + 1
	}
}

func boundaryBefore(text string, at int) bool {
	if at == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:at])
	return !isWordRune(r)
}

func boundaryAfter(text string, end int) bool {
	if end >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[end:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// tokenCount counts whitespace separated tokens.
func tokenCount(text string) int {
	return len(strings.Fields(text))
}
