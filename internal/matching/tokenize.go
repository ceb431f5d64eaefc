// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package matching

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// normalize folds s for case-insensitive comparison. NFC first, so a
// decomposed "é" and a precomposed one compare equal.
func normalize(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

// stopWords are dropped from descriptions before comparison.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "is": {}, "was": {}, "it": {}, "this": {}, "that": {},
	"my": {}, "i": {},
}

func isLocationSep(r rune) bool {
	return unicode.IsSpace(r) || r == '-' || r == '_'
}

func isNameSep(r rune) bool {
	return isLocationSep(r) || r == ','
}

func isDescriptionSep(r rune) bool {
	if isNameSep(r) {
		return true
	}
	switch r {
	case '.', ':', ';', '!', '?':
		return true
	}
	return false
}

// locationTokens splits a normalized location on whitespace, hyphen and
// underscore.
func locationTokens(s string) []string {
	return strings.FieldsFunc(s, isLocationSep)
}

// nameTokens splits a normalized item name and keeps tokens longer than two
// characters.
func nameTokens(s string) []string {
	return longTokens(strings.FieldsFunc(s, isNameSep), nil)
}

// descriptionTokens splits a normalized description on whitespace and
// punctuation, drops stop words and keeps tokens longer than two characters.
func descriptionTokens(s string) []string {
	return longTokens(strings.FieldsFunc(s, isDescriptionSep), stopWords)
}

func longTokens(tokens []string, skip map[string]struct{}) []string {
	out := tokens[:0]
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) <= 2 {
			continue
		}
		if _, ok := skip[tok]; ok {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// overlaps reports whether a contains b or b contains a.
func overlaps(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// anyOverlap reports whether tok overlaps any token in set.
func anyOverlap(tok string, set []string) bool {
	for _, other := range set {
		if overlaps(tok, other) {
			return true
		}
	}
	return false
}
