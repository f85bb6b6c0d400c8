package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// SearchKey returns the NFC-normalised, lower-cased form of value. Display
// strings and queries both pass through it so they compare in the same space.
func SearchKey(value string) string {
	// Casers carry state; build one per call so concurrent searches are safe.
	return cases.Lower(language.Und).String(norm.NFC.String(value))
}

// SearchTokens lower-cases query and splits it on whitespace.
func SearchTokens(query string) []string {
	return strings.Fields(SearchKey(query))
}

// ContainsAll reports whether haystack contains every token as a substring.
// An empty token list matches everything.
func ContainsAll(haystack string, tokens []string) bool {
	for _, token := range tokens {
		if !strings.Contains(haystack, token) {
			return false
		}
	}
	return true
}
