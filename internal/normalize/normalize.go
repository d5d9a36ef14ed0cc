// Package normalize holds the string normalisation used to join and filter apartment records.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NeighborhoodSuffix is the token that ends a neighborhood (동) name.
const NeighborhoodSuffix = "동"

var reNumberedNeighborhood = regexp.MustCompile(`[0-9]+` + NeighborhoodSuffix + `$`)

// Neighborhood collapses numbered sub-units to their parent name:
// "역삼2동" becomes "역삼동". Surrounding whitespace is trimmed.
func Neighborhood(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	return reNumberedNeighborhood.ReplaceAllString(s, NeighborhoodSuffix)
}

// ComplexName collapses whitespace runs to a single space and trims the ends.
func ComplexName(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// Key returns the form used for exact-match comparison of facet values:
// NFC-composed with surrounding whitespace trimmed.
func Key(raw string) string {
	return norm.NFC.String(strings.TrimSpace(raw))
}

// Equal reports whether a and b are equal under Key.
func Equal(a, b string) bool {
	return Key(a) == Key(b)
}
