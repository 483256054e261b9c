// Package util provides common utility functions.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Matches spaces, underscores, and slashes (for replacement with dashes).
	wordSeparatorRe = regexp.MustCompile(`[\s_/]+`)
	// Matches non-alphanumeric characters (except dashes).
	nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9-]`)
	// Matches multiple consecutive dashes.
	multipleDashRe = regexp.MustCompile(`-+`)
)

// NormalizePerk converts an amenity label to its canonical slug.
//
// Normalization rules:
//  1. Decompose accents and drop non-ASCII runes
//  2. Trim whitespace and lowercase
//  3. Replace spaces, underscores and slashes with dashes
//  4. Remove non-alphanumeric characters (except dashes)
//  5. Collapse multiple dashes and trim them from both ends
//
// Examples:
//
//	"Free Parking"   → "free-parking"
//	"wifi"           → "wifi"
//	"Pets_Allowed!"  → "pets-allowed"
//	"Café / Bar"     → "cafe-bar"
func NormalizePerk(input string) string {
	s := norm.NFKD.String(input)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(strings.TrimSpace(s))
	s = wordSeparatorRe.ReplaceAllString(s, "-")
	s = nonAlphanumericRe.ReplaceAllString(s, "")
	s = multipleDashRe.ReplaceAllString(s, "-")

	return strings.Trim(s, "-")
}

// NormalizePerks normalizes every perk, dropping empty results and
// duplicates while keeping the order of first appearance. The result is
// never nil.
func NormalizePerks(perks []string) []string {
	out := make([]string, 0, len(perks))
	seen := make(map[string]struct{}, len(perks))
	for _, p := range perks {
		slug := NormalizePerk(p)
		if slug == "" {
			continue
		}
		if _, dup := seen[slug]; dup {
			continue
		}
		seen[slug] = struct{}{}
		out = append(out, slug)
	}
	return out
}
