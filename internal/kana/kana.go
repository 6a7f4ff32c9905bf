// Package kana normalizes verse text for display and matching.
package kana

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)

	// Whitespace plus the punctuation that never counts toward kimariji
	// matching: commas and periods (both widths), exclamation and question
	// marks, quotation brackets, parentheses, middle dots, and ellipses.
	// \p{Zs} is needed next to \s because Go's \s is ASCII-only and verses
	// carry full-width (U+3000) spaces.
	strippable = regexp.MustCompile(`[\s\p{Zs}、。．，,！？!?『』「」（）()・·…‥]`)
)

// Normalize folds full-width spaces to half-width, collapses whitespace runs
// to a single space, and trims. Punctuation is preserved.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "　", " ")
	s = strings.TrimSpace(s)
	return whitespaceRun.ReplaceAllString(s, " ")
}

// StripForMatching removes whitespace and punctuation so that only the
// characters relevant to kimariji comparison remain.
func StripForMatching(s string) string {
	if s == "" {
		return ""
	}
	return strippable.ReplaceAllString(s, "")
}

// IsStrippable reports whether a rune is ignored by StripForMatching.
func IsStrippable(r rune) bool {
	return strippable.MatchString(string(r))
}
