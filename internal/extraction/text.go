// Package extraction provides the field extractors that turn scraped job
// posting text into typed, nullable values. Every extractor is a pure
// function: a miss yields nil or an empty value, never an error.
package extraction

import (
	"regexp"
	"strings"
)

var (
	camelBoundaryRe = regexp.MustCompile(`([a-z])([A-Z])`)
	punctuationRe   = regexp.MustCompile(`[^\p{L}\p{N}_\s\p{Z}.]`)
	whitespaceRe    = regexp.MustCompile(`[\s\p{Z}]+`)
	periodRunRe     = regexp.MustCompile(`\.+`)
	periodSpacingRe = regexp.MustCompile(`\s*\.\s*`)
)

// CleanDescription normalizes free description text: words glued by markup
// ("skillsExperience") are split, text is lower-cased, punctuation other than
// periods is dropped, and whitespace and period runs are collapsed.
// Returns nil when nothing is left.
func CleanDescription(text string) *string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	text = camelBoundaryRe.ReplaceAllString(text, "${1} ${2}")
	text = strings.ToLower(text)
	text = punctuationRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = periodRunRe.ReplaceAllString(text, ".")
	text = periodSpacingRe.ReplaceAllString(text, ". ")
	text = strings.TrimSpace(text)

	if text == "" {
		return nil
	}
	return &text
}

// containsAny reports whether text contains any of the given substrings.
func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
