package extraction

import (
	"regexp"
	"strings"
)

// Description cleaning drops apostrophes and spaces periods ("ph. d"), so the
// pattern accepts both the raw and the cleaned spellings. A bare "ms" counts
// only with a trailing period or when followed by "in", "degree", "or", "and"
// or a separator, so "MS Office" is not a degree.
var degreeRe = regexp.MustCompile(`(?i)\b(?:(bachelor[’']?s|master[’']?s|ph\.?\s?d|doctorate|b\.?\s?s)\b|(m\.\s?s)\b|(ms)(?:\.|\s+(?:in|degree|or|and)\b|\s*[/,)]))`)

var degreeAliases = map[string]string{
	"bachelors": "bachelor's",
	"bs":        "bachelor's",
	"b.s":       "bachelor's",
	"masters":   "master's",
	"ms":        "master's",
	"m.s":       "master's",
	"ph.d":      "phd",
}

// ExtractEducation returns the distinct degree tokens mentioned in a
// description, normalized to "bachelor's", "master's", "phd" or "doctorate".
// Order follows first mention.
func ExtractEducation(description *string) []string {
	if description == nil {
		return []string{}
	}

	seen := make(map[string]bool)
	degrees := []string{}
	for _, m := range degreeRe.FindAllStringSubmatch(*description, -1) {
		degree := NormalizeDegree(firstGroup(m))
		if degree == "" || seen[degree] {
			continue
		}
		seen[degree] = true
		degrees = append(degrees, degree)
	}
	return degrees
}

// NormalizeDegree folds case, apostrophe variants, spacing and abbreviations
// so that equal degrees compare equal.
func NormalizeDegree(token string) string {
	t := strings.ToLower(strings.TrimSpace(token))
	t = strings.ReplaceAll(t, "’", "'")
	t = strings.ReplaceAll(t, " ", "")
	t = strings.TrimSuffix(t, ".")
	if alias, ok := degreeAliases[t]; ok {
		return alias
	}
	return t
}

// firstGroup returns the first non-empty capture group of m.
func firstGroup(m []string) string {
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}
