package extraction

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/job-harvester/internal/types"
)

// A pay period such as "/yr" may follow each figure ("$90,000.00/yr - $110,000.00/yr").
// Hyphen, en dash and em dash all separate a range.
var (
	salaryRangeRe  = regexp.MustCompile(`\$([\d,]+)(?:\.\d{2})?(?:\s*/\s*[A-Za-z]+)?\s*[-–—]\s*\$([\d,]+)(?:\.\d{2})?`)
	salarySingleRe = regexp.MustCompile(`\$([\d,]+)(?:\.\d{2})?`)
)

// ExtractSalary finds a salary in the dedicated salary region first and in the
// description second. Within each source a "$A - $B" range beats a single
// "$A" figure. Thousands separators are stripped and cents are dropped.
//
// Raw is the whole region text for a region hit and the matched substring for
// a description hit.
func ExtractSalary(region, description *string) types.Range {
	if region != nil {
		text := strings.TrimSpace(*region)
		if lo, hi, _, ok := matchSalary(text); ok {
			return types.NewRange(text, lo, hi)
		}
	}

	if description != nil {
		if lo, hi, matched, ok := matchSalary(*description); ok {
			return types.NewRange(matched, lo, hi)
		}
	}

	return types.Range{}
}

// matchSalary returns the bounds and the matched text of the first salary in text.
func matchSalary(text string) (lo, hi float64, matched string, ok bool) {
	if m := salaryRangeRe.FindStringSubmatch(text); m != nil {
		lo, okLo := parseAmount(m[1])
		hi, okHi := parseAmount(m[2])
		if okLo && okHi {
			return lo, hi, m[0], true
		}
	}
	if m := salarySingleRe.FindStringSubmatch(text); m != nil {
		if v, okV := parseAmount(m[1]); okV {
			return v, v, m[0], true
		}
	}
	return 0, 0, "", false
}

// parseAmount parses "90,000" as 90000.
func parseAmount(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return float64(n), true
}
