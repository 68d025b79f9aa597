package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/job-harvester/internal/types"
)

var experienceKeywords = []string{
	"experience", "exp", "minimum", "at least", "required",
	"qualification", "background", "track record", "proven",
	"demonstrated", "expertise", "proficiency",
}

var (
	yoeRangeRe   = regexp.MustCompile(`(\d+)\s*(?:-|–|—|to)\s*(\d+)\s*(?:years?|yrs?)(?:\s+of\s+experience)?`)
	bareNumberRe = regexp.MustCompile(`\d+`)

	// "experience: 5 years", "minimum 3+ yrs" and "5+ years of experience".
	yoeSingleRe = regexp.MustCompile(`(?:(?:experience|exp|minimum|at least|required):?\s*(\d+)\+?\s*(?:years?|yrs?)(?:\s+of\s+experience)?|(\d+)\+?\s*(?:years?|yrs?)\s+of\s+(?:[a-z]+\s+)?experience)`)
)

// ExtractYOE extracts the years-of-experience requirement.
//
// bullets are the list-item and paragraph texts of the description, in
// document order; description is the raw description text, before
// CleanDescription drops the hyphen in "3-5". Policy:
//
//  1. the first bullet holding both a range ("3-5 years", "3 to 5 yrs") and an
//     experience keyword wins with min, max and their midpoint;
//  2. otherwise every number in keyword bullets is collected;
//  3. with nothing collected, the range pattern is tried on the description;
//  4. then explicit "experience: N years" style figures in the description;
//  5. collected numbers produce an average-only result.
func ExtractYOE(bullets []string, description *string) types.Range {
	var numbers []int

	for _, bullet := range bullets {
		text := strings.ToLower(strings.TrimSpace(bullet))
		if text == "" || !containsAny(text, experienceKeywords) {
			continue
		}

		if m := yoeRangeRe.FindStringSubmatch(text); m != nil {
			lo, errLo := strconv.Atoi(m[1])
			hi, errHi := strconv.Atoi(m[2])
			if errLo == nil && errHi == nil {
				return types.NewRange(text, float64(lo), float64(hi))
			}
		}

		for _, s := range bareNumberRe.FindAllString(text, -1) {
			if n, err := strconv.Atoi(s); err == nil {
				numbers = append(numbers, n)
			}
		}
	}

	if len(numbers) == 0 && description != nil {
		text := strings.ToLower(*description)

		if m := yoeRangeRe.FindStringSubmatch(text); m != nil {
			lo, errLo := strconv.Atoi(m[1])
			hi, errHi := strconv.Atoi(m[2])
			if errLo == nil && errHi == nil {
				return types.NewRange(m[0], float64(lo), float64(hi))
			}
		}

		for _, m := range yoeSingleRe.FindAllStringSubmatch(text, -1) {
			digits := m[1]
			if digits == "" {
				digits = m[2]
			}
			if n, err := strconv.Atoi(digits); err == nil {
				numbers = append(numbers, n)
			}
		}
	}

	if len(numbers) == 0 {
		return types.Range{}
	}

	sum := 0
	for _, n := range numbers {
		sum += n
	}
	return types.NewAverageRange(formatNumbers(numbers), float64(sum)/float64(len(numbers)))
}

// formatNumbers renders one number as "5" and several as "[3, 5]".
func formatNumbers(numbers []int) string {
	if len(numbers) == 1 {
		return strconv.Itoa(numbers[0])
	}
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = strconv.Itoa(n)
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
}
