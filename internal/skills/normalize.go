// Package skills extracts key skills from job descriptions with an LLM and
// aggregates them across stored postings.
package skills

import (
	"sort"
	"strings"

	"github.com/jonathan/job-harvester/internal/types"
)

// skillNormalizations maps common variants to canonical names.
var skillNormalizations = map[string]string{
	"golang":     "Go",
	"go lang":    "Go",
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"typescript": "TypeScript",
	"ts":         "TypeScript",
	"k8s":        "Kubernetes",
	"kubernetes": "Kubernetes",
	"postgres":   "PostgreSQL",
	"postgresql": "PostgreSQL",
	"psql":       "PostgreSQL",
	"react.js":   "React",
	"reactjs":    "React",
	"node.js":    "Node.js",
	"nodejs":     "Node.js",
	"aws":        "AWS",
	"gcp":        "GCP",
	"sql":        "SQL",
	"ml":         "Machine Learning",
}

// NormalizeSkillName returns the canonical form of a skill name.
func NormalizeSkillName(skillName string) string {
	normalized := strings.Join(strings.Fields(skillName), " ")
	if normalized == "" {
		return ""
	}

	lower := strings.ToLower(normalized)
	if canonical, ok := skillNormalizations[lower]; ok {
		return canonical
	}

	// Mixed case is assumed deliberate ("GraphQL", "iOS").
	if normalized != strings.ToUpper(normalized) && normalized != lower {
		return normalized
	}

	// Single lower-case or all-caps word: capitalize the first letter.
	if !strings.Contains(normalized, " ") {
		return strings.ToUpper(lower[:1]) + lower[1:]
	}
	return normalized
}

// Normalize canonicalizes names, drops empties and removes duplicates while
// keeping first-mention order.
func Normalize(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		n := NormalizeSkillName(name)
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}

// SkillCount is how many postings mention a skill.
type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// TopSkills counts skills across postings and returns the n most frequent,
// ties broken alphabetically. n <= 0 returns all.
func TopSkills(postings []types.JobPosting, n int) []SkillCount {
	counts := make(map[string]int)
	for _, p := range postings {
		for _, s := range Normalize(p.Skills) {
			counts[s]++
		}
	}

	out := make([]SkillCount, 0, len(counts))
	for skill, count := range counts {
		out = append(out, SkillCount{Skill: skill, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Skill < out[j].Skill
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
