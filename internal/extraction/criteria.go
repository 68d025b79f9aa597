package extraction

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/job-harvester/internal/types"
)

// CriteriaHeaderSelector matches the label headers of the job-criteria list.
// Each header is followed by a sibling span holding the value.
const CriteriaHeaderSelector = "h3.description__job-criteria-subheader"

// criteriaLabels maps normalized label text to the field it fills.
var criteriaLabels = map[string]string{
	"seniority level":  "seniority",
	"seniority":        "seniority",
	"experience level": "seniority",
	"employment type":  "employment",
	"job type":         "employment",
	"job function":     "function",
	"function":         "function",
	"industries":       "industry",
	"industry":         "industry",
}

// CriteriaPositional reads the criteria list by position: header 1 is
// seniority, 2 employment type, 3 job function, 4 industry. A page with fewer
// headers leaves the missing positions nil.
func CriteriaPositional(doc *goquery.Selection) types.Criteria {
	var c types.Criteria
	if doc == nil {
		return c
	}

	headers := doc.Find(CriteriaHeaderSelector)
	targets := []**string{&c.SeniorityLevel, &c.EmploymentType, &c.JobFunction, &c.Industry}
	for i, target := range targets {
		if i >= headers.Length() {
			break
		}
		*target = criteriaValue(headers.Eq(i))
	}
	return c
}

// CriteriaByLabel reads the criteria list by label text, so a missing or
// reordered label only affects its own field.
func CriteriaByLabel(doc *goquery.Selection) types.Criteria {
	var c types.Criteria
	if doc == nil {
		return c
	}

	doc.Find(CriteriaHeaderSelector).Each(func(_ int, h *goquery.Selection) {
		label := strings.ToLower(strings.Join(strings.Fields(h.Text()), " "))
		value := criteriaValue(h)
		switch criteriaLabels[label] {
		case "seniority":
			c.SeniorityLevel = value
		case "employment":
			c.EmploymentType = value
		case "function":
			c.JobFunction = value
		case "industry":
			c.Industry = value
		}
	})
	return c
}

// criteriaValue returns the trimmed text of the first span sibling after h.
func criteriaValue(h *goquery.Selection) *string {
	span := h.NextAllFiltered("span").First()
	if span.Length() == 0 {
		return nil
	}
	return types.StringPtr(strings.TrimSpace(span.Text()))
}
