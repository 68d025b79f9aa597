// Package parsing turns a fetched job detail page into a normalized JobPosting.
package parsing

import (
	"log"
	"strings"
	"sync/atomic"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/job-harvester/internal/extraction"
	"github.com/jonathan/job-harvester/internal/types"
)

// Selectors for the LinkedIn guest job detail page.
const (
	SelectorTitle       = "h2.topcard__title"
	SelectorCompany     = "a.topcard__org-name-link"
	SelectorLocation    = "span.topcard__flavor--bullet"
	SelectorDescription = "div.description__text--rich"
	SelectorSalary      = "div.salary.compensation__salary"
	SelectorJobLink     = "a.topcard__link"
	SelectorBullets     = "li, p"
)

// Options configures a Normalizer.
type Options struct {
	// PositionalCriteria reads the job-criteria list by header position
	// instead of by label text.
	PositionalCriteria bool
	Verbose            bool
}

// Normalizer assembles JobPostings from detail-page HTML. It is safe for
// concurrent use.
type Normalizer struct {
	opts   Options
	panics atomic.Int64
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

// ExtractorPanics returns how many extractor panics were contained so far.
func (n *Normalizer) ExtractorPanics() int64 {
	return n.panics.Load()
}

// Normalize parses one detail-page fragment and runs every field extractor
// over it. pageURL is the address the fragment was fetched from; it becomes
// the job URL, and the source host, when the page carries no job link.
// Each extractor is isolated: a panic in one leaves its field empty and the
// rest still run. Only an empty or unparseable fragment is an error.
func (n *Normalizer) Normalize(jobID, pageURL, fragment string) (*types.JobPosting, error) {
	if strings.TrimSpace(fragment) == "" {
		return nil, &MalformedFragmentError{JobID: jobID, Message: "empty fragment"}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, &MalformedFragmentError{JobID: jobID, Message: "failed to parse HTML", Cause: err}
	}
	root := doc.Selection

	p := &types.JobPosting{JobID: jobID, Education: []string{}}

	descSel := root.Find(SelectorDescription).First()
	salarySel := root.Find(SelectorSalary).First()
	if descSel.Length() == 0 && salarySel.Length() == 0 && n.opts.Verbose {
		log.Printf("[VERBOSE] [normalize] job %s has no description or salary region", jobID)
	}

	var rawDescription *string
	if descSel.Length() > 0 {
		rawDescription = types.StringPtr(descSel.Text())
	}

	n.safely(jobID, "job_url", func() {
		if href, ok := root.Find(SelectorJobLink).First().Attr("href"); ok {
			p.JobURL = types.StringPtr(strings.TrimSpace(href))
		}
		if p.JobURL == nil {
			p.JobURL = types.StringPtr(strings.TrimSpace(pageURL))
		}
	})
	n.safely(jobID, "source", func() {
		p.Source = extraction.SourceFromURL(p.JobURL)
	})
	n.safely(jobID, "title", func() {
		p.Title = firstText(root, SelectorTitle)
	})
	n.safely(jobID, "company_name", func() {
		p.CompanyName = firstText(root, SelectorCompany)
	})
	n.safely(jobID, "location", func() {
		p.Location = extraction.ParseLocation(firstText(root, SelectorLocation))
	})
	n.safely(jobID, "description", func() {
		if rawDescription != nil {
			p.Description = extraction.CleanDescription(*rawDescription)
		}
	})
	n.safely(jobID, "criteria", func() {
		if n.opts.PositionalCriteria {
			p.Criteria = extraction.CriteriaPositional(root)
		} else {
			p.Criteria = extraction.CriteriaByLabel(root)
		}
	})
	n.safely(jobID, "salary", func() {
		var region *string
		if salarySel.Length() > 0 {
			region = types.StringPtr(salarySel.Text())
		}
		p.Salary = extraction.ExtractSalary(region, rawDescription)
	})
	n.safely(jobID, "yoe", func() {
		var bullets []string
		descSel.Find(SelectorBullets).Each(func(_ int, s *goquery.Selection) {
			bullets = append(bullets, s.Text())
		})
		p.YOE = extraction.ExtractYOE(bullets, rawDescription)
	})
	n.safely(jobID, "education", func() {
		p.Education = extraction.ExtractEducation(p.Description)
	})
	n.safely(jobID, "remote", func() {
		extraction.RecomputeRemote(p)
	})

	return p, nil
}

// safely runs fn and converts a panic into a logged, counted miss.
func (n *Normalizer) safely(jobID, field string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			n.panics.Add(1)
			log.Printf("[normalize] extractor %s failed for job %s: %v", field, jobID, r)
		}
	}()
	fn()
}

// firstText returns the trimmed text of the first match, or nil.
func firstText(root *goquery.Selection, selector string) *string {
	sel := root.Find(selector).First()
	if sel.Length() == 0 {
		return nil
	}
	return types.StringPtr(strings.TrimSpace(sel.Text()))
}
