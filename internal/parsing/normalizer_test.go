package parsing

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-harvester/internal/types"
)

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(b)
}

func TestNormalize_FullPage(t *testing.T) {
	n := NewNormalizer(Options{})
	p, err := n.Normalize("3912345678", "", loadFixture(t, "job_posting.html"))
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, "3912345678", p.JobID)
	require.NotNil(t, p.Title)
	assert.Equal(t, "Senior Backend Engineer", *p.Title)
	require.NotNil(t, p.CompanyName)
	assert.Equal(t, "Acme Corp", *p.CompanyName)

	require.NotNil(t, p.JobURL)
	assert.Contains(t, *p.JobURL, "linkedin.com/jobs/view/")
	require.NotNil(t, p.Source)
	assert.Equal(t, "linkedin.com", *p.Source)

	require.NotNil(t, p.Location.Location)
	assert.Equal(t, "San Francisco, CA", *p.Location.Location)
	assert.Equal(t, "San Francisco", *p.City)
	assert.Equal(t, "CA", *p.State)
	assert.Equal(t, "United States", *p.Country)

	require.NotNil(t, p.SeniorityLevel)
	assert.Equal(t, "Mid-Senior level", *p.SeniorityLevel)
	assert.Equal(t, "Full-time", *p.EmploymentType)
	assert.Equal(t, "Engineering and Information Technology", *p.JobFunction)
	assert.Equal(t, "Financial Services", *p.Industry)

	require.NotNil(t, p.Salary.Avg)
	assert.Equal(t, 140000.0, *p.Salary.Min)
	assert.Equal(t, 180000.0, *p.Salary.Max)
	assert.Equal(t, 160000.0, *p.Salary.Avg)

	require.NotNil(t, p.YOE.Avg)
	assert.Equal(t, 3.0, *p.YOE.Min)
	assert.Equal(t, 5.0, *p.YOE.Max)
	assert.Equal(t, 4.0, *p.YOE.Avg)

	assert.ElementsMatch(t, []string{"bachelor's", "master's"}, p.Education)

	require.NotNil(t, p.Description)
	assert.Contains(t, *p.Description, "acme builds payment infrastructure")
	assert.NotContains(t, *p.Description, "<")
	assert.False(t, p.Remote)

	assert.Equal(t, int64(0), n.ExtractorPanics())
}

func TestNormalize_MissingSections(t *testing.T) {
	fragment := `<h2 class="topcard__title">Remote Data Analyst</h2>
<span class="topcard__flavor--bullet">United States</span>`

	p, err := NewNormalizer(Options{Verbose: true}).Normalize("42", "", fragment)
	require.NoError(t, err)

	assert.Equal(t, "Remote Data Analyst", *p.Title)
	assert.Nil(t, p.CompanyName)
	assert.Nil(t, p.JobURL)
	assert.Nil(t, p.Source)
	assert.Nil(t, p.Description)
	assert.True(t, p.Salary.IsEmpty())
	assert.True(t, p.YOE.IsEmpty())
	assert.Empty(t, p.Education)
	assert.NotNil(t, p.Education)
	assert.Nil(t, p.SeniorityLevel)

	assert.Equal(t, "United States", *p.Country)
	assert.Nil(t, p.City)
	assert.True(t, p.Remote)
}

func TestNormalize_SalaryFromDescription(t *testing.T) {
	fragment := `<h2 class="topcard__title">Engineer</h2>
<div class="description__text description__text--rich">
  <p>Pay range: $100,000 - $120,000 depending on experience.</p>
</div>`

	p, err := NewNormalizer(Options{}).Normalize("7", "", fragment)
	require.NoError(t, err)

	require.NotNil(t, p.Salary.Raw)
	assert.Equal(t, "$100,000 - $120,000", *p.Salary.Raw)
	assert.Equal(t, 110000.0, *p.Salary.Avg)
}

func TestNormalize_PositionalCriteria(t *testing.T) {
	fragment := `<ul>
  <li><h3 class="description__job-criteria-subheader">Employment type</h3><span>Contract</span></li>
</ul>`

	byLabel, err := NewNormalizer(Options{}).Normalize("1", "", fragment)
	require.NoError(t, err)
	assert.Nil(t, byLabel.SeniorityLevel)
	assert.Equal(t, "Contract", *byLabel.EmploymentType)

	positional, err := NewNormalizer(Options{PositionalCriteria: true}).Normalize("1", "", fragment)
	require.NoError(t, err)
	assert.Equal(t, "Contract", *positional.SeniorityLevel)
	assert.Nil(t, positional.EmploymentType)
}

func TestNormalize_EmptyFragment(t *testing.T) {
	for _, fragment := range []string{"", "   \n\t"} {
		p, err := NewNormalizer(Options{}).Normalize("99", "", fragment)
		assert.Nil(t, p)
		require.Error(t, err)

		var malformed *MalformedFragmentError
		require.True(t, errors.As(err, &malformed))
		assert.Equal(t, "99", malformed.JobID)
		assert.Contains(t, err.Error(), "99")
	}
}

func TestNormalizer_SafelyContainsPanics(t *testing.T) {
	n := NewNormalizer(Options{})
	ran := false

	n.safely("5", "title", func() { panic("boom") })
	n.safely("5", "company_name", func() { ran = true })

	assert.True(t, ran)
	assert.Equal(t, int64(1), n.ExtractorPanics())
}

func TestNormalizer_ConcurrentUse(t *testing.T) {
	n := NewNormalizer(Options{})
	fragment := loadFixture(t, "job_posting.html")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := n.Normalize("3912345678", "", fragment)
			assert.NoError(t, err)
			assert.Equal(t, "Senior Backend Engineer", *p.Title)
		}()
	}
	wg.Wait()
}

func TestNormalize_DescriptionDerivedFields(t *testing.T) {
	tests := []struct {
		name        string
		description string
		check       func(t *testing.T, p *types.JobPosting)
	}{
		{
			name:        "hyphen yoe range in plain text",
			description: "We are hiring. Requires 3-5 years of experience in Go.",
			check: func(t *testing.T, p *types.JobPosting) {
				require.NotNil(t, p.YOE.Min)
				assert.Equal(t, 3.0, *p.YOE.Min)
				assert.Equal(t, 5.0, *p.YOE.Max)
				assert.Equal(t, 4.0, *p.YOE.Avg)
			},
		},
		{
			name:        "remote-first company",
			description: "We are a remote-first company.",
			check: func(t *testing.T, p *types.JobPosting) {
				assert.True(t, p.Remote)
			},
		},
		{
			name:        "bare ms degree",
			description: "BS or MS in Computer Science. Familiar with MS Office.",
			check: func(t *testing.T, p *types.JobPosting) {
				assert.Equal(t, []string{"bachelor's", "master's"}, p.Education)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fragment := `<h2 class="topcard__title">Engineer</h2>
<div class="description__text description__text--rich">` + tt.description + `</div>`

			p, err := NewNormalizer(Options{}).Normalize("8", "", fragment)
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}

func TestNormalize_PageURLFallback(t *testing.T) {
	const pageURL = "https://www.linkedin.com/jobs-guest/jobs/api/jobPosting/9"
	fragment := `<h2 class="topcard__title">Engineer</h2>`

	p, err := NewNormalizer(Options{}).Normalize("9", pageURL, fragment)
	require.NoError(t, err)

	require.NotNil(t, p.JobURL)
	assert.Equal(t, pageURL, *p.JobURL)
	require.NotNil(t, p.Source)
	assert.Equal(t, "linkedin.com", *p.Source)
}
