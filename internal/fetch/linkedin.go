package fetch

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// LinkedIn guest endpoint defaults.
const (
	DefaultBaseURL        = "https://www.linkedin.com"
	DefaultPageSize       = 10
	DefaultRequestDelay   = 2 * time.Second
	DefaultErrorDelay     = 5 * time.Second
	DefaultMaxRetries     = 3
	DefaultInitialBackoff = 10 * time.Second

	// PostedPastMonth is the f_TPR value for postings from the last 30 days.
	PostedPastMonth = "r2592000"

	listPath   = "/jobs-guest/jobs/api/seeMoreJobPostings/search"
	detailPath = "/jobs-guest/jobs/api/jobPosting/"

	detailReadySelector = "h2.topcard__title"
)

// RawPosting is one fetched detail page.
type RawPosting struct {
	JobID string
	URL   string
	HTML  string
}

// SearchQuery selects which listings are paged through.
type SearchQuery struct {
	Keywords   string
	Location   string
	TimePosted string // f_TPR value, e.g. PostedPastMonth
	RemoteOnly bool   // f_WT=2
}

// DefaultSearchQuery lists remote postings from the past month.
func DefaultSearchQuery() SearchQuery {
	return SearchQuery{TimePosted: PostedPastMonth, RemoteOnly: true}
}

// SeenFilter drops job IDs that earlier runs already stored, so they are not
// fetched again. Marking IDs is left to the caller once a posting is stored.
type SeenFilter interface {
	FilterUnseen(ctx context.Context, ids []string) ([]string, error)
}

// LinkedInConfig configures a LinkedInFetcher. Zero counts and an empty
// BaseURL take the defaults; zero delays disable waiting.
type LinkedInConfig struct {
	BaseURL        string
	Query          SearchQuery
	PageSize       int
	RequestDelay   time.Duration // minimum spacing between requests
	ErrorDelay     time.Duration // wait after a failed listing page
	MaxRetries     int           // attempts per request
	InitialBackoff time.Duration // first wait after HTTP 429, doubled each retry
	Concurrency    int           // parallel detail fetches
	UseBrowser     bool          // render detail pages in headless Chrome when HTTP fails
	BrowserTimeout time.Duration
	Verbose        bool
	HTTP           *Options
}

func (c *LinkedInConfig) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.RequestDelay < 0 {
		c.RequestDelay = 0
	}
	if c.ErrorDelay < 0 {
		c.ErrorDelay = 0
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.InitialBackoff < 0 {
		c.InitialBackoff = 0
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	if c.HTTP == nil {
		c.HTTP = DefaultOptions()
	}
}

// DefaultLinkedInConfig returns the production pacing.
func DefaultLinkedInConfig() LinkedInConfig {
	return LinkedInConfig{
		BaseURL:        DefaultBaseURL,
		Query:          DefaultSearchQuery(),
		PageSize:       DefaultPageSize,
		RequestDelay:   DefaultRequestDelay,
		ErrorDelay:     DefaultErrorDelay,
		MaxRetries:     DefaultMaxRetries,
		InitialBackoff: DefaultInitialBackoff,
		Concurrency:    1,
		BrowserTimeout: DefaultBrowserTimeout,
		HTTP:           DefaultOptions(),
	}
}

// LinkedInFetcher pages through the guest job search and downloads detail
// pages. It is safe for concurrent use.
type LinkedInFetcher struct {
	cfg     LinkedInConfig
	limiter *rate.Limiter
	seen    SeenFilter
	render  func(ctx context.Context, url string) (string, error)
}

// NewLinkedInFetcher creates a fetcher. seen may be nil.
func NewLinkedInFetcher(cfg LinkedInConfig, seen SeenFilter) *LinkedInFetcher {
	cfg.applyDefaults()
	f := &LinkedInFetcher{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(cfg.RequestDelay), 1),
		seen:    seen,
	}
	f.render = func(ctx context.Context, u string) (string, error) {
		return WithBrowser(ctx, u, detailReadySelector, f.cfg.BrowserTimeout, f.cfg.Verbose)
	}
	return f
}

// ListURL returns the search page URL starting at offset start.
func (f *LinkedInFetcher) ListURL(start int) string {
	q := url.Values{}
	q.Set("keywords", f.cfg.Query.Keywords)
	q.Set("location", f.cfg.Query.Location)
	if f.cfg.Query.TimePosted != "" {
		q.Set("f_TPR", f.cfg.Query.TimePosted)
	}
	if f.cfg.Query.RemoteOnly {
		q.Set("f_WT", "2")
	}
	q.Set("start", strconv.Itoa(start))
	return f.cfg.BaseURL + listPath + "?" + q.Encode()
}

// DetailURL returns the detail page URL of jobID.
func (f *LinkedInFetcher) DetailURL(jobID string) string {
	return f.cfg.BaseURL + detailPath + url.PathEscape(jobID)
}

// ParseJobIDs extracts job IDs from a search results page. It returns the IDs
// in page order and the number of result items on the page, which may exceed
// the ID count when a card has no entity URN.
func ParseJobIDs(html string) ([]string, int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse search page: %w", err)
	}

	items := doc.Find("li")
	var ids []string
	items.Each(func(_ int, li *goquery.Selection) {
		urn, ok := li.Find("div.base-card").First().Attr("data-entity-urn")
		if !ok {
			return
		}
		// urn:li:jobPosting:<id>
		parts := strings.Split(urn, ":")
		if len(parts) < 4 || strings.TrimSpace(parts[3]) == "" {
			return
		}
		ids = append(ids, strings.TrimSpace(parts[3]))
	})
	return ids, items.Length(), nil
}

// ListJobIDs pages through search results until n distinct unseen IDs are
// collected, a short or empty page is reached, or a page keeps failing.
func (f *LinkedInFetcher) ListJobIDs(ctx context.Context, n int) ([]string, error) {
	ids := make([]string, 0, n)
	collected := make(map[string]bool, n)

	for start := 0; len(ids) < n; start += f.cfg.PageSize {
		res, err := f.get(ctx, f.ListURL(start), true)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ids, ctxErr
			}
			if len(ids) == 0 {
				return nil, fmt.Errorf("failed to list jobs: %w", err)
			}
			log.Printf("[fetch] stopping at offset %d: %v", start, err)
			break
		}

		pageIDs, items, err := ParseJobIDs(res.HTML)
		if err != nil {
			return ids, err
		}
		if items == 0 {
			if f.cfg.Verbose {
				log.Printf("[VERBOSE] [fetch] no more jobs at offset %d", start)
			}
			break
		}

		fresh := make([]string, 0, len(pageIDs))
		for _, id := range pageIDs {
			if !collected[id] {
				collected[id] = true
				fresh = append(fresh, id)
			}
		}
		if f.seen != nil && len(fresh) > 0 {
			unseen, err := f.seen.FilterUnseen(ctx, fresh)
			if err != nil {
				log.Printf("[fetch] seen-job filter unavailable, fetching all: %v", err)
			} else {
				fresh = unseen
			}
		}
		for _, id := range fresh {
			if len(ids) >= n {
				break
			}
			ids = append(ids, id)
		}

		if f.cfg.Verbose {
			log.Printf("[VERBOSE] [fetch] page at offset %d: %d items, %d new ids, %d total", start, items, len(fresh), len(ids))
		}
		if items < f.cfg.PageSize {
			break
		}
	}
	return ids, nil
}

// FetchDetail downloads the detail page of jobID, falling back to the
// headless browser when enabled and the HTTP fetch fails for a reason other
// than rate limiting.
func (f *LinkedInFetcher) FetchDetail(ctx context.Context, jobID string) (*RawPosting, error) {
	u := f.DetailURL(jobID)
	res, err := f.get(ctx, u, false)
	if err == nil {
		return &RawPosting{JobID: jobID, URL: u, HTML: res.HTML}, nil
	}
	if !f.cfg.UseBrowser || IsRateLimited(err) || ctx.Err() != nil {
		return nil, err
	}

	log.Printf("[fetch] HTTP fetch of job %s failed, rendering in browser: %v", jobID, err)
	html, berr := f.render(ctx, u)
	if berr != nil {
		return nil, &Error{URL: u, Message: "browser fallback failed", Cause: berr}
	}
	return &RawPosting{JobID: jobID, URL: u, HTML: html}, nil
}

// FetchBatch lists up to n job IDs and downloads their detail pages. Failed
// detail pages are logged and skipped. Postings come back in listing order.
// An error is returned only when listing fails outright or ctx ends.
func (f *LinkedInFetcher) FetchBatch(ctx context.Context, n int) ([]RawPosting, error) {
	if n <= 0 {
		return nil, nil
	}

	ids, err := f.ListJobIDs(ctx, n)
	if err != nil && len(ids) == 0 {
		return nil, err
	}
	log.Printf("[fetch] found %d unique job IDs", len(ids))

	results := make([]*RawPosting, len(ids))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.Concurrency)
	for i, id := range ids {
		g.Go(func() error {
			posting, err := f.FetchDetail(gCtx, id)
			if err != nil {
				if ctxErr := gCtx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.Printf("[fetch] failed to fetch job %s: %v", id, err)
				return nil
			}
			results[i] = posting
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	postings := make([]RawPosting, 0, len(results))
	for _, p := range results {
		if p != nil {
			postings = append(postings, *p)
		}
	}
	return postings, nil
}

// get performs one paced GET with retries. HTTP 429 waits with exponential
// backoff; other failures are retried after ErrorDelay only when retryAll is
// set.
func (f *LinkedInFetcher) get(ctx context.Context, u string, retryAll bool) (*Result, error) {
	backoff := f.cfg.InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= f.cfg.MaxRetries; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		res, err := URL(ctx, u, f.cfg.HTTP)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt == f.cfg.MaxRetries {
			break
		}

		var wait time.Duration
		switch {
		case IsRateLimited(err):
			log.Printf("[fetch] rate limited, waiting %s (attempt %d/%d)", backoff, attempt, f.cfg.MaxRetries)
			wait = backoff
			backoff *= 2
		case retryAll:
			log.Printf("[fetch] %v, retrying in %s (attempt %d/%d)", err, f.cfg.ErrorDelay, attempt, f.cfg.MaxRetries)
			wait = f.cfg.ErrorDelay
		default:
			return nil, err
		}
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
