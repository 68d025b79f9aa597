package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-harvester/internal/config"
	"github.com/jonathan/job-harvester/internal/pipeline"
)

// searchFlags are the LinkedIn search and pacing overrides shared by scrape,
// schedule and serve.
type searchFlags struct {
	numPostings int
	keywords    string
	location    string
	timePosted  string
	remote      bool
	useBrowser  bool
	concurrency int
}

func (s *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&s.numPostings, "num-postings", "n", 0, "Number of postings to fetch per batch")
	cmd.Flags().StringVar(&s.keywords, "keywords", "", "Search keywords")
	cmd.Flags().StringVar(&s.location, "location", "", "Search location")
	cmd.Flags().StringVar(&s.timePosted, "time-posted", "", "LinkedIn f_TPR filter (default: past month)")
	cmd.Flags().BoolVar(&s.remote, "remote", true, "Only remote postings")
	cmd.Flags().BoolVar(&s.useBrowser, "use-browser", false, "Render detail pages in headless Chrome when HTTP fails")
	cmd.Flags().IntVar(&s.concurrency, "concurrency", 0, "Parallel detail fetches")
}

// apply overrides cfg with the flags that were set. The remote flag also
// applies when no config file supplied remote_only.
func (s *searchFlags) apply(cmd *cobra.Command, g *globalFlags, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("num-postings") {
		cfg.NumPostings = s.numPostings
	}
	if flags.Changed("keywords") {
		cfg.Keywords = s.keywords
	}
	if flags.Changed("location") {
		cfg.Location = s.location
	}
	if flags.Changed("time-posted") {
		cfg.TimePosted = s.timePosted
	}
	if flags.Changed("remote") || g.configPath == "" {
		cfg.RemoteOnly = s.remote
	}
	if flags.Changed("use-browser") {
		cfg.UseBrowser = s.useBrowser
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = s.concurrency
	}
}

func newScrapeCmd(g *globalFlags) *cobra.Command {
	var search searchFlags
	var clearExisting, asJSON bool

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Fetch, normalize and store one batch of postings",
		Long: `Page through LinkedIn's guest job search, download each detail page, normalize
it and insert it. A posting whose job ID is already stored is counted as failed
and the stored record is left unchanged.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			search.apply(cmd, g, &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			a, err := connect(cmd, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			var onProgress pipeline.ProgressCallback
			if cfg.Verbose {
				onProgress = func(e pipeline.ProgressEvent) {
					log.Printf("[VERBOSE] [%d/%d] %s: %s %s", e.Index, e.Total, e.JobID, e.Status, e.Message)
				}
			}
			driver, err := a.driver(cmd.Context(), onProgress)
			if err != nil {
				return err
			}

			summary, err := driver.Run(cmd.Context(), pipeline.RunOptions{
				NumPostings:   cfg.NumPostings,
				ClearExisting: clearExisting,
				Trigger:       pipeline.TriggerCLI,
			})
			if asJSON {
				if jerr := writeJSON(cmd, summary); jerr != nil {
					return jerr
				}
			} else {
				a.out.PrintSummary(summary)
			}
			if errors.Is(err, pipeline.ErrNoPostings) {
				return fmt.Errorf("no postings fetched; LinkedIn may be rate limiting, try again later")
			}
			return err
		},
	}
	search.register(cmd)
	cmd.Flags().BoolVar(&clearExisting, "clear", false, "Delete stored postings before the batch")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	return cmd
}
