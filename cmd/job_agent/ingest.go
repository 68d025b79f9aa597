package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-harvester/internal/db"
	"github.com/jonathan/job-harvester/internal/fetch"
	"github.com/jonathan/job-harvester/internal/ingestion"
	"github.com/jonathan/job-harvester/internal/parsing"
)

func newIngestCmd(g *globalFlags) *cobra.Command {
	var useBrowser, asJSON bool

	cmd := &cobra.Command{
		Use:   "ingest <url-or-job-id>...",
		Short: "Fetch and store specific postings by LinkedIn URL or job ID",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("use-browser") {
				cfg.UseBrowser = useBrowser
			}

			a, err := connect(cmd, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			fetcher := fetch.NewLinkedInFetcher(linkedInConfig(cfg), nil)
			normalizer := parsing.NewNormalizer(parsing.Options{
				PositionalCriteria: cfg.PositionalCriteria,
				Verbose:            cfg.Verbose,
			})
			ing := ingestion.NewIngester(fetcher, normalizer, a.db, cfg.Verbose)

			var failed int
			for _, arg := range args {
				posting, err := ing.Ingest(cmd.Context(), arg)
				switch {
				case err == nil:
					if asJSON {
						if err := writeJSON(cmd, posting); err != nil {
							return err
						}
					} else {
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stored %s\n", posting.Summary())
					}
				case db.IsDuplicate(err):
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Already stored: %s\n", posting.JobID)
				default:
					failed++
					log.Printf("[ingest] %s: %v", arg, err)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d posting(s) failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&useBrowser, "use-browser", false, "Render detail pages in headless Chrome when HTTP fails")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print stored postings as JSON")
	return cmd
}
