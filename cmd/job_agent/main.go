// Package main provides the job_agent CLI: scrape LinkedIn guest job
// postings into PostgreSQL, query them, and serve them over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath  string
	databaseURL string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "job_agent",
		Short: "LinkedIn job posting harvester",
		Long: `job_agent pages through LinkedIn's public job search, normalizes each posting
(salary, years of experience, education, remote flag, location parts) and stores it
once per job ID in PostgreSQL.

Configuration is read from --config (JSON), then the environment (.env is loaded),
then built-in defaults. Command-line flags override all of them.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&g.configPath, "config", "", "Path to config.json")
	root.PersistentFlags().StringVar(&g.databaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL)")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Print detailed debug information")

	root.AddCommand(
		newInitDBCmd(g),
		newScrapeCmd(g),
		newIngestCmd(g),
		newSearchCmd(g),
		newShowCmd(g),
		newListCmd(g),
		newClearCmd(g),
		newStatsCmd(g),
		newRunsCmd(g),
		newServeCmd(g),
		newScheduleCmd(g),
		newChatCmd(g),
		newEmbedCmd(g),
		newSimilarCmd(g),
		newExtractSkillsCmd(g),
		newEmailCmd(g),
		newEmailAuthCmd(g),
		newHashPasswordCmd(),
		newTokenCmd(),
	)
	return root
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
