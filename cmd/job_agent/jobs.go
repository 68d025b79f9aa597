package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-harvester/internal/db"
)

func newInitDBCmd(g *globalFlags) *cobra.Command {
	var withEmbeddings bool

	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Recreate the jobs table (discards stored postings)",
		Long: `Drop and recreate the jobs table and its indexes. The pipeline_runs table is
created if missing and kept otherwise. With --embeddings the pgvector extension
and the job_embeddings table are created too.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.db.Initialize(cmd.Context()); err != nil {
				return err
			}
			if withEmbeddings {
				if err := a.db.EnsureEmbeddingSchema(cmd.Context()); err != nil {
					return err
				}
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Database initialized.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&withEmbeddings, "embeddings", false, "Also create the pgvector embedding table")
	return cmd
}

func newSearchCmd(g *globalFlags) *cobra.Command {
	var title, location string
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search stored postings by title and location substring",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			jobs, err := a.db.SearchJobs(cmd.Context(), db.SearchOptions{Title: title, Location: location, Limit: limit})
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, jobs)
			}
			a.out.PrintJobList(jobs)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Title substring (case-insensitive)")
	cmd.Flags().StringVar(&location, "location", "", "Location substring (case-insensitive)")
	cmd.Flags().IntVarP(&limit, "limit", "l", db.DefaultSearchLimit, "Maximum results")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newShowCmd(g *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one stored posting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			job, err := a.db.GetJobByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if job == nil {
				return fmt.Errorf("job %s not found", args[0])
			}
			if asJSON {
				return writeJSON(cmd, job)
			}
			a.out.PrintJob(job)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newListCmd(g *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every stored posting in insertion order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			jobs, err := a.db.GetAllJobs(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, jobs)
			}
			a.out.PrintJobList(jobs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Dump all postings as JSON")
	return cmd
}

func newClearCmd(g *globalFlags) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored posting (schema is kept)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete all postings without --yes")
			}
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.db.ClearJobs(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d job(s).\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}

func newStatsCmd(g *globalFlags) *cobra.Command {
	var top int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show counts and averages over the stored postings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.db.JobStats(cmd.Context(), top)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, stats)
			}
			a.out.PrintStats(stats)
			return nil
		},
	}
	cmd.Flags().IntVar(&top, "top", 5, "Number of companies to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newRunsCmd(g *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent pipeline runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			runs, err := a.db.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			a.out.PrintRuns(runs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Number of runs")
	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
