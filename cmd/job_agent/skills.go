package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-harvester/internal/skills"
)

func newExtractSkillsCmd(g *globalFlags) *cobra.Command {
	var limit, top int

	cmd := &cobra.Command{
		Use:   "extract-skills",
		Short: "Ask the LLM for the key skills of postings that have none",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			client, err := llmClient(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			n, err := skills.NewExtractor(client, a.cfg.MaxSkills, a.cfg.Verbose).Run(cmd.Context(), a.db, limit)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Extracted skills for %d posting(s).\n", n)
			if err != nil {
				return err
			}

			if top > 0 {
				jobs, err := a.db.GetAllJobs(cmd.Context())
				if err != nil {
					return err
				}
				a.out.PrintSkills(skills.TopSkills(jobs, top))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum postings to process")
	cmd.Flags().IntVar(&top, "top", 10, "Print the N most common skills afterwards (0 to skip)")
	return cmd
}
