package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-harvester/internal/embedding"
)

func newEmbedCmd(g *globalFlags) *cobra.Command {
	var limit, batch int

	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Embed stored postings that have no vector yet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.db.EnsureEmbeddingSchema(cmd.Context()); err != nil {
				return err
			}
			e, closeEmbedder, err := embedder(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer closeEmbedder()

			n, err := embedding.NewIndexer(e, a.db, batch, a.cfg.Verbose).Run(cmd.Context(), limit)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Embedded %d posting(s) with %s.\n", n, e.Model())
			return err
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum postings to embed (0 = all)")
	cmd.Flags().IntVar(&batch, "batch", 0, "Postings per embedding request")
	return cmd
}

func newSimilarCmd(g *globalFlags) *cobra.Command {
	var k int

	cmd := &cobra.Command{
		Use:   "similar <query>",
		Short: "Find stored postings closest to a free-text query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			e, closeEmbedder, err := embedder(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer closeEmbedder()

			results, err := embedding.Similar(cmd.Context(), e, a.db, strings.Join(args, " "), k)
			if err != nil {
				return err
			}
			a.out.PrintSimilar(results)
			return nil
		},
	}
	cmd.Flags().IntVarP(&k, "k", "k", 5, "Number of results")
	return cmd
}
