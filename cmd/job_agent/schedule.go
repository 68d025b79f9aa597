package main

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-harvester/internal/pipeline"
	"github.com/jonathan/job-harvester/internal/scheduler"
)

func newScheduleCmd(g *globalFlags) *cobra.Command {
	var search searchFlags
	var every time.Duration
	var clearFirst bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run a scrape batch now and then on a fixed interval",
		Long: `Run one batch immediately, then one every --every (default: schedule_hours from
config). A tick that arrives while a batch is still running is skipped. Stop with
Ctrl-C; a running batch is allowed to finish.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			search.apply(cmd, g, &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			if !cmd.Flags().Changed("every") {
				every = time.Duration(cfg.ScheduleHours) * time.Hour
			}
			if every < time.Minute {
				return fmt.Errorf("interval must be at least 1m, got %s", every)
			}

			a, err := connect(cmd, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			driver, err := a.driver(cmd.Context(), nil)
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			sched := scheduler.New(driver, every, pipeline.RunOptions{
				NumPostings:   cfg.NumPostings,
				ClearExisting: clearFirst,
			})
			if err := sched.Start(ctx); err != nil {
				return err
			}
			log.Printf("[scheduler] Harvesting %d posting(s) every %s", cfg.NumPostings, every)

			<-ctx.Done()
			sched.Stop()
			a.out.PrintSummary(sched.Last())
			return nil
		},
	}
	search.register(cmd)
	cmd.Flags().DurationVar(&every, "every", 0, "Interval between batches, e.g. 6h")
	cmd.Flags().BoolVar(&clearFirst, "clear-first", false, "Delete stored postings before the first batch")
	return cmd
}
