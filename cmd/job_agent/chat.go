package main

import (
	"bufio"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-harvester/internal/agent"
	"github.com/jonathan/job-harvester/internal/embedding"
	"github.com/jonathan/job-harvester/internal/llm"
	"github.com/jonathan/job-harvester/internal/skills"
)

func newChatCmd(g *globalFlags) *cobra.Command {
	var maxSteps int

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the job agent (Gemini function calling)",
		Long: `Start an interactive session with an agent that can search, scrape, summarize,
email and compare stored postings. Type quit, exit or bye to leave.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			key := a.cfg.APIKey(string(llm.ProviderGemini))
			if key == "" {
				return fmt.Errorf("GEMINI_API_KEY is required for chat")
			}
			client, err := llm.NewGeminiClient(ctx, llm.DefaultGeminiConfig(), key)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			tools, closeTools, err := a.toolbox(cmd, client)
			if err != nil {
				return err
			}
			defer closeTools()

			bot, err := agent.New(client, tools, agent.Options{MaxSteps: maxSteps, Verbose: a.cfg.Verbose})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "Job agent ready. Type 'quit' to leave.")
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				_, _ = fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					break
				}
				input := strings.TrimSpace(scanner.Text())
				if input == "" {
					continue
				}
				if agent.IsExit(input) {
					break
				}

				reply, err := bot.Send(ctx, input)
				if err != nil {
					_, _ = fmt.Fprintf(out, "error: %v\n", err)
					continue
				}
				_, _ = fmt.Fprintln(out, reply)
			}
			return scanner.Err()
		},
	}
	cmd.Flags().IntVar(&maxSteps, "max-steps", agent.DefaultMaxSteps, "Maximum tool calls per message")
	return cmd
}

// toolbox wires every backend that is configured. Missing optional
// backends leave their tools answering "not configured".
func (a *app) toolbox(cmd *cobra.Command, client llm.Client) (*agent.Toolbox, func(), error) {
	ctx := cmd.Context()
	closers := []func(){}
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	driver, err := a.driver(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	tb := &agent.Toolbox{
		Store:   a.db,
		Scraper: driver,
		Skills:  skills.NewExtractor(client, a.cfg.MaxSkills, a.cfg.Verbose),
		Verbose: a.cfg.Verbose,
	}

	if m, err := mailer(ctx, a.cfg); err != nil {
		log.Printf("[agent] Email tool disabled: %v", err)
	} else {
		tb.Mailer = m
	}

	if e, closeEmbedder, err := embedder(ctx, a.cfg); err != nil {
		log.Printf("[agent] Similarity tool disabled: %v", err)
	} else {
		closers = append(closers, closeEmbedder)
		tb.Similar = embedding.NewSearcher(e, a.db)
	}

	return tb, closeAll, nil
}
