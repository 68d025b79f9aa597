package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-harvester/internal/db"
	"github.com/jonathan/job-harvester/internal/email"
)

func newEmailCmd(g *globalFlags) *cobra.Command {
	var to, title, location string
	var limit int

	cmd := &cobra.Command{
		Use:   "email",
		Short: "Email matching postings through Gmail",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if to == "" {
				return fmt.Errorf("--to is required")
			}
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			jobs, err := a.db.SearchJobs(cmd.Context(), db.SearchOptions{Title: title, Location: location, Limit: limit})
			if err != nil {
				return err
			}
			sender, err := mailer(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			id, err := sender.SendJobs(cmd.Context(), to, jobs)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Sent %d job(s) to %s (message %s).\n", len(jobs), to, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Recipient address")
	cmd.Flags().StringVar(&title, "title", "", "Title substring")
	cmd.Flags().StringVar(&location, "location", "", "Location substring")
	cmd.Flags().IntVarP(&limit, "limit", "l", db.DefaultSearchLimit, "Maximum postings")
	return cmd
}

func newEmailAuthCmd(g *globalFlags) *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "email-auth",
		Short: "Authorize Gmail sending and cache the OAuth token",
		Long: `Print the Google consent URL for the gmail.send scope, read the authorization
code (from --code or stdin) and write the token to gmail_token (default token.json).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			oauthCfg, err := email.LoadOAuthConfig(cfg.GmailCredentials)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if code == "" {
				_, _ = fmt.Fprintf(out, "Open this link in your browser, then paste the authorization code:\n%s\n> ", email.AuthCodeURL(oauthCfg))
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read authorization code: %w", err)
				}
				code = strings.TrimSpace(line)
			}
			if code == "" {
				return fmt.Errorf("authorization code is empty")
			}

			if _, err := email.ExchangeCode(cmd.Context(), oauthCfg, code, cfg.GmailToken); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "Token saved to %s\n", cfg.GmailToken)
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "Authorization code (prompted when empty)")
	return cmd
}
