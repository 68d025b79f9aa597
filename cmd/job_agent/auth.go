package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-harvester/internal/config"
	"github.com/jonathan/job-harvester/internal/server"
)

func newHashPasswordCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash for OPERATOR_PASSWORD_HASH",
		Long: `Hash an operator password with BCRYPT_COST and PASSWORD_PEPPER from the
environment. The password is read from stdin when --password is not given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := config.NewPasswordConfig()
			if err != nil {
				return err
			}
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if len(password) < 8 {
				return fmt.Errorf("password must be at least 8 characters")
			}

			hash, err := pw.HashPassword(password)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Password to hash")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var operator string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator bearer token directly from JWT_SECRET",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if operator == "" {
				return fmt.Errorf("--operator is required")
			}
			jwtCfg, err := config.NewJWTConfig()
			if err != nil {
				return err
			}
			token, expiresAt, err := server.NewJWTService(jwtCfg).GenerateToken(operator)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.Format("2006-01-02 15:04 MST"))
			return nil
		},
	}
	cmd.Flags().StringVar(&operator, "operator", "", "Operator name (token subject)")
	return cmd
}
