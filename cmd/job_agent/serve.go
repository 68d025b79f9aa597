package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-harvester/internal/config"
	"github.com/jonathan/job-harvester/internal/server"
	"github.com/jonathan/job-harvester/internal/server/ratelimit"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var search searchFlags
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Serve the stored postings over HTTP. Read endpoints are public. POST /pipeline/run
and DELETE /jobs need a bearer token from POST /auth/token, which is enabled when
JWT_SECRET, OPERATOR_USERNAME and OPERATOR_PASSWORD_HASH are set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			search.apply(cmd, g, &cfg)
			if cmd.Flags().Changed("addr") {
				cfg.ListenAddr = addr
			}
			if err := cfg.Validate(); err != nil {
				return err
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

			srvCfg := server.Config{
				Addr:      cfg.ListenAddr,
				Store:     a.db,
				Runner:    driver,
				RateLimit: ratelimit.LoadConfig(),
				Verbose:   cfg.Verbose,
			}
			if err := operatorAuth(&srvCfg); err != nil {
				log.Printf("[server] Mutating endpoints disabled: %v", err)
			}

			srv, err := server.New(srvCfg)
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return srv.Start(ctx)
		},
	}
	search.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default :8080)")
	return cmd
}

// operatorAuth fills the JWT, password and operator settings from the
// environment. Any missing piece leaves the server read-only.
func operatorAuth(cfg *server.Config) error {
	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return err
	}
	passwords, err := config.NewPasswordConfig()
	if err != nil {
		return err
	}
	operator, err := config.NewOperatorConfig()
	if err != nil {
		return err
	}
	cfg.JWT, cfg.Passwords, cfg.Operator = jwtCfg, passwords, operator
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
