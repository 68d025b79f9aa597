package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-harvester/internal/config"
	"github.com/jonathan/job-harvester/internal/fetch"
	"github.com/jonathan/job-harvester/internal/server"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{
		"init-db", "scrape", "ingest", "search", "show", "list", "clear", "stats", "runs",
		"serve", "schedule", "chat", "embed", "similar", "extract-skills",
		"email", "email-auth", "hash-password", "token",
	} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestList_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := execute(t, "", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database URL is required")
}

func TestClear_RequiresYes(t *testing.T) {
	_, err := execute(t, "", "clear")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestEmail_RequiresRecipient(t *testing.T) {
	_, err := execute(t, "", "email")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--to is required")
}

func TestHashPassword(t *testing.T) {
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("PASSWORD_PEPPER", "pepper")

	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantErr string
	}{
		{name: "flag", args: []string{"hash-password", "--password", "correct horse"}},
		{name: "stdin", stdin: "correct horse\n", args: []string{"hash-password"}},
		{name: "too short", args: []string{"hash-password", "--password", "short"}, wantErr: "at least 8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.stdin, tt.args...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			pw, err := config.NewPasswordConfig()
			require.NoError(t, err)
			assert.True(t, pw.VerifyPassword("correct horse", strings.TrimSpace(out)))
		})
	}
}

func TestToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key-0123")
	t.Setenv("JWT_EXPIRATION_HOURS", "")
	t.Setenv("JWT_ISSUER", "")

	out, err := execute(t, "", "token", "--operator", "ops")
	require.NoError(t, err)

	jwtCfg, err := config.NewJWTConfig()
	require.NoError(t, err)
	claims, err := server.NewJWTService(jwtCfg).ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Operator())
}

func TestToken_Errors(t *testing.T) {
	t.Run("missing operator", func(t *testing.T) {
		_, err := execute(t, "", "token")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--operator")
	})
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := execute(t, "", "token", "--operator", "ops")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})
}

func TestLinkedInConfig(t *testing.T) {
	cfg := config.Config{
		Keywords:            "go developer",
		Location:            "Austin",
		RemoteOnly:          false,
		RequestDelaySeconds: 1.5,
		MaxRetries:          5,
		Concurrency:         3,
		UseBrowser:          true,
	}

	lc := linkedInConfig(cfg)

	assert.Equal(t, "go developer", lc.Query.Keywords)
	assert.Equal(t, "Austin", lc.Query.Location)
	assert.False(t, lc.Query.RemoteOnly)
	assert.Equal(t, fetch.PostedPastMonth, lc.Query.TimePosted)
	assert.Equal(t, 1500*time.Millisecond, lc.RequestDelay)
	assert.Equal(t, 5, lc.MaxRetries)
	assert.Equal(t, 3, lc.Concurrency)
	assert.True(t, lc.UseBrowser)
	assert.Equal(t, fetch.DefaultBaseURL, lc.BaseURL)
}

func TestLinkedInConfig_ZeroKeepsDefaults(t *testing.T) {
	lc := linkedInConfig(config.Config{TimePosted: "r86400"})
	def := fetch.DefaultLinkedInConfig()

	assert.Equal(t, "r86400", lc.Query.TimePosted)
	assert.Equal(t, def.MaxRetries, lc.MaxRetries)
	assert.Equal(t, def.Concurrency, lc.Concurrency)
}

func TestSearchFlags_Apply(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		args       []string
		base       config.Config
		check      func(t *testing.T, cfg config.Config)
	}{
		{
			name: "unset flags keep config",
			base: config.Config{NumPostings: 25, Keywords: "data"},
			check: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, 25, cfg.NumPostings)
				assert.Equal(t, "data", cfg.Keywords)
				assert.True(t, cfg.RemoteOnly, "remote defaults on without a config file")
			},
		},
		{
			name: "flags override",
			args: []string{"-n", "7", "--keywords", "rust", "--location", "Berlin", "--concurrency", "2", "--use-browser"},
			base: config.Config{NumPostings: 25, Keywords: "data"},
			check: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, 7, cfg.NumPostings)
				assert.Equal(t, "rust", cfg.Keywords)
				assert.Equal(t, "Berlin", cfg.Location)
				assert.Equal(t, 2, cfg.Concurrency)
				assert.True(t, cfg.UseBrowser)
			},
		},
		{
			name:       "config file remote_only kept",
			configPath: "config.json",
			base:       config.Config{RemoteOnly: false},
			check: func(t *testing.T, cfg config.Config) {
				assert.False(t, cfg.RemoteOnly)
			},
		},
		{
			name:       "explicit remote flag wins over file",
			configPath: "config.json",
			args:       []string{"--remote=false"},
			base:       config.Config{RemoteOnly: true},
			check: func(t *testing.T, cfg config.Config) {
				assert.False(t, cfg.RemoteOnly)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s searchFlags
			cmd := &cobra.Command{Use: "x"}
			s.register(cmd)
			require.NoError(t, cmd.ParseFlags(tt.args))

			cfg := tt.base
			s.apply(cmd, &globalFlags{configPath: tt.configPath}, &cfg)
			tt.check(t, cfg)
		})
	}
}
