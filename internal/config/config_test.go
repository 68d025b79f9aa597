package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "REDIS_URL", "LLM_PROVIDER", "GEMINI_API_KEY", "OPENAI_API_KEY",
		"EMBEDDING_PROVIDER", "GMAIL_CREDENTIALS", "GMAIL_TOKEN", "EMAIL_FROM",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "LISTEN_ADDR",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeConfig(t, `{
		"database_url": "postgres://localhost:5432/jobs",
		"keywords": "data engineer",
		"num_postings": 40,
		"remote_only": true,
		"verbose": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost:5432/jobs", cfg.DatabaseURL)
	assert.Equal(t, "data engineer", cfg.Keywords)
	assert.Equal(t, 40, cfg.NumPostings)
	assert.True(t, cfg.RemoteOnly)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig("")
	assert.ErrorContains(t, err, "config path is empty")

	_, err = LoadConfig("/nonexistent/path/config.json")
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = LoadConfig(writeConfig(t, `{ invalid json }`))
	assert.ErrorContains(t, err, "failed to parse config JSON")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Defaults(), false},
		{"empty", Config{}, false},
		{"unknown provider", Config{LLMProvider: "claude"}, true},
		{"negative postings", Config{NumPostings: -1}, true},
		{"too many workers", Config{Concurrency: 20}, true},
		{"bad email", Config{EmailFrom: "nobody"}, true},
		{"bad listen addr", Config{ListenAddr: "8080"}, true},
		{"telegram without chat", Config{TelegramToken: "123:abc"}, true},
		{"telegram with chat", Config{TelegramToken: "123:abc", TelegramChatID: 42}, false},
		{"bad database url", Config{DatabaseURL: "not a url"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Keywords: "sre", NumPostings: 5}
	merged := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, "sre", merged.Keywords)
	assert.Equal(t, 5, merged.NumPostings)
	assert.Equal(t, "United States", merged.Location)
	assert.Equal(t, 3, merged.MaxRetries)
	assert.Equal(t, 2.0, merged.RequestDelaySeconds)
	assert.Equal(t, "sre", cfg.Keywords, "receiver is not modified")
}

func TestFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://db/jobs")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "postgres://db/jobs", cfg.DatabaseURL)
	assert.Equal(t, int64(-100123), cfg.TelegramChatID)

	t.Setenv("TELEGRAM_CHAT_ID", "chat")
	_, err = FromEnv()
	assert.Error(t, err)
}

func TestLoad_FileWinsOverEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://env/jobs")
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := Load(writeConfig(t, `{"database_url": "postgres://file/jobs"}`))
	require.NoError(t, err)

	assert.Equal(t, "postgres://file/jobs", cfg.DatabaseURL)
	assert.Equal(t, "env-key", cfg.APIKey("gemini"))
	assert.Equal(t, 25, cfg.NumPostings)
}

func TestLoad_InvalidFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, `{"llm_provider": "claude"}`))
	assert.ErrorContains(t, err, "config error")
}
