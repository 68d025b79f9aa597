// Package config provides configuration loading and validation for the CLI
// and the HTTP server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Config represents the configuration that can be loaded from a JSON file
// and overlaid with environment variables. All fields are optional; missing
// values use defaults or CLI flags.
type Config struct {
	// Storage
	DatabaseURL  string `json:"database_url,omitempty" validate:"omitempty,url"`
	RedisURL     string `json:"redis_url,omitempty" validate:"omitempty,url"`
	SeenTTLHours int    `json:"seen_ttl_hours,omitempty" validate:"gte=0"`

	// LinkedIn search
	Keywords    string `json:"keywords,omitempty"`
	Location    string `json:"location,omitempty"`
	TimePosted  string `json:"time_posted,omitempty"`
	RemoteOnly  bool   `json:"remote_only,omitempty"`
	NumPostings int    `json:"num_postings,omitempty" validate:"gte=0,lte=1000"`

	// Fetching
	Concurrency         int     `json:"concurrency,omitempty" validate:"gte=0,lte=8"`
	RequestDelaySeconds float64 `json:"request_delay_seconds,omitempty" validate:"gte=0"`
	MaxRetries          int     `json:"max_retries,omitempty" validate:"gte=0,lte=10"`
	UseBrowser          bool    `json:"use_browser,omitempty"`
	PositionalCriteria  bool    `json:"positional_criteria,omitempty"`

	// LLM and embeddings
	LLMProvider       string `json:"llm_provider,omitempty" validate:"omitempty,oneof=gemini openai"`
	GeminiAPIKey      string `json:"gemini_api_key,omitempty"`
	OpenAIAPIKey      string `json:"openai_api_key,omitempty"`
	EmbeddingProvider string `json:"embedding_provider,omitempty" validate:"omitempty,oneof=gemini openai"`
	EmbeddingModel    string `json:"embedding_model,omitempty"`
	MaxSkills         int    `json:"max_skills,omitempty" validate:"gte=0,lte=50"`

	// Notifications
	GmailCredentials string `json:"gmail_credentials,omitempty"`
	GmailToken       string `json:"gmail_token,omitempty"`
	EmailFrom        string `json:"email_from,omitempty" validate:"omitempty,email"`
	TelegramToken    string `json:"telegram_token,omitempty"`
	TelegramChatID   int64  `json:"telegram_chat_id,omitempty" validate:"required_with=TelegramToken"`

	// Serving and scheduling
	ListenAddr    string `json:"listen_addr,omitempty" validate:"omitempty,hostname_port"`
	ScheduleHours int    `json:"schedule_hours,omitempty" validate:"gte=0,lte=720"`

	Verbose bool `json:"verbose,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Keywords:            "software engineer",
		Location:            "United States",
		NumPostings:         25,
		Concurrency:         1,
		RequestDelaySeconds: 2,
		MaxRetries:          3,
		LLMProvider:         "gemini",
		EmbeddingProvider:   "gemini",
		MaxSkills:           10,
		GmailCredentials:    "credentials.json",
		GmailToken:          "token.json",
		ListenAddr:          ":8080",
		ScheduleHours:       6,
		SeenTTLHours:        24 * 30,
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv reads the secrets and endpoints that are usually supplied through
// the environment (or a .env file).
func FromEnv() (Config, error) {
	cfg := Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		LLMProvider:       os.Getenv("LLM_PROVIDER"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		EmbeddingProvider: os.Getenv("EMBEDDING_PROVIDER"),
		GmailCredentials:  os.Getenv("GMAIL_CREDENTIALS"),
		GmailToken:        os.Getenv("GMAIL_TOKEN"),
		EmailFrom:         os.Getenv("EMAIL_FROM"),
		TelegramToken:     os.Getenv("TELEGRAM_BOT_TOKEN"),
		ListenAddr:        os.Getenv("LISTEN_ADDR"),
	}

	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %v", err)
		}
		cfg.TelegramChatID = id
	}
	return cfg, nil
}

// Load builds the effective configuration: the JSON file at path (if any),
// then environment values for fields the file left empty, then Defaults.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return Config{}, err
		}
		cfg = *fileCfg
	}

	env, err := FromEnv()
	if err != nil {
		return Config{}, err
	}
	cfg = cfg.MergeWithDefaults(env)
	cfg = cfg.MergeWithDefaults(Defaults())

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field ranges and formats.
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// APIKey returns the key configured for provider.
func (c *Config) APIKey(provider string) string {
	if provider == "openai" {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// MergeWithDefaults returns a new Config with empty or zero fields filled
// from defaults. Bools cannot distinguish unset from false and are not
// merged; CLI flags always win for them.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	mergeString(&result.DatabaseURL, defaults.DatabaseURL)
	mergeString(&result.RedisURL, defaults.RedisURL)
	mergeString(&result.Keywords, defaults.Keywords)
	mergeString(&result.Location, defaults.Location)
	mergeString(&result.TimePosted, defaults.TimePosted)
	mergeString(&result.LLMProvider, defaults.LLMProvider)
	mergeString(&result.GeminiAPIKey, defaults.GeminiAPIKey)
	mergeString(&result.OpenAIAPIKey, defaults.OpenAIAPIKey)
	mergeString(&result.EmbeddingProvider, defaults.EmbeddingProvider)
	mergeString(&result.EmbeddingModel, defaults.EmbeddingModel)
	mergeString(&result.GmailCredentials, defaults.GmailCredentials)
	mergeString(&result.GmailToken, defaults.GmailToken)
	mergeString(&result.EmailFrom, defaults.EmailFrom)
	mergeString(&result.TelegramToken, defaults.TelegramToken)
	mergeString(&result.ListenAddr, defaults.ListenAddr)

	mergeInt(&result.SeenTTLHours, defaults.SeenTTLHours)
	mergeInt(&result.NumPostings, defaults.NumPostings)
	mergeInt(&result.Concurrency, defaults.Concurrency)
	mergeInt(&result.MaxRetries, defaults.MaxRetries)
	mergeInt(&result.MaxSkills, defaults.MaxSkills)
	mergeInt(&result.ScheduleHours, defaults.ScheduleHours)
	if result.RequestDelaySeconds == 0 {
		result.RequestDelaySeconds = defaults.RequestDelaySeconds
	}
	if result.TelegramChatID == 0 {
		result.TelegramChatID = defaults.TelegramChatID
	}

	return result
}

func mergeString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func mergeInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}
