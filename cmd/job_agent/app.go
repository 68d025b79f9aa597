package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/jonathan/job-harvester/internal/config"
	"github.com/jonathan/job-harvester/internal/db"
	"github.com/jonathan/job-harvester/internal/dedup"
	"github.com/jonathan/job-harvester/internal/email"
	"github.com/jonathan/job-harvester/internal/embedding"
	"github.com/jonathan/job-harvester/internal/fetch"
	"github.com/jonathan/job-harvester/internal/llm"
	"github.com/jonathan/job-harvester/internal/notify"
	"github.com/jonathan/job-harvester/internal/observability"
	"github.com/jonathan/job-harvester/internal/parsing"
	"github.com/jonathan/job-harvester/internal/pipeline"
)

// loadConfig resolves the effective configuration for cmd: file, then
// environment, then defaults, then the persistent flags.
func loadConfig(cmd *cobra.Command, g *globalFlags) (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = g.databaseURL
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = g.verbose
	}
	if cfg.Verbose && g.configPath != "" {
		log.Printf("[VERBOSE] Loaded config from: %s", g.configPath)
	}
	return cfg, nil
}

// app holds the connections a command opened. Close releases them.
type app struct {
	cfg config.Config
	db  *db.DB
	rdb *redis.Client
	out *observability.Printer
}

// openApp loads config and connects to PostgreSQL.
func openApp(cmd *cobra.Command, g *globalFlags) (*app, error) {
	cfg, err := loadConfig(cmd, g)
	if err != nil {
		return nil, err
	}
	return connect(cmd, cfg)
}

func connect(cmd *cobra.Command, cfg config.Config) (*app, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL is required (set DATABASE_URL or use --db-url)")
	}

	database, err := db.Connect(cmd.Context(), cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, db: database, out: observability.NewPrinter(cmd.OutOrStdout())}, nil
}

func (a *app) Close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	a.db.Close()
}

// redis connects on first use. It returns nil when no REDIS_URL is set.
func (a *app) redis(ctx context.Context) (*redis.Client, error) {
	if a.rdb != nil || a.cfg.RedisURL == "" {
		return a.rdb, nil
	}
	rdb, err := dedup.NewRedisClient(ctx, a.cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	a.rdb = rdb
	return rdb, nil
}

// linkedInConfig maps the search and pacing settings onto the fetcher.
func linkedInConfig(cfg config.Config) fetch.LinkedInConfig {
	lc := fetch.DefaultLinkedInConfig()
	lc.Query = fetch.SearchQuery{
		Keywords:   cfg.Keywords,
		Location:   cfg.Location,
		TimePosted: cfg.TimePosted,
		RemoteOnly: cfg.RemoteOnly,
	}
	if lc.Query.TimePosted == "" {
		lc.Query.TimePosted = fetch.PostedPastMonth
	}
	lc.RequestDelay = time.Duration(cfg.RequestDelaySeconds * float64(time.Second))
	if cfg.MaxRetries > 0 {
		lc.MaxRetries = cfg.MaxRetries
	}
	if cfg.Concurrency > 0 {
		lc.Concurrency = cfg.Concurrency
	}
	lc.UseBrowser = cfg.UseBrowser
	lc.Verbose = cfg.Verbose
	return lc
}

// driver wires fetcher, normalizer, store, run history, the optional Redis
// seen-set and every configured notifier.
func (a *app) driver(ctx context.Context, onProgress pipeline.ProgressCallback) (*pipeline.Driver, error) {
	rdb, err := a.redis(ctx)
	if err != nil {
		return nil, err
	}

	var seenFilter fetch.SeenFilter
	var seenTracker pipeline.SeenTracker
	if rdb != nil {
		seen := dedup.NewSeenSet(rdb, dedup.DefaultPrefix, time.Duration(a.cfg.SeenTTLHours)*time.Hour)
		seenFilter, seenTracker = seen, seen
	}

	notifiers, err := a.notifiers()
	if err != nil {
		return nil, err
	}

	fetcher := fetch.NewLinkedInFetcher(linkedInConfig(a.cfg), seenFilter)
	normalizer := parsing.NewNormalizer(parsing.Options{
		PositionalCriteria: a.cfg.PositionalCriteria,
		Verbose:            a.cfg.Verbose,
	})

	return pipeline.NewDriver(fetcher, normalizer, a.db, pipeline.Config{
		Runs:       a.db,
		Seen:       seenTracker,
		Notifiers:  notifiers,
		OnProgress: onProgress,
		Verbose:    a.cfg.Verbose,
	}), nil
}

func (a *app) notifiers() ([]pipeline.Notifier, error) {
	var out []pipeline.Notifier
	if a.cfg.TelegramToken != "" {
		tg, err := notify.NewTelegram(a.cfg.TelegramToken, a.cfg.TelegramChatID)
		if err != nil {
			return nil, err
		}
		out = append(out, tg)
	}
	if a.rdb != nil {
		out = append(out, notify.NewRedisPublisher(a.rdb, notify.DefaultChannel))
	}
	return out, nil
}

// llmClient creates the configured chat-model client.
func llmClient(ctx context.Context, cfg config.Config) (llm.Client, error) {
	llmCfg, err := llm.ConfigFor(cfg.LLMProvider)
	if err != nil {
		return nil, err
	}
	key := cfg.APIKey(cfg.LLMProvider)
	if key == "" {
		return nil, fmt.Errorf("API key for %s is required", cfg.LLMProvider)
	}
	return llm.NewClient(ctx, llmCfg, key)
}

// embedder creates the configured embedding backend. The returned close
// func releases the Gemini connection, if any.
func embedder(ctx context.Context, cfg config.Config) (embedding.Embedder, func(), error) {
	key := cfg.APIKey(cfg.EmbeddingProvider)
	if key == "" {
		return nil, nil, fmt.Errorf("API key for %s embeddings is required", cfg.EmbeddingProvider)
	}

	if cfg.EmbeddingProvider == string(llm.ProviderOpenAI) {
		e, err := embedding.NewOpenAIEmbedder(key, openai.EmbeddingModel(cfg.EmbeddingModel))
		return e, func() {}, err
	}

	client, err := llm.NewGeminiClient(ctx, llm.DefaultGeminiConfig(), key)
	if err != nil {
		return nil, nil, err
	}
	name := cfg.EmbeddingModel
	if name == "" {
		name = embedding.DefaultGeminiModel
	}
	return embedding.NewGeminiEmbedder(client.EmbeddingModel(name), name), func() { _ = client.Close() }, nil
}

// mailer builds a Gmail sender from the cached OAuth token.
func mailer(ctx context.Context, cfg config.Config) (*email.Sender, error) {
	svc, err := email.NewGmailService(ctx, cfg.GmailCredentials, cfg.GmailToken)
	if err != nil {
		return nil, err
	}
	return email.NewSender(email.NewGmailTransport(svc), cfg.EmailFrom), nil
}
