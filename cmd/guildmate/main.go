package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/guildmate-bot/guildmate/internal/classifier"
	"github.com/guildmate-bot/guildmate/internal/config"
	"github.com/guildmate-bot/guildmate/internal/conversation"
	"github.com/guildmate-bot/guildmate/internal/llm"
	"github.com/guildmate-bot/guildmate/internal/membership"
	inats "github.com/guildmate-bot/guildmate/internal/nats"
	"github.com/guildmate-bot/guildmate/internal/orchestrator"
	"github.com/guildmate-bot/guildmate/internal/platform"
	"github.com/guildmate-bot/guildmate/internal/search"
	"github.com/guildmate-bot/guildmate/internal/server"
	"github.com/guildmate-bot/guildmate/internal/tools"
	"github.com/guildmate-bot/guildmate/internal/xmpp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()
	slog.Info("connected to redis", "addr", cfg.Redis.Addr())

	// NATS
	natsClient, err := inats.NewClient(ctx, cfg.NATS)
	if err != nil {
		slog.Error("connecting to NATS", "error", err)
		os.Exit(1)
	}
	defer natsClient.Close()

	// Platform surface over NATS
	choices := platform.NewChoiceRegistry()
	messenger := platform.NewMessenger(natsClient, choices)
	history := platform.NewHistory(cfg.Chat.HistoryDepth)

	// Membership roster
	roster := membership.NewCache(rdb)
	tracker := membership.NewTracker(natsClient, roster)

	// Completion service and intent classifiers
	llmClient, err := llm.NewOpenAI(
		cfg.LLM.APIKey,
		cfg.LLM.BaseURL,
		cfg.LLM.ChatModel,
		cfg.LLM.ClassifierModel,
		cfg.LLM.Temperature,
	)
	if err != nil {
		slog.Error("initializing completion client", "error", err)
		os.Exit(1)
	}
	intents := classifier.New(llmClient)

	searchClient := search.NewClient(cfg.Search.APIKey, cfg.Search.BaseURL, cfg.Search.MaxResults, cfg.Search.Depth)
	registry := tools.NewRegistry(roster, time.Now())
	store := conversation.NewStore(cfg.Chat.MaxEntries)

	orch := orchestrator.New(
		natsClient,
		messenger,
		history,
		store,
		intents,
		llmClient,
		searchClient,
		registry,
		orchestrator.Options{
			MaxReplyLength:  cfg.LLM.MaxReplyLength,
			ConfirmTimeout:  cfg.Chat.ConfirmTimeout,
			SummaryCooldown: cfg.Chat.SummaryCooldown,
			HistoryDepth:    cfg.Chat.HistoryDepth,
			ResetCommand:    cfg.Chat.ResetCommand,
		},
	)

	// XMPP edge
	handler := xmpp.NewHandler(natsClient, choices)
	component, err := xmpp.NewComponent(cfg.XMPP, handler)
	if err != nil {
		slog.Error("initializing XMPP component", "error", err)
		os.Exit(1)
	}
	relay := xmpp.NewOutboundRelay(cfg.XMPP.ComponentName, component.Sender(), natsClient)

	// Ops server
	opsServer := server.New(cfg.Server, map[string]server.HealthChecker{
		"nats":  natsClient.Healthy,
		"redis": func() bool { return rdb.Ping(ctx).Err() == nil },
	})

	errCh := make(chan error, 5)
	go func() { errCh <- orch.Start(ctx) }()
	go func() { errCh <- tracker.Start(ctx) }()
	go func() { errCh <- component.Start(ctx) }()
	go func() { errCh <- relay.Start(ctx) }()
	go func() { errCh <- opsServer.Start(ctx) }()

	slog.Info("guildmate started", "component", cfg.XMPP.ComponentName)

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			slog.Error("component failed", "error", err)
		}
		stop()
	}

	component.Stop()
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
