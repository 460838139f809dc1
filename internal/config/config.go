package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server ServerConfig
	NATS   NATSConfig
	Redis  RedisConfig
	XMPP   XMPPConfig
	LLM    LLMConfig
	Search SearchConfig
	Chat   ChatConfig
	Log    LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type NATSConfig struct {
	URL string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type XMPPConfig struct {
	Host          string
	Port          int
	ComponentName string
	Secret        string
}

func (c XMPPConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type LLMConfig struct {
	APIKey          string
	BaseURL         string
	ChatModel       string
	ClassifierModel string
	Temperature     float64
	MaxReplyLength  int
}

type SearchConfig struct {
	APIKey     string
	BaseURL    string
	MaxResults int
	Depth      string
}

type ChatConfig struct {
	MaxEntries      int
	SummaryCooldown time.Duration
	ConfirmTimeout  time.Duration
	HistoryDepth    int
	ResetCommand    string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: k.String("server.host"),
			Port: k.Int("server.port"),
		},
		NATS: NATSConfig{
			URL: k.String("nats.url"),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		XMPP: XMPPConfig{
			Host:          k.String("xmpp.host"),
			Port:          k.Int("xmpp.port"),
			ComponentName: k.String("xmpp.component.name"),
			Secret:        k.String("xmpp.secret"),
		},
		LLM: LLMConfig{
			APIKey:          k.String("llm.api.key"),
			BaseURL:         k.String("llm.base.url"),
			ChatModel:       k.String("llm.chat.model"),
			ClassifierModel: k.String("llm.classifier.model"),
			Temperature:     k.Float64("llm.temperature"),
			MaxReplyLength:  k.Int("llm.max.reply.length"),
		},
		Search: SearchConfig{
			APIKey:     k.String("search.api.key"),
			BaseURL:    k.String("search.base.url"),
			MaxResults: k.Int("search.max.results"),
			Depth:      k.String("search.depth"),
		},
		Chat: ChatConfig{
			MaxEntries:   k.Int("chat.max.entries"),
			HistoryDepth: k.Int("chat.history.depth"),
			ResetCommand: k.String("chat.reset.command"),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = "nats://localhost:4222"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.XMPP.Host == "" {
		cfg.XMPP.Host = "localhost"
	}
	if cfg.XMPP.Port == 0 {
		cfg.XMPP.Port = 5347
	}
	if cfg.XMPP.ComponentName == "" {
		cfg.XMPP.ComponentName = "guildmate.localhost"
	}
	if cfg.LLM.ChatModel == "" {
		cfg.LLM.ChatModel = "gpt-4o"
	}
	if cfg.LLM.ClassifierModel == "" {
		cfg.LLM.ClassifierModel = "gpt-4o-mini"
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.7
	}
	if cfg.LLM.MaxReplyLength == 0 {
		cfg.LLM.MaxReplyLength = 2000
	}
	if cfg.Search.BaseURL == "" {
		cfg.Search.BaseURL = "https://api.tavily.com"
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 5
	}
	if cfg.Search.Depth == "" {
		cfg.Search.Depth = "basic"
	}
	if cfg.Chat.MaxEntries == 0 {
		cfg.Chat.MaxEntries = 40
	}
	if cfg.Chat.HistoryDepth == 0 {
		cfg.Chat.HistoryDepth = 50
	}
	if cfg.Chat.ResetCommand == "" {
		cfg.Chat.ResetCommand = "!reset"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "debug"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	// Parse durations
	cooldownStr := k.String("chat.summary.cooldown")
	if cooldownStr == "" {
		cooldownStr = "15m"
	}
	cfg.Chat.SummaryCooldown, err = time.ParseDuration(cooldownStr)
	if err != nil {
		return nil, fmt.Errorf("parsing summary cooldown: %w", err)
	}

	confirmStr := k.String("chat.confirm.timeout")
	if confirmStr == "" {
		confirmStr = "30s"
	}
	cfg.Chat.ConfirmTimeout, err = time.ParseDuration(confirmStr)
	if err != nil {
		return nil, fmt.Errorf("parsing confirm timeout: %w", err)
	}

	return cfg, nil
}
