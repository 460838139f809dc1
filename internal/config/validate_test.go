package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		NATS:   NATSConfig{URL: "nats://localhost:4222"},
		Redis:  RedisConfig{Host: "localhost", Port: 6379},
		XMPP: XMPPConfig{
			Host: "localhost", Port: 5347,
			ComponentName: "guildmate.localhost", Secret: "component-secret",
		},
		LLM: LLMConfig{
			APIKey: "sk-test", ChatModel: "gpt-4o", ClassifierModel: "gpt-4o-mini",
			Temperature: 0.7, MaxReplyLength: 2000,
		},
		Search: SearchConfig{APIKey: "tvly-test", BaseURL: "https://api.tavily.com", MaxResults: 5, Depth: "basic"},
		Chat: ChatConfig{
			MaxEntries: 40, SummaryCooldown: 15 * time.Minute,
			ConfirmTimeout: 30 * time.Second, HistoryDepth: 50, ResetCommand: "!reset",
		},
		Log: LogConfig{Level: "debug", Format: "text"},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidate_LLMAPIKeyRequired(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.APIKey = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "LLM_API_KEY") {
		t.Fatalf("expected LLM_API_KEY error, got: %v", err)
	}
}

func TestValidate_XMPPSecretRequired(t *testing.T) {
	cfg := validConfig()
	cfg.XMPP.Secret = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "XMPP_SECRET") {
		t.Fatalf("expected XMPP_SECRET error, got: %v", err)
	}
}

func TestValidate_InvalidPorts(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.XMPP.Port = 99999
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected port validation errors")
	}
	if !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Errorf("expected SERVER_PORT error in: %v", err)
	}
	if !strings.Contains(err.Error(), "XMPP_PORT") {
		t.Errorf("expected XMPP_PORT error in: %v", err)
	}
}

func TestValidate_TemperatureRange(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Temperature = 3.5
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "LLM_TEMPERATURE") {
		t.Fatalf("expected LLM_TEMPERATURE error, got: %v", err)
	}
}

func TestValidate_SearchDepth(t *testing.T) {
	cfg := validConfig()
	cfg.Search.Depth = "exhaustive"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "SEARCH_DEPTH") {
		t.Fatalf("expected SEARCH_DEPTH error, got: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := &Config{
		Redis:  RedisConfig{Port: 6379},
		XMPP:   XMPPConfig{Port: 5347},
		Search: SearchConfig{Depth: "basic"},
		Chat:   ChatConfig{MaxEntries: 40, ConfirmTimeout: 30 * time.Second},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected multiple validation errors")
	}
	errStr := err.Error()
	for _, substr := range []string{"LLM_API_KEY", "XMPP_SECRET", "SERVER_PORT"} {
		if !strings.Contains(errStr, substr) {
			t.Errorf("expected %q in error: %s", substr, errStr)
		}
	}
}

func TestLoad_EnvOverridesAndDefaults(t *testing.T) {
	t.Setenv("LLM_API_KEY", "sk-env")
	t.Setenv("CHAT_MAX_ENTRIES", "12")
	t.Setenv("CHAT_SUMMARY_COOLDOWN", "5m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if cfg.LLM.APIKey != "sk-env" {
		t.Errorf("expected env api key, got %q", cfg.LLM.APIKey)
	}
	if cfg.Chat.MaxEntries != 12 {
		t.Errorf("expected max entries 12, got %d", cfg.Chat.MaxEntries)
	}
	if cfg.Chat.SummaryCooldown != 5*time.Minute {
		t.Errorf("expected 5m cooldown, got %s", cfg.Chat.SummaryCooldown)
	}
	if cfg.Chat.ConfirmTimeout != 30*time.Second {
		t.Errorf("expected default confirm timeout, got %s", cfg.Chat.ConfirmTimeout)
	}
	if cfg.Chat.ResetCommand != "!reset" {
		t.Errorf("expected default reset command, got %q", cfg.Chat.ResetCommand)
	}
}
