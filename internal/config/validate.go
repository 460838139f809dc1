package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	if c.LLM.APIKey == "" {
		errs = append(errs, "LLM_API_KEY is required")
	}
	if c.XMPP.Secret == "" {
		errs = append(errs, "XMPP_SECRET is required")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1–65535, got %d", c.Server.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1–65535, got %d", c.Redis.Port))
	}
	if c.XMPP.Port < 1 || c.XMPP.Port > 65535 {
		errs = append(errs, fmt.Sprintf("XMPP_PORT must be 1–65535, got %d", c.XMPP.Port))
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Sprintf("LLM_TEMPERATURE must be 0–2, got %g", c.LLM.Temperature))
	}
	if c.Chat.MaxEntries < 1 {
		errs = append(errs, fmt.Sprintf("CHAT_MAX_ENTRIES must be positive, got %d", c.Chat.MaxEntries))
	}
	if c.Chat.SummaryCooldown < 0 {
		errs = append(errs, "CHAT_SUMMARY_COOLDOWN must not be negative")
	}
	if c.Chat.ConfirmTimeout <= 0 {
		errs = append(errs, "CHAT_CONFIRM_TIMEOUT must be positive")
	}
	if c.Search.Depth != "basic" && c.Search.Depth != "advanced" {
		errs = append(errs, fmt.Sprintf("SEARCH_DEPTH must be basic or advanced, got %q", c.Search.Depth))
	}

	// Search API key: warn only, search degrades to no results without it
	if c.Search.APIKey == "" {
		slog.Warn("SEARCH_API_KEY is empty — web search is disabled")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
