// Package classifier answers two narrow yes/no questions about an
// inbound message via single decision calls against a lightweight
// completion model.
//
// Both checks are fail-safe: a missing, malformed, or unparseable
// response resolves to false, so a broken classifier can never block a
// message or trigger a spurious search or summary.
package classifier

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

const summaryInstruction = `You decide whether a chat message is asking for a summary of the recent channel conversation.
Answer true only when the user explicitly asks to summarize, recap, or catch up on what was said in the channel.
Respond with a single JSON object: {"decision": <true|false>}. No other text.`

const searchInstruction = `You decide whether answering a chat message requires current information from the web, such as news, prices, schedules, weather, or recent events.
Answer false for greetings, opinions, questions about this chat server, and anything a general model already knows.
Respond with a single JSON object: {"decision": <true|false>, "query": "<web search query, only when decision is true>"}. No other text.`

// Decider issues one constrained decision call and returns its raw text.
type Decider interface {
	Decide(ctx context.Context, instruction, input string) (string, error)
}

// Decision is the parsed outcome of one classifier call.
type Decision struct {
	Decision bool   `json:"decision"`
	Query    string `json:"query,omitempty"`
}

// Classifier runs the per-message intent checks.
type Classifier struct {
	decider Decider
}

// New creates a Classifier backed by the given decider.
func New(decider Decider) *Classifier {
	return &Classifier{decider: decider}
}

// NeedsSummary reports whether the message asks for a channel summary.
func (c *Classifier) NeedsSummary(ctx context.Context, text string) bool {
	return c.decide(ctx, summaryInstruction, text).Decision
}

// NeedsSearch reports whether the message needs web context, and if so
// the query to search for. An empty query with a true decision means
// the caller should fall back to the raw message.
func (c *Classifier) NeedsSearch(ctx context.Context, text string) (bool, string) {
	d := c.decide(ctx, searchInstruction, text)
	return d.Decision, d.Query
}

func (c *Classifier) decide(ctx context.Context, instruction, text string) Decision {
	raw, err := c.decider.Decide(ctx, instruction, text)
	if err != nil {
		slog.Warn("classifier call failed, defaulting to false", "error", err)
		return Decision{}
	}

	d, ok := parseDecision(raw)
	if !ok {
		slog.Warn("classifier returned unparseable payload, defaulting to false", "payload", truncate(raw, 200))
		return Decision{}
	}
	return d
}

// parseDecision parses the classifier payload, running a repair pass
// over malformed JSON before giving up.
func parseDecision(raw string) (Decision, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Decision{}, false
	}

	var d Decision
	if err := json.Unmarshal([]byte(raw), &d); err == nil {
		return d, true
	}

	repaired, err := jsonrepair.JSONRepair(raw)
	if err != nil {
		return Decision{}, false
	}
	if err := json.Unmarshal([]byte(repaired), &d); err != nil {
		return Decision{}, false
	}
	return d, true
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
