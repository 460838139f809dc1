package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/guildmate-bot/guildmate/internal/membership"
)

// NewRegistry builds the registry with the built-in introspection tools.
func NewRegistry(roster *membership.Cache, startedAt time.Time) *Registry {
	r := newRegistry()
	r.register(memberCountTool(roster))
	r.register(memberInfoTool(roster))
	r.register(serverUptimeTool(startedAt))
	return r
}

func memberCountTool(roster *membership.Cache) tool {
	return tool{
		definition: llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        "member_count",
				Description: "Returns how many members this server knows and how many of them are currently online.",
				Parameters: map[string]any{
					"type":       "object",
					"properties": map[string]any{},
				},
			},
		},
		run: func(ctx context.Context, _ any) (any, error) {
			total, online, err := roster.Counts(ctx)
			if err != nil {
				return nil, fmt.Errorf("reading member counts: %w", err)
			}
			return map[string]any{"total": total, "online": online}, nil
		},
	}
}

type memberInfoArgs struct {
	JID string `json:"jid" validate:"required"`
}

func memberInfoTool(roster *membership.Cache) tool {
	return tool{
		definition: llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        "member_info",
				Description: "Returns presence status and last-seen time for one member.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"jid": map[string]any{
							"type":        "string",
							"description": "The member's address, e.g. alice@chat.example.org",
						},
					},
					"required": []string{"jid"},
				},
			},
		},
		newArgs: func() any { return &memberInfoArgs{} },
		run: func(ctx context.Context, args any) (any, error) {
			a := args.(*memberInfoArgs)
			member, ok, err := roster.Get(ctx, a.JID)
			if err != nil {
				return nil, fmt.Errorf("looking up member %s: %w", a.JID, err)
			}
			if !ok {
				return nil, fmt.Errorf("member %s is not known to this server", a.JID)
			}
			return member, nil
		},
	}
}

func serverUptimeTool(startedAt time.Time) tool {
	return tool{
		definition: llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        "server_uptime",
				Description: "Returns when the assistant started and how long it has been running.",
				Parameters: map[string]any{
					"type":       "object",
					"properties": map[string]any{},
				},
			},
		},
		run: func(_ context.Context, _ any) (any, error) {
			return map[string]any{
				"started_at": startedAt.UTC().Format(time.RFC3339),
				"uptime":     time.Since(startedAt).Round(time.Second).String(),
			}, nil
		},
	}
}
