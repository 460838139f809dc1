// Package tools declares the named capabilities the completion service
// may invoke and dispatches validated calls to their executors.
//
// Executors read only already-cached collaborator state; they never
// mutate shared conversation state.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/tmc/langchaingo/llms"

	"github.com/guildmate-bot/guildmate/internal/metrics"
)

// Result is the normalized outcome of one tool execution.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type tool struct {
	definition llms.Tool
	// newArgs returns a pointer to the tool's argument struct, or nil
	// when the tool takes no arguments. Arguments are decoded and
	// validated here, before dispatch, never inside the executor.
	newArgs func() any
	run     func(ctx context.Context, args any) (any, error)
}

// Registry is the static map of tool name to schema and executor.
type Registry struct {
	validate *validator.Validate
	order    []string
	tools    map[string]tool
}

func newRegistry() *Registry {
	return &Registry{
		validate: validator.New(),
		tools:    make(map[string]tool),
	}
}

func (r *Registry) register(t tool) {
	name := t.definition.Function.Name
	r.order = append(r.order, name)
	r.tools[name] = t
}

// Definitions returns every tool schema in registration order, in the
// shape the completion request expects.
func (r *Registry) Definitions() []llms.Tool {
	defs := make([]llms.Tool, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].definition)
	}
	return defs
}

// Execute looks up name and runs it with the given raw arguments. Every
// failure mode — unknown tool, invalid arguments, executor error — is
// normalized into a Result with Success=false.
func (r *Registry) Execute(ctx context.Context, name string, raw json.RawMessage) Result {
	t, ok := r.tools[name]
	if !ok {
		metrics.ToolExecutionsTotal.WithLabelValues(name, "unknown").Inc()
		return Result{Success: false, Error: fmt.Sprintf("Unknown tool: %s", name)}
	}

	var args any
	if t.newArgs != nil {
		args = t.newArgs()
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, args); err != nil {
				metrics.ToolExecutionsTotal.WithLabelValues(name, "error").Inc()
				return Result{Success: false, Error: fmt.Sprintf("invalid arguments for %s: %v", name, err)}
			}
		}
		if err := r.validate.Struct(args); err != nil {
			metrics.ToolExecutionsTotal.WithLabelValues(name, "error").Inc()
			return Result{Success: false, Error: fmt.Sprintf("invalid arguments for %s: %v", name, err)}
		}
	}

	data, err := t.run(ctx, args)
	if err != nil {
		metrics.ToolExecutionsTotal.WithLabelValues(name, "error").Inc()
		return Result{Success: false, Error: err.Error()}
	}
	metrics.ToolExecutionsTotal.WithLabelValues(name, "ok").Inc()
	return Result{Success: true, Data: data}
}
