// Package llm wraps the hosted completion service behind the two call
// shapes the pipeline needs: full chat completions with tool schemas,
// and constrained single-field decision calls.
package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/guildmate-bot/guildmate/internal/metrics"
)

// Client issues completion-service calls with the fixed generation
// settings used across the pipeline.
type Client struct {
	model           llms.Model
	chatModel       string
	classifierModel string
	temperature     float64
}

// New creates a Client on top of an already-constructed model. Chat
// calls use chatModel; Decide calls use the lightweight classifierModel.
func New(model llms.Model, chatModel, classifierModel string, temperature float64) *Client {
	return &Client{
		model:           model,
		chatModel:       chatModel,
		classifierModel: classifierModel,
		temperature:     temperature,
	}
}

// NewOpenAI creates a Client backed by an OpenAI-compatible endpoint.
func NewOpenAI(apiKey, baseURL, chatModel, classifierModel string, temperature float64) (*Client, error) {
	opts := []openai.Option{openai.WithToken(apiKey)}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing completion client: %w", err)
	}
	return New(model, chatModel, classifierModel, temperature), nil
}

// Chat issues one completion call with the full message list and, when
// provided, the registered tool schemas.
func (c *Client) Chat(ctx context.Context, msgs []llms.MessageContent, tools []llms.Tool) (*llms.ContentResponse, error) {
	opts := []llms.CallOption{
		llms.WithModel(c.chatModel),
		llms.WithTemperature(c.temperature),
	}
	if len(tools) > 0 {
		opts = append(opts, llms.WithTools(tools))
	}

	resp, err := c.model.GenerateContent(ctx, msgs, opts...)
	if err != nil {
		metrics.CompletionCallsTotal.WithLabelValues("chat", "error").Inc()
		return nil, fmt.Errorf("completion call: %w", err)
	}
	if len(resp.Choices) == 0 {
		metrics.CompletionCallsTotal.WithLabelValues("chat", "error").Inc()
		return nil, fmt.Errorf("completion returned no choices")
	}
	metrics.CompletionCallsTotal.WithLabelValues("chat", "ok").Inc()
	return resp, nil
}

// Decide issues one decision call against the classifier model and
// returns the raw response text. The instruction constrains the output
// to a single JSON object; callers own the parsing and its fail-safe.
func (c *Client) Decide(ctx context.Context, instruction, input string) (string, error) {
	msgs := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, instruction),
		llms.TextParts(llms.ChatMessageTypeHuman, input),
	}

	resp, err := c.model.GenerateContent(ctx, msgs,
		llms.WithModel(c.classifierModel),
		llms.WithTemperature(0),
		llms.WithJSONMode(),
	)
	if err != nil {
		metrics.CompletionCallsTotal.WithLabelValues("decide", "error").Inc()
		return "", fmt.Errorf("decision call: %w", err)
	}
	if len(resp.Choices) == 0 {
		metrics.CompletionCallsTotal.WithLabelValues("decide", "error").Inc()
		return "", fmt.Errorf("decision call returned no choices")
	}
	metrics.CompletionCallsTotal.WithLabelValues("decide", "ok").Inc()
	return resp.Choices[0].Content, nil
}
