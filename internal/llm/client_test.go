package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type scriptedModel struct {
	resp *llms.ContentResponse
	err  error
	opts llms.CallOptions
}

func (m *scriptedModel) GenerateContent(_ context.Context, _ []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.opts = llms.CallOptions{}
	for _, opt := range options {
		opt(&m.opts)
	}
	return m.resp, m.err
}

func (m *scriptedModel) Call(_ context.Context, _ string, _ ...llms.CallOption) (string, error) {
	return "", errors.New("not used")
}

func TestChat_UsesChatModelAndTools(t *testing.T) {
	model := &scriptedModel{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "hi"}}}}
	c := New(model, "gpt-4o", "gpt-4o-mini", 0.7)

	tools := []llms.Tool{{Type: "function", Function: &llms.FunctionDefinition{Name: "member_count"}}}
	resp, err := c.Chat(context.Background(), nil, tools)
	require.NoError(t, err)

	assert.Equal(t, "hi", resp.Choices[0].Content)
	assert.Equal(t, "gpt-4o", model.opts.Model)
	assert.InDelta(t, 0.7, model.opts.Temperature, 1e-9)
	assert.Len(t, model.opts.Tools, 1)
}

func TestChat_NoChoicesIsAnError(t *testing.T) {
	model := &scriptedModel{resp: &llms.ContentResponse{}}
	c := New(model, "gpt-4o", "gpt-4o-mini", 0.7)

	_, err := c.Chat(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestDecide_UsesClassifierModelDeterministically(t *testing.T) {
	model := &scriptedModel{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: `{"decision": true}`}}}}
	c := New(model, "gpt-4o", "gpt-4o-mini", 0.7)

	out, err := c.Decide(context.Background(), "instruction", "input")
	require.NoError(t, err)

	assert.Equal(t, `{"decision": true}`, out)
	assert.Equal(t, "gpt-4o-mini", model.opts.Model)
	assert.Zero(t, model.opts.Temperature)
	assert.True(t, model.opts.JSONMode)
}

func TestDecide_PropagatesCallError(t *testing.T) {
	model := &scriptedModel{err: errors.New("upstream 429")}
	c := New(model, "gpt-4o", "gpt-4o-mini", 0.7)

	_, err := c.Decide(context.Background(), "instruction", "input")
	assert.Error(t, err)
}
