// Package orchestrator is the top-level message pipeline: it consumes
// inbound chat messages, serializes them through a single-drain queue,
// and drives each one through intent classification, optional
// confirmation, search and summary sub-flows, the completion call with
// its tool loop, and the final reply.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/tmc/langchaingo/llms"

	"github.com/guildmate-bot/guildmate/internal/cache"
	"github.com/guildmate-bot/guildmate/internal/conversation"
	"github.com/guildmate-bot/guildmate/internal/metrics"
	inats "github.com/guildmate-bot/guildmate/internal/nats"
	"github.com/guildmate-bot/guildmate/internal/platform"
	"github.com/guildmate-bot/guildmate/internal/queue"
	"github.com/guildmate-bot/guildmate/internal/search"
	"github.com/guildmate-bot/guildmate/internal/tools"
)

const defaultSystemPrompt = `You are Guildmate, a friendly assistant living in a community chat server.
Answer concisely and stay on topic. Messages are prefixed with the sender's address; never prefix your own replies.
When web search results are provided, ground your answer in them.`

const (
	placeholderText  = "Thinking…"
	searchingText    = "Searching the web…"
	genericErrorText = "Something went wrong while processing your message. Please try again."
)

// Completer issues completion calls with optional tool schemas.
type Completer interface {
	Chat(ctx context.Context, msgs []llms.MessageContent, toolDefs []llms.Tool) (*llms.ContentResponse, error)
}

// IntentClassifier answers the two per-message intent checks.
type IntentClassifier interface {
	NeedsSummary(ctx context.Context, text string) bool
	NeedsSearch(ctx context.Context, text string) (bool, string)
}

// Searcher returns web results for a query, empty on any failure.
type Searcher interface {
	Search(ctx context.Context, query string) []search.Result
}

// ToolRunner exposes the registered tool schemas and executes calls.
type ToolRunner interface {
	Definitions() []llms.Tool
	Execute(ctx context.Context, name string, args json.RawMessage) tools.Result
}

// ConsumerSource hands out durable JetStream consumers.
type ConsumerSource interface {
	EnsureConsumer(ctx context.Context, stream, name, filterSubject string) (jetstream.Consumer, error)
}

// Options are the pipeline's tunables.
type Options struct {
	SystemPrompt    string
	MaxReplyLength  int
	ConfirmTimeout  time.Duration
	SummaryCooldown time.Duration
	HistoryDepth    int
	ResetCommand    string
}

// Orchestrator coordinates one processing run at a time. The queue is
// the only entry point into Process during normal operation, which makes
// the conversation store effectively single-writer.
type Orchestrator struct {
	consumers  ConsumerSource
	platform   platform.Client
	history    *platform.History
	store      *conversation.Store
	classifier IntentClassifier
	completer  Completer
	searcher   Searcher
	tools      ToolRunner
	cooldowns  *cache.Cache[string, time.Time]
	opts       Options
	now        func() time.Time

	queue *queue.Queue[platform.Event]

	mu     sync.Mutex
	warned map[string]bool
}

// New creates an Orchestrator. Start must be called to begin consuming.
func New(
	consumers ConsumerSource,
	client platform.Client,
	history *platform.History,
	store *conversation.Store,
	classifier IntentClassifier,
	completer Completer,
	searcher Searcher,
	toolRunner ToolRunner,
	opts Options,
) *Orchestrator {
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = defaultSystemPrompt
	}
	if opts.ConfirmTimeout <= 0 {
		opts.ConfirmTimeout = 30 * time.Second
	}
	if opts.SummaryCooldown <= 0 {
		opts.SummaryCooldown = 15 * time.Minute
	}
	if opts.HistoryDepth <= 0 {
		opts.HistoryDepth = 50
	}

	return &Orchestrator{
		consumers:  consumers,
		platform:   client,
		history:    history,
		store:      store,
		classifier: classifier,
		completer:  completer,
		searcher:   searcher,
		tools:      toolRunner,
		cooldowns:  cache.New[string, time.Time](opts.SummaryCooldown),
		opts:       opts,
		now:        time.Now,
		warned:     make(map[string]bool),
	}
}

// Start consumes inbound messages until ctx is cancelled. Each message
// is recorded into channel history and enqueued; the queue serializes
// all Process calls.
func (o *Orchestrator) Start(ctx context.Context) error {
	consumer, err := o.consumers.EnsureConsumer(ctx, inats.StreamMessages, "orchestrator", inats.SubjectInboundMessage)
	if err != nil {
		return err
	}

	o.queue = queue.New(func(ev platform.Event) {
		o.Process(ctx, ev)
		metrics.QueueDepth.Set(float64(o.queue.Len()))
	})

	slog.Info("orchestrator started", "consumer", "orchestrator")

	for {
		msgs, err := consumer.Fetch(10, jetstream.FetchMaxWait(inats.FetchTimeout))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Debug("fetching inbound messages", "error", err)
			continue
		}

		for msg := range msgs.Messages() {
			o.enqueueMessage(msg)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

// enqueueMessage hands one inbound message to the queue. Items are never
// redelivered: processing failures settle at the queue boundary, so the
// message is acked as soon as it is queued.
func (o *Orchestrator) enqueueMessage(msg jetstream.Msg) {
	var inbound inats.InboundMessage
	if err := json.Unmarshal(msg.Data(), &inbound); err != nil {
		slog.Error("unmarshaling inbound message", "error", err)
		_ = msg.Nak()
		return
	}
	_ = msg.Ack()

	ev := platform.Event{
		ID:        inbound.ID,
		ChannelID: inbound.ChannelID,
		AuthorID:  inbound.AuthorID,
		Content:   inbound.Body,
		ReplyToID: inbound.ReplyToID,
		CreatedAt: inbound.ReceivedAt,
	}
	for _, a := range inbound.Attachments {
		ev.Attachments = append(ev.Attachments, platform.Attachment{URL: a.URL, ContentType: a.ContentType})
	}

	o.history.Record(ev)
	o.queue.Enqueue(ev)
	metrics.QueueDepth.Set(float64(o.queue.Len()))
}

// Process drives one message through the full pipeline. It never
// returns an error: every failure settles here so the queue's drain
// loop stays alive.
func (o *Orchestrator) Process(ctx context.Context, ev platform.Event) {
	metrics.MessagesProcessedTotal.Inc()

	slog.Debug("processing message", "id", ev.ID, "channel", ev.ChannelID, "author", ev.AuthorID)

	if strings.TrimSpace(ev.Content) == o.opts.ResetCommand && o.opts.ResetCommand != "" {
		o.store.Clear()
		if _, err := o.platform.Reply(ctx, ev.ChannelID, ev.ID, "Conversation context cleared."); err != nil {
			slog.Warn("sending reset confirmation", "error", err)
		}
		return
	}

	if !o.confirmFirstUse(ctx, ev) {
		slog.Debug("first-use warning declined", "author", ev.AuthorID)
		return
	}

	placeholderID, err := o.platform.Reply(ctx, ev.ChannelID, ev.ID, placeholderText)
	if err != nil {
		metrics.RunFailuresTotal.Inc()
		slog.Error("creating placeholder reply", "error", err, "channel", ev.ChannelID)
		return
	}

	if err := o.run(ctx, ev, placeholderID); err != nil {
		metrics.RunFailuresTotal.Inc()
		slog.Error("processing run failed", "error", err, "id", ev.ID, "channel", ev.ChannelID)
		if err := o.platform.Edit(ctx, ev.ChannelID, placeholderID, genericErrorText); err != nil {
			slog.Warn("replacing placeholder with error text", "error", err)
		}
	}
}

// run is the state machine for one message. Any returned error aborts
// the run without committing, leaving the shared conversation exactly as
// it was.
func (o *Orchestrator) run(ctx context.Context, ev platform.Event, placeholderID string) error {
	if o.classifier.NeedsSummary(ctx, ev.Content) {
		handled, err := o.summarize(ctx, ev, placeholderID)
		if err != nil {
			return err
		}
		if handled {
			return nil
		}
		// Declined, timed out, or cooldown-blocked: continue with the
		// original message on the normal reply path.
	}

	sn := o.store.Snapshot()
	sn.AppendUser(conversation.Entry{
		Content:   ev.Content,
		Images:    imageURLs(ev.Attachments),
		MessageID: ev.ID,
		ChannelID: ev.ChannelID,
		AuthorID:  ev.AuthorID,
		Timestamp: ev.CreatedAt,
	})

	if needed, query := o.classifier.NeedsSearch(ctx, ev.Content); needed {
		if query == "" {
			query = ev.Content
		}
		if err := o.platform.Edit(ctx, ev.ChannelID, placeholderID, searchingText); err != nil {
			slog.Warn("updating placeholder status", "error", err)
		}
		results := o.searcher.Search(ctx, query)
		sn.AppendToolResult(conversation.Entry{
			Content:  search.Format(results),
			ToolName: "web_search",
		})
	}

	msgs := o.toMessages(sn.Entries())

	resp, err := o.completer.Chat(ctx, msgs, o.tools.Definitions())
	if err != nil {
		return err
	}
	choice := resp.Choices[0]
	replyText := choice.Content

	if len(choice.ToolCalls) > 0 {
		// Only the first requested call is executed; the rest of the
		// response's tool calls are discarded.
		tc := choice.ToolCalls[0]
		result := o.tools.Execute(ctx, tc.FunctionCall.Name, json.RawMessage(tc.FunctionCall.Arguments))
		if !result.Success {
			metrics.RunFailuresTotal.Inc()
			slog.Warn("tool execution failed", "tool", tc.FunctionCall.Name, "error", result.Error)
			return o.platform.Edit(ctx, ev.ChannelID, placeholderID, result.Error)
		}

		payload, err := json.Marshal(result.Data)
		if err != nil {
			return fmt.Errorf("marshaling tool result: %w", err)
		}

		sn.AppendToolResult(conversation.Entry{
			Content:    string(payload),
			ToolCallID: tc.ID,
			ToolName:   tc.FunctionCall.Name,
		})

		followMsgs := append(msgs,
			llms.MessageContent{
				Role:  llms.ChatMessageTypeAI,
				Parts: []llms.ContentPart{tc},
			},
			llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: tc.ID,
					Name:       tc.FunctionCall.Name,
					Content:    string(payload),
				}},
			},
		)

		follow, err := o.completer.Chat(ctx, followMsgs, nil)
		if err != nil {
			return err
		}
		replyText = follow.Choices[0].Content
	}

	rendered, err := renderReply(replyText, o.opts.MaxReplyLength)
	if err != nil {
		return err
	}

	if err := o.platform.Edit(ctx, ev.ChannelID, placeholderID, rendered); err != nil {
		return fmt.Errorf("delivering reply: %w", err)
	}

	sn.AppendAssistant(conversation.Entry{
		Content:   rendered,
		MessageID: placeholderID,
		ChannelID: ev.ChannelID,
		Timestamp: o.now(),
	})
	o.store.Commit(sn)
	return nil
}

// toMessages converts conversation entries into the completion request
// shape, prefixed with the system instruction. User entries carry the
// sender's address so the model can follow multi-user threads.
func (o *Orchestrator) toMessages(entries []conversation.Entry) []llms.MessageContent {
	msgs := make([]llms.MessageContent, 0, len(entries)+1)
	msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, o.opts.SystemPrompt))

	for _, e := range entries {
		switch e.Role {
		case conversation.RoleSystem:
			msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, e.Content))
		case conversation.RoleUser:
			text := e.Content
			if e.AuthorID != "" {
				text = e.AuthorID + ": " + text
			}
			parts := []llms.ContentPart{llms.TextPart(text)}
			for _, url := range e.Images {
				parts = append(parts, llms.ImageURLPart(url))
			}
			msgs = append(msgs, llms.MessageContent{Role: llms.ChatMessageTypeHuman, Parts: parts})
		case conversation.RoleAssistant:
			msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeAI, e.Content))
		case conversation.RoleToolResult:
			// Past tool output is replayed as a system note: the
			// originating call is not part of the request being built.
			msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem,
				fmt.Sprintf("Result of tool %s: %s", e.ToolName, e.Content)))
		}
	}
	return msgs
}

func imageURLs(attachments []platform.Attachment) []string {
	var urls []string
	for _, a := range attachments {
		if a.IsImage() {
			urls = append(urls, a.URL)
		}
	}
	return urls
}
