package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/guildmate-bot/guildmate/internal/conversation"
	"github.com/guildmate-bot/guildmate/internal/metrics"
	"github.com/guildmate-bot/guildmate/internal/platform"
)

const summarySystemPrompt = `Summarize the following chat transcript for someone catching up on the channel.
Keep it short: the main topics, any decisions, and open questions. Do not invent content that is not in the transcript.`

const (
	summaryConfirmPrompt = "Generate a summary of the recent conversation in this channel? Reply yes or no."
	summarizingText      = "Summarizing the recent conversation…"
	nothingToSummarize   = "There's nothing recent to summarize in this channel."
)

// summarize runs the summary sub-flow. It returns handled=true when the
// run is complete (summary delivered, or nothing to summarize) and
// handled=false when the pipeline should fall through to the normal
// reply path with the original message.
//
// The per-channel cooldown is checked before any prompt is shown: while
// it is active the user gets a wait notice and the normal path resumes.
func (o *Orchestrator) summarize(ctx context.Context, ev platform.Event, placeholderID string) (handled bool, err error) {
	if expiry, ok := o.cooldowns.Get(ev.ChannelID); ok {
		remaining := expiry.Sub(o.now()).Round(time.Second)
		if remaining > 0 {
			metrics.SummariesTotal.WithLabelValues("cooldown").Inc()
			notice := fmt.Sprintf("A summary was generated recently. Please wait %d seconds before requesting another.", int(remaining.Seconds()))
			if _, err := o.platform.Reply(ctx, ev.ChannelID, ev.ID, notice); err != nil {
				slog.Warn("sending cooldown notice", "error", err)
			}
			return false, nil
		}
	}

	if !o.confirmSummary(ctx, ev) {
		metrics.SummariesTotal.WithLabelValues("declined").Inc()
		return false, nil
	}

	if err := o.platform.Edit(ctx, ev.ChannelID, placeholderID, summarizingText); err != nil {
		slog.Warn("updating placeholder status", "error", err)
	}

	transcript := renderTranscript(o.history.Recent(ev.ChannelID, o.opts.HistoryDepth), ev.ID)
	if transcript == "" {
		metrics.SummariesTotal.WithLabelValues("empty").Inc()
		return true, o.platform.Edit(ctx, ev.ChannelID, placeholderID, nothingToSummarize)
	}

	msgs := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, summarySystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, transcript),
	}
	resp, err := o.completer.Chat(ctx, msgs, nil)
	if err != nil {
		metrics.SummariesTotal.WithLabelValues("error").Inc()
		return true, err
	}

	rendered, err := renderReply(resp.Choices[0].Content, o.opts.MaxReplyLength)
	if err != nil {
		metrics.SummariesTotal.WithLabelValues("error").Inc()
		return true, err
	}

	if err := o.platform.Edit(ctx, ev.ChannelID, placeholderID, rendered); err != nil {
		metrics.SummariesTotal.WithLabelValues("error").Inc()
		return true, fmt.Errorf("delivering summary: %w", err)
	}

	o.cooldowns.Set(ev.ChannelID, o.now().Add(o.opts.SummaryCooldown))

	sn := o.store.Snapshot()
	sn.AppendUser(conversation.Entry{
		Content:   ev.Content,
		MessageID: ev.ID,
		ChannelID: ev.ChannelID,
		AuthorID:  ev.AuthorID,
		Timestamp: ev.CreatedAt,
	})
	sn.AppendAssistant(conversation.Entry{
		Content:   rendered,
		MessageID: placeholderID,
		ChannelID: ev.ChannelID,
		Timestamp: o.now(),
	})
	o.store.Commit(sn)

	metrics.SummariesTotal.WithLabelValues("ok").Inc()
	return true, nil
}

// renderTranscript renders channel history oldest-first as one line per
// message, excluding the message that triggered the summary.
func renderTranscript(events []platform.Event, excludeID string) string {
	var b strings.Builder
	for _, ev := range events {
		if ev.ID == excludeID || strings.TrimSpace(ev.Content) == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", ev.AuthorID, ev.Content)
	}
	return strings.TrimSpace(b.String())
}
