package orchestrator

import (
	"context"
	"log/slog"

	"github.com/guildmate-bot/guildmate/internal/platform"
)

const firstUseWarning = `Heads up: messages you send here are forwarded to a hosted language model, and recent channel history may be included for context. Continue? Reply yes or no.`

// confirmFirstUse shows the one-time data warning to a user who has not
// interacted before. Decline, timeout, and prompt errors all abort the
// interaction; the user is asked again on their next message.
func (o *Orchestrator) confirmFirstUse(ctx context.Context, ev platform.Event) bool {
	o.mu.Lock()
	seen := o.warned[ev.AuthorID]
	o.mu.Unlock()
	if seen {
		return true
	}

	if !o.confirm(ctx, ev, firstUseWarning) {
		return false
	}

	o.mu.Lock()
	o.warned[ev.AuthorID] = true
	o.mu.Unlock()
	return true
}

// confirmSummary asks the requesting user to confirm a summary.
func (o *Orchestrator) confirmSummary(ctx context.Context, ev platform.Event) bool {
	return o.confirm(ctx, ev, summaryConfirmPrompt)
}

// confirm shows a yes/no prompt restricted to the message's author and
// waits up to the configured timeout. The prompt message is removed on
// every exit path.
func (o *Orchestrator) confirm(ctx context.Context, ev platform.Event, prompt string) bool {
	choice, err := o.platform.PromptChoice(ctx, ev.ChannelID, ev.AuthorID, ev.ID, prompt)
	if err != nil {
		slog.Warn("showing confirmation prompt", "error", err, "channel", ev.ChannelID)
		return false
	}
	defer choice.Close(ctx)

	return choice.Wait(ctx, o.opts.ConfirmTimeout)
}
