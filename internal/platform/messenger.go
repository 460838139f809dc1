package platform

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	inats "github.com/guildmate-bot/guildmate/internal/nats"
)

// OutboundPublisher publishes outbound reply operations for delivery at
// the chat edge.
type OutboundPublisher interface {
	PublishOutboundMessage(ctx context.Context, msg inats.OutboundMessage) error
}

// Messenger implements Client over the NATS outbound subject. Message
// ids are generated locally so a placeholder can be edited or deleted
// before the platform has confirmed delivery.
type Messenger struct {
	publisher OutboundPublisher
	choices   *ChoiceRegistry
}

// NewMessenger creates a Messenger.
func NewMessenger(publisher OutboundPublisher, choices *ChoiceRegistry) *Messenger {
	return &Messenger{publisher: publisher, choices: choices}
}

// Reply publishes a new reply and returns its locally-assigned id.
func (m *Messenger) Reply(ctx context.Context, channelID, replyToID, content string) (string, error) {
	id := uuid.New().String()
	err := m.publisher.PublishOutboundMessage(ctx, inats.OutboundMessage{
		ID:        id,
		Kind:      inats.OutboundCreate,
		ChannelID: channelID,
		ReplyToID: replyToID,
		Body:      content,
	})
	if err != nil {
		return "", fmt.Errorf("publishing reply: %w", err)
	}
	return id, nil
}

// Edit publishes a content replacement for an earlier message.
func (m *Messenger) Edit(ctx context.Context, channelID, messageID, content string) error {
	err := m.publisher.PublishOutboundMessage(ctx, inats.OutboundMessage{
		ID:        uuid.New().String(),
		Kind:      inats.OutboundEdit,
		ChannelID: channelID,
		TargetID:  messageID,
		Body:      content,
	})
	if err != nil {
		return fmt.Errorf("publishing edit: %w", err)
	}
	return nil
}

// Delete publishes a removal of an earlier message.
func (m *Messenger) Delete(ctx context.Context, channelID, messageID string) error {
	err := m.publisher.PublishOutboundMessage(ctx, inats.OutboundMessage{
		ID:        uuid.New().String(),
		Kind:      inats.OutboundDelete,
		ChannelID: channelID,
		TargetID:  messageID,
	})
	if err != nil {
		return fmt.Errorf("publishing delete: %w", err)
	}
	return nil
}

// PromptChoice shows a yes/no prompt and registers the channel/user pair
// so their next message resolves it. The registration happens before the
// prompt is visible, so a fast reply cannot be missed.
func (m *Messenger) PromptChoice(ctx context.Context, channelID, userID, replyToID, prompt string) (Choice, error) {
	ch, cancel := m.choices.Register(channelID, userID)

	id, err := m.Reply(ctx, channelID, replyToID, prompt)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("showing confirmation prompt: %w", err)
	}

	return &pendingChoice{
		messenger: m,
		channelID: channelID,
		messageID: id,
		outcome:   ch,
		cancel:    cancel,
	}, nil
}

type pendingChoice struct {
	messenger *Messenger
	channelID string
	messageID string
	outcome   <-chan bool
	cancel    func()
}

func (p *pendingChoice) Wait(ctx context.Context, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case v := <-p.outcome:
		return v
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

func (p *pendingChoice) Close(ctx context.Context) {
	p.cancel()
	if err := p.messenger.Delete(ctx, p.channelID, p.messageID); err != nil {
		slog.Debug("removing confirmation prompt", "error", err)
	}
}
