package xmpp

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go/jetstream"
	"gosrc.io/xmpp"
	"gosrc.io/xmpp/stanza"

	inats "github.com/guildmate-bot/guildmate/internal/nats"
)

// ConsumerSource hands out durable JetStream consumers.
type ConsumerSource interface {
	EnsureConsumer(ctx context.Context, stream, name, filterSubject string) (jetstream.Consumer, error)
}

// OutboundRelay consumes outbound reply operations from NATS and sends
// them via XMPP. The protocol has no message edits or deletions, so an
// edit is delivered as a fresh message with the replacement content and
// a delete is dropped.
type OutboundRelay struct {
	componentName string
	sender        xmpp.Sender
	consumers     ConsumerSource
}

// NewOutboundRelay creates a new OutboundRelay.
func NewOutboundRelay(componentName string, sender xmpp.Sender, consumers ConsumerSource) *OutboundRelay {
	return &OutboundRelay{
		componentName: componentName,
		sender:        sender,
		consumers:     consumers,
	}
}

// Start begins consuming outbound operations and sending them via XMPP.
func (r *OutboundRelay) Start(ctx context.Context) error {
	consumer, err := r.consumers.EnsureConsumer(ctx, inats.StreamMessages, "outbound-relay", inats.SubjectOutboundMessage)
	if err != nil {
		return err
	}

	slog.Info("outbound relay started", "consumer", "outbound-relay")

	for {
		msgs, err := consumer.Fetch(10, jetstream.FetchMaxWait(inats.FetchTimeout))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Debug("fetching outbound messages", "error", err)
			continue
		}

		for msg := range msgs.Messages() {
			var outbound inats.OutboundMessage
			if err := json.Unmarshal(msg.Data(), &outbound); err != nil {
				slog.Error("unmarshaling outbound message", "error", err)
				_ = msg.Nak()
				continue
			}

			if err := r.deliver(outbound); err != nil {
				slog.Error("sending outbound XMPP message", "error", err, "channel", outbound.ChannelID)
				_ = msg.Nak()
				continue
			}
			_ = msg.Ack()
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (r *OutboundRelay) deliver(outbound inats.OutboundMessage) error {
	switch outbound.Kind {
	case inats.OutboundCreate, inats.OutboundEdit:
		msg := stanza.Message{
			Attrs: stanza.Attrs{
				From: r.componentName,
				To:   outbound.ChannelID,
				Type: messageType(outbound.ChannelID),
				Id:   outbound.ID,
			},
			Body: outbound.Body,
		}
		if err := r.sender.Send(msg); err != nil {
			return err
		}
		slog.Debug("sent outbound XMPP message", "channel", outbound.ChannelID, "kind", string(outbound.Kind))
		return nil
	case inats.OutboundDelete:
		slog.Debug("dropping delete operation, not supported at this edge", "target", outbound.TargetID)
		return nil
	default:
		slog.Warn("unknown outbound operation", "kind", string(outbound.Kind))
		return nil
	}
}

func messageType(channelID string) stanza.StanzaType {
	domain := channelID
	if idx := strings.Index(channelID, "@"); idx >= 0 {
		domain = channelID[idx+1:]
	}
	if strings.HasPrefix(domain, "conference.") || strings.HasPrefix(domain, "muc.") {
		return stanza.MessageTypeGroupchat
	}
	return stanza.MessageTypeChat
}
