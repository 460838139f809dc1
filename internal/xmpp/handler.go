package xmpp

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gosrc.io/xmpp"
	"gosrc.io/xmpp/stanza"

	inats "github.com/guildmate-bot/guildmate/internal/nats"
)

// EventPublisher publishes inbound traffic into the NATS pipeline.
type EventPublisher interface {
	PublishInboundMessage(ctx context.Context, msg inats.InboundMessage) error
	PublishPresenceEvent(ctx context.Context, event inats.PresenceEvent) error
}

// ChoiceResolver routes a message to a waiting confirmation prompt.
type ChoiceResolver interface {
	Resolve(channelID, userID, text string) bool
}

// Handler processes incoming XMPP stanzas and bridges them to NATS.
// Messages answering a pending confirmation are consumed here and never
// enter the pipeline.
type Handler struct {
	publisher EventPublisher
	choices   ChoiceResolver
}

// NewHandler creates a new XMPP stanza handler.
func NewHandler(publisher EventPublisher, choices ChoiceResolver) *Handler {
	return &Handler{publisher: publisher, choices: choices}
}

// HandleMessage processes incoming <message> stanzas and publishes them to NATS.
func (h *Handler) HandleMessage(s xmpp.Sender, p stanza.Packet) {
	msg, ok := p.(stanza.Message)
	if !ok {
		return
	}

	if msg.Body == "" {
		return
	}

	channelID, authorID := channelAndAuthor(msg)

	slog.Debug("XMPP message received",
		"channel", channelID,
		"author", authorID,
		"type", string(msg.Type),
	)

	if h.choices.Resolve(channelID, authorID, msg.Body) {
		slog.Debug("message consumed by confirmation prompt", "channel", channelID, "author", authorID)
		return
	}

	id := msg.Id
	if id == "" {
		id = uuid.New().String()
	}

	inbound := inats.InboundMessage{
		ID:         id,
		ChannelID:  channelID,
		AuthorID:   authorID,
		Body:       msg.Body,
		ReceivedAt: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.publisher.PublishInboundMessage(ctx, inbound); err != nil {
		slog.Error("publishing inbound message", "error", err, "channel", channelID)
		h.sendError(s, msg.From, msg.To, "Internal error processing your message")
		return
	}
}

// HandlePresence publishes availability changes for the roster cache and
// auto-approves subscribe requests.
func (h *Handler) HandlePresence(s xmpp.Sender, p stanza.Packet) {
	pres, ok := p.(stanza.Presence)
	if !ok {
		return
	}

	slog.Debug("XMPP presence received",
		"from", pres.From,
		"to", pres.To,
		"type", string(pres.Type),
	)

	if pres.Type == "subscribe" {
		reply := stanza.Presence{
			Attrs: stanza.Attrs{
				From: pres.To,
				To:   pres.From,
				Type: "subscribed",
			},
		}
		if err := s.Send(reply); err != nil {
			slog.Error("sending presence subscribed reply", "error", err)
		}
		return
	}

	status := presenceStatus(pres.Type)
	if status == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event := inats.PresenceEvent{
		JID:       BareJID(pres.From),
		Status:    status,
		Timestamp: time.Now().UTC(),
	}
	if err := h.publisher.PublishPresenceEvent(ctx, event); err != nil {
		slog.Error("publishing presence event", "error", err, "jid", event.JID)
	}
}

// HandleIQ processes incoming <iq> stanzas.
func (h *Handler) HandleIQ(_ xmpp.Sender, p stanza.Packet) {
	iq, ok := p.(*stanza.IQ)
	if !ok {
		return
	}
	slog.Debug("XMPP IQ received", "from", iq.From, "to", iq.To, "type", string(iq.Type))
}

func (h *Handler) sendError(s xmpp.Sender, to, from, body string) {
	msg := stanza.Message{
		Attrs: stanza.Attrs{
			From: from,
			To:   to,
			Type: "chat",
		},
		Body: body,
	}
	if err := s.Send(msg); err != nil {
		slog.Error("sending error message", "error", err)
	}
}

// channelAndAuthor maps a stanza's addressing onto the pipeline's channel
// and author ids. Room traffic uses the room as channel and the full
// occupant JID as author; direct chat uses the sender's bare JID as both.
func channelAndAuthor(msg stanza.Message) (channelID, authorID string) {
	bare := BareJID(msg.From)
	if msg.Type == stanza.MessageTypeGroupchat {
		return bare, msg.From
	}
	return bare, bare
}

func presenceStatus(presType stanza.StanzaType) string {
	switch presType {
	case "":
		return "online"
	case stanza.PresenceTypeUnavailable:
		return "offline"
	default:
		return ""
	}
}

// BareJID strips the resource part from a JID.
func BareJID(jid string) string {
	if idx := strings.Index(jid, "/"); idx >= 0 {
		return jid[:idx]
	}
	return jid
}

// Resource returns the resource part of a JID, or "" when absent.
func Resource(jid string) string {
	if idx := strings.Index(jid, "/"); idx >= 0 {
		return jid[idx+1:]
	}
	return ""
}
