package nats

import "time"

// FetchTimeout is the default timeout for batch fetching messages from consumers.
const FetchTimeout = 2 * time.Second

// Stream names.
const (
	StreamMessages = "GUILDMATE_MESSAGES"
	StreamEvents   = "GUILDMATE_EVENTS"
)

// Subject constants.
const (
	SubjectInboundMessage  = "guildmate.messages.inbound"
	SubjectOutboundMessage = "guildmate.messages.outbound"
	SubjectPresenceEvent   = "guildmate.events.presence"
)

// Attachment is a file carried by an inbound message.
type Attachment struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}

// InboundMessage is published when a chat message arrives at the edge.
type InboundMessage struct {
	ID          string       `json:"id"`
	ChannelID   string       `json:"channel_id"`
	AuthorID    string       `json:"author_id"`
	Body        string       `json:"body"`
	ReplyToID   string       `json:"reply_to_id,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	ReceivedAt  time.Time    `json:"received_at"`
}

// OutboundKind selects the delivery operation for an outbound message.
type OutboundKind string

const (
	OutboundCreate OutboundKind = "create"
	OutboundEdit   OutboundKind = "edit"
	OutboundDelete OutboundKind = "delete"
)

// OutboundMessage is published to deliver, revise, or remove a reply.
// IDs are assigned by the publisher so later edits and deletes can
// reference a message before the platform has confirmed it.
type OutboundMessage struct {
	ID        string       `json:"id"`
	Kind      OutboundKind `json:"kind"`
	ChannelID string       `json:"channel_id"`
	ReplyToID string       `json:"reply_to_id,omitempty"`
	Body      string       `json:"body,omitempty"`
	TargetID  string       `json:"target_id,omitempty"`
}

// PresenceEvent is published when a member's availability changes.
type PresenceEvent struct {
	JID       string    `json:"jid"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
