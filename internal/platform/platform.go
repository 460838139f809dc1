// Package platform defines the boundary to the chat platform: the
// inbound event shape the pipeline consumes and the outbound operations
// it may perform. The platform is a capability the core consumes, never
// a component it owns.
package platform

import (
	"context"
	"time"
)

// Attachment is a file carried by an inbound message.
type Attachment struct {
	URL         string
	ContentType string
}

// IsImage reports whether the attachment can be forwarded to the
// completion service as an image part.
func (a Attachment) IsImage() bool {
	return len(a.ContentType) >= 6 && a.ContentType[:6] == "image/"
}

// Event is one inbound chat message.
type Event struct {
	ID          string
	ChannelID   string
	AuthorID    string
	Content     string
	ReplyToID   string
	Attachments []Attachment
	CreatedAt   time.Time
}

// Choice is a pending interactive confirmation prompt.
type Choice interface {
	// Wait blocks until the requesting user picks an option or the
	// timeout elapses. Timeout, decline, and errors all resolve false.
	Wait(ctx context.Context, timeout time.Duration) bool
	// Close removes the transient prompt message. It must be called on
	// every exit path.
	Close(ctx context.Context)
}

// Client is the outbound surface of the chat platform.
type Client interface {
	// Reply creates a reply in channelID referencing replyToID and
	// returns the new message's id.
	Reply(ctx context.Context, channelID, replyToID, content string) (string, error)
	// Edit replaces the content of an earlier message.
	Edit(ctx context.Context, channelID, messageID, content string) error
	// Delete removes an earlier message.
	Delete(ctx context.Context, channelID, messageID string) error
	// PromptChoice shows a yes/no prompt restricted to userID.
	PromptChoice(ctx context.Context, channelID, userID, replyToID, prompt string) (Choice, error)
}
