package conversation

import "time"

// Role tags a conversation entry with its speaker.
type Role string

const (
	RoleSystem     Role = "system"
	RoleUser       Role = "user"
	RoleAssistant  Role = "assistant"
	RoleToolResult Role = "tool_result"
)

// Entry is one unit of dialogue history. Entries are immutable once
// appended; the store only ever copies them.
type Entry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// Image attachment URLs carried alongside user messages.
	Images []string `json:"images,omitempty"`

	// Correlation with the originating tool invocation, set on
	// RoleToolResult entries only.
	ToolCallID string `json:"tool_call_id,omitempty"`
	ToolName   string `json:"tool_name,omitempty"`

	// Platform metadata so later turns can reference the message.
	MessageID string    `json:"message_id,omitempty"`
	ChannelID string    `json:"channel_id,omitempty"`
	AuthorID  string    `json:"author_id,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}
