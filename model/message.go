package model

import "time"

// Conversation roles. The wire format of every supported provider gets these
// mapped to its own vocabulary ("model" → "assistant" where needed).
const (
	RoleUser   = "user"
	RoleModel  = "model"
	RoleSystem = "system"
	RoleTool   = "tool"
)

// ImageAttachment carries raw image bytes for a live user message. History
// replay is text-only; an attachment is sent once and then released.
type ImageAttachment struct {
	Data     []byte
	MimeType string
}

// Message represents a chat message in a conversation. A model-role message
// that requested tools carries the calls in ToolCalls; the tool-role message
// that follows carries the matching ToolResults. Providers translate both
// into their native tool protocol when replaying history.
type Message struct {
	Role        string
	Content     string
	Rendered    string // Cached rendered markdown
	Timestamp   time.Time
	Image       *ImageAttachment
	ToolCalls   []ToolCall
	ToolResults []ToolResult
}
