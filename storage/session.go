// Package storage owns chat session state and its persistence.
//
// The Store holds every session in memory and maintains one invariant above
// all: there is always at least one session, and one of them is always
// active. Persistence goes through the Repository port so the backing store
// (JSON file or SQLite) is a deployment choice, not a code path.
package storage

import (
	"time"

	"github.com/mattn/go-runewidth"

	"tkta/model"
)

// Greeting opens every new session as the assistant's first message.
const Greeting = "Xin chào! Tôi là Trợ lý Nghiệp vụ TKT. Tôi có thể giúp gì cho bạn hôm nay?"

// DefaultTitle names a session until its first user message arrives.
const DefaultTitle = "Trò chuyện mới"

// Session is one conversation: an identifier, a display title, and the
// ordered message transcript. The greeting message is part of the
// transcript from birth, so a session is never empty.
type Session struct {
	ID       int64
	Title    string
	Messages []model.Message
}

// LastMessage returns a pointer to the newest message, or nil for a
// transcript that somehow became empty.
func (s *Session) LastMessage() *model.Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return &s.Messages[len(s.Messages)-1]
}

// DeriveTitle builds a session title from the first user message: at most
// 40 visible columns, with "..." appended only when something was cut.
// Width is measured in display columns so CJK text truncates correctly.
func DeriveTitle(text string) string {
	if runewidth.StringWidth(text) <= 40 {
		return text
	}
	return runewidth.Truncate(text, 40, "") + "..."
}

// newGreetingMessage seeds a fresh session transcript.
func newGreetingMessage() model.Message {
	return model.Message{
		Role:      model.RoleModel,
		Content:   Greeting,
		Timestamp: time.Now(),
	}
}
