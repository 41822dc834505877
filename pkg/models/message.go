package models

import "time"

// Message roles. Assistant messages are never edited in place, only
// regenerated; user messages are never regenerated.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	// Reactions keeps insertion order for display.
	Reactions  []string `json:"reactions,omitempty"`
	Bookmarked bool     `json:"bookmarked,omitempty"`
	// Edited is true iff OriginalContent holds the pre-edit snapshot.
	Edited          bool     `json:"edited,omitempty"`
	OriginalContent string   `json:"originalContent,omitempty"`
	Tags            []string `json:"tags,omitempty"`
}

// HasReaction reports whether the message carries the given reaction symbol.
func (m *Message) HasReaction(symbol string) bool {
	for _, r := range m.Reactions {
		if r == symbol {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	out := m
	if m.Reactions != nil {
		out.Reactions = append([]string(nil), m.Reactions...)
	}
	if m.Tags != nil {
		out.Tags = append([]string(nil), m.Tags...)
	}
	return out
}
