package chat

import (
	"fmt"
	"strings"

	"nebula/pkg/models"
)

// ExportMarkdown renders a chat to a human-readable markdown document:
// title, creation time, model name, message count, then each message with
// role label, timestamp, reaction glyphs, bookmark marker and edited
// marker. Pure formatting, no bearing on stored state.
func ExportMarkdown(c models.Chat) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", c.Title)
	fmt.Fprintf(&b, "Created: %s\n", c.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Model: %s\n", models.ModelName(c.Model))
	fmt.Fprintf(&b, "Messages: %d\n\n---\n\n", len(c.Messages))

	parts := make([]string, 0, len(c.Messages))
	for _, m := range c.Messages {
		role := "Nebula"
		if m.Role == models.RoleUser {
			role = "You"
		}
		head := fmt.Sprintf("**%s** (%s)", role, m.Timestamp.Format("2006-01-02 15:04:05"))
		if len(m.Reactions) > 0 {
			head += " [" + strings.Join(m.Reactions, "") + "]"
		}
		if m.Bookmarked {
			head += " ⭐"
		}
		if m.Edited {
			head += " (edited)"
		}
		parts = append(parts, head+"\n"+m.Content)
	}
	b.WriteString(strings.Join(parts, "\n\n---\n\n"))
	return b.String()
}

// ExportFilename derives a safe download filename from the chat title.
func ExportFilename(c models.Chat) string {
	var b strings.Builder
	for _, r := range c.Title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		b.WriteString("chat")
	}
	return b.String() + ".md"
}
