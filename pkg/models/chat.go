package models

import "time"

// Chat is a titled, ordered conversation. Messages are kept oldest first;
// the only in-place changes are edits, reactions and bookmark flips.
type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	// Folder is a soft reference to Folder.ID; it may point at a folder
	// that no longer exists.
	Folder   string   `json:"folder,omitempty"`
	Pinned   bool     `json:"pinned,omitempty"`
	Archived bool     `json:"archived,omitempty"`
	Shared   bool     `json:"shared,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Model    string   `json:"model,omitempty"`
}

// MessageIndex returns the position of the message with the given id, or -1.
func (c *Chat) MessageIndex(id string) int {
	for i := range c.Messages {
		if c.Messages[i].ID == id {
			return i
		}
	}
	return -1
}

// HasBookmark reports whether any message in the chat is bookmarked.
func (c *Chat) HasBookmark() bool {
	for i := range c.Messages {
		if c.Messages[i].Bookmarked {
			return true
		}
	}
	return false
}

// HasTag reports whether the chat already carries the tag.
func (c *Chat) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so a working copy never aliases stored state.
func (c Chat) Clone() Chat {
	out := c
	if c.Messages != nil {
		out.Messages = make([]Message, len(c.Messages))
		for i := range c.Messages {
			out.Messages[i] = c.Messages[i].Clone()
		}
	}
	if c.Tags != nil {
		out.Tags = append([]string(nil), c.Tags...)
	}
	return out
}

// Folder groups chats in the sidebar. ChatCount is a derived projection,
// recomputed after every store mutation and never authoritative.
type Folder struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	ChatCount int    `json:"chatCount"`
}

// DefaultFolderID is where implicitly created chats land when no folder is
// selected.
const DefaultFolderID = "general"

// DefaultFolders is the seeded folder set for a fresh install.
func DefaultFolders() []Folder {
	return []Folder{
		{ID: "general", Name: "General", Color: "bg-blue-500"},
		{ID: "work", Name: "Work", Color: "bg-green-500"},
		{ID: "personal", Name: "Personal", Color: "bg-purple-500"},
	}
}

// FolderPalette is the fixed set of display colors assigned to new folders.
var FolderPalette = []string{
	"bg-blue-500",
	"bg-green-500",
	"bg-purple-500",
	"bg-orange-500",
	"bg-pink-500",
	"bg-indigo-500",
}
