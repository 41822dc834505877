package chat

import (
	"sort"
	"strings"

	"nebula/pkg/models"
)

// Filter names the status filters applied to the chat list.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterPinned     Filter = "pinned"
	FilterArchived   Filter = "archived"
	FilterBookmarked Filter = "bookmarked"
)

// Sort names the chat-list sort modes.
type Sort string

const (
	SortDate     Sort = "date"
	SortName     Sort = "name"
	SortMessages Sort = "messages"
)

// Query selects and orders the visible chat list.
type Query struct {
	Filter Filter
	Folder string
	Search string
	Sort   Sort
}

// Visible computes the filtered, sorted chat list. It is a pure function of
// its inputs: the stored collection is never mutated and ties keep the
// stored (most-recent-first) order.
func Visible(chats []models.Chat, q Query) []models.Chat {
	query := strings.ToLower(q.Search)
	out := make([]models.Chat, 0, len(chats))
	for _, c := range chats {
		if !passesFilter(&c, q.Filter) {
			continue
		}
		if q.Folder != "" && c.Folder != q.Folder {
			continue
		}
		if !matchesSearch(&c, query) {
			continue
		}
		out = append(out, c)
	}
	switch q.Sort {
	case SortName:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.Compare(out[i].Title, out[j].Title) < 0
		})
	case SortMessages:
		sort.SliceStable(out, func(i, j int) bool {
			return len(out[i].Messages) > len(out[j].Messages)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return out
}

func passesFilter(c *models.Chat, f Filter) bool {
	switch f {
	case FilterPinned:
		return c.Pinned
	case FilterArchived:
		return c.Archived
	case FilterBookmarked:
		return c.HasBookmark()
	default:
		return true
	}
}

// matchesSearch does a case-insensitive substring match against the title
// or any message's content. An empty query matches everything.
func matchesSearch(c *models.Chat, query string) bool {
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(c.Title), query) {
		return true
	}
	for i := range c.Messages {
		if strings.Contains(strings.ToLower(c.Messages[i].Content), query) {
			return true
		}
	}
	return false
}
