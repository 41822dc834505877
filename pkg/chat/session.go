// Package chat holds the active-conversation controller and the derived
// chat-list views. The controller owns a detached working copy of at most
// one chat; every mutation updates the working copy first and then upserts
// it into the store, so the store always converges on the last-known copy.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"nebula/pkg/gateway"
	"nebula/pkg/logger"
	"nebula/pkg/models"
	"nebula/pkg/store"
	"nebula/pkg/telemetry"
	"nebula/pkg/utils"
)

var (
	// ErrEmptyMessage rejects sends whose text trims to nothing.
	ErrEmptyMessage = errors.New("empty message")
	// ErrNoActiveChat is returned by message operations when nothing is open.
	ErrNoActiveChat = errors.New("no active chat")
	// ErrNotRegenerable marks regenerate calls on messages that are not an
	// assistant reply with an immediately preceding user message.
	ErrNotRegenerable = errors.New("message cannot be regenerated")
	// ErrChatNotFound is returned when opening an unknown chat id.
	ErrChatNotFound = errors.New("chat not found")
	// ErrMessageNotFound is returned for unknown message ids.
	ErrMessageNotFound = errors.New("message not found")
)

// Notifier is the user-facing cue fired after a successful send. It stands
// in for the client's sound effect and is gated by settings.SoundEnabled.
type Notifier func()

// Session tracks the one chat currently being viewed and applies
// message-level mutations to it. Operations are serialized by the session
// mutex, so a second send issued while one is in flight queues behind it.
type Session struct {
	mu     sync.Mutex
	gw     gateway.Client
	notify Notifier

	current        *models.Chat
	selectedFolder string
	model          string
}

func NewSession(gw gateway.Client, notify Notifier) *Session {
	return &Session{gw: gw, notify: notify, model: models.DefaultModelID}
}

// SelectFolder sets the folder newly created chats default into. An empty
// id clears the selection.
func (s *Session) SelectFolder(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedFolder = id
}

// SelectModel sets the model used for newly created chats.
func (s *Session) SelectModel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" {
		s.model = id
	}
}

// Current returns a copy of the active chat, if any.
func (s *Session) Current() (models.Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.Chat{}, false
	}
	return s.current.Clone(), true
}

// StartNew makes a fresh empty chat active. The chat is transient: it is
// not persisted and must not appear in the visible list until the first
// message is sent.
func (s *Session) StartNew(folderID, model string) models.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.newChatLocked(folderID, model, "New Chat")
	s.current = &c
	return c.Clone()
}

// Open switches the active chat to a stored one.
func (s *Session) Open(id string) (models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := store.GetChat(id)
	if !ok {
		return models.Chat{}, ErrChatNotFound
	}
	s.current = &c
	return c.Clone(), nil
}

// Sync re-reads the working copy from the store when the given chat id is
// the active one, picking up chat-level changes (pin, archive, tags) made
// around the controller.
func (s *Session) Sync(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.ID != id {
		return
	}
	if c, ok := store.GetChat(id); ok {
		s.current = &c
	}
}

// Detach drops the working copy when it refers to the given chat id, e.g.
// after the chat was deleted from the store. An empty id detaches
// unconditionally.
func (s *Session) Detach(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" || (s.current != nil && s.current.ID == id) {
		s.current = nil
	}
}

// Send appends the user message, invokes the gateway and appends the
// assistant reply (or an in-band error message). If no chat is active one
// is created implicitly, titled from the text. The settled conversation is
// upserted into the store exactly once, after the assistant message is
// appended; a partial send is never the terminal persisted state.
func (s *Session) Send(ctx context.Context, text string) (models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(text) == "" {
		return models.Chat{}, ErrEmptyMessage
	}
	if s.current == nil {
		c := s.newChatLocked("", "", deriveTitle(text))
		s.current = &c
	}
	s.current.Messages = append(s.current.Messages, models.Message{
		ID:        utils.GenMessageID(),
		Role:      models.RoleUser,
		Content:   text,
		Timestamp: time.Now().UTC(),
	})
	s.completeLocked(ctx, text)
	return s.current.Clone(), nil
}

// Regenerate drops the referenced assistant message and everything after
// it, then re-invokes the gateway with the preceding user message. Calls on
// the first message, on user messages, or on messages not preceded by a
// user message leave the chat unchanged.
func (s *Session) Regenerate(ctx context.Context, messageID string) (models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.Chat{}, ErrNoActiveChat
	}
	idx := s.current.MessageIndex(messageID)
	if idx <= 0 {
		return models.Chat{}, ErrNotRegenerable
	}
	if s.current.Messages[idx].Role != models.RoleAssistant {
		return models.Chat{}, ErrNotRegenerable
	}
	prev := s.current.Messages[idx-1]
	if prev.Role != models.RoleUser {
		return models.Chat{}, ErrNotRegenerable
	}
	s.current.Messages = s.current.Messages[:idx]
	s.completeLocked(ctx, prev.Content)
	return s.current.Clone(), nil
}

// completeLocked runs the gateway call for the prompt and appends the
// assistant message, then upserts the settled chat. Application errors are
// surfaced verbatim with an "Error: " prefix; transport failures collapse
// to a fixed message with the detail kept out of the conversation.
func (s *Session) completeLocked(ctx context.Context, prompt string) {
	reply, err := s.gw.Generate(ctx, prompt)
	content := reply
	if err != nil {
		var apiErr *gateway.APIError
		if errors.As(err, &apiErr) {
			content = "Error: " + apiErr.Message
			telemetry.GatewayErrorsTotal.WithLabelValues("api").Inc()
		} else {
			content = "Error: Failed to get response"
			telemetry.GatewayErrorsTotal.WithLabelValues("transport").Inc()
			logger.Warn("gateway_transport_failure", "chat", s.current.ID, "error", err)
		}
	}
	s.current.Messages = append(s.current.Messages, models.Message{
		ID:        utils.GenMessageID(),
		Role:      models.RoleAssistant,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	telemetry.SendsTotal.Inc()
	if perr := store.UpsertChat(*s.current); perr != nil {
		logger.Error("chat_persist_failed", "chat", s.current.ID, "error", perr)
	}
	if err == nil && s.notify != nil && store.Settings().SoundEnabled {
		s.notify()
	}
}

// Edit replaces a user message's content. The pre-edit snapshot is captured
// into OriginalContent on the first edit only; later edits keep it.
// Assistant messages are never edited, only regenerated.
func (s *Session) Edit(messageID, newContent string) (models.Chat, error) {
	return s.mutateMessage(messageID, func(m *models.Message) bool {
		if m.Role != models.RoleUser {
			return false
		}
		if !m.Edited {
			m.OriginalContent = m.Content
		}
		m.Content = newContent
		m.Edited = true
		return true
	})
}

// ToggleReaction adds the symbol to the message's reaction set, or removes
// it when already present. Applying it twice restores the original set.
func (s *Session) ToggleReaction(messageID, symbol string) (models.Chat, error) {
	return s.mutateMessage(messageID, func(m *models.Message) bool {
		if m.HasReaction(symbol) {
			next := m.Reactions[:0]
			for _, r := range m.Reactions {
				if r != symbol {
					next = append(next, r)
				}
			}
			m.Reactions = next
		} else {
			m.Reactions = append(m.Reactions, symbol)
		}
		return true
	})
}

// ToggleBookmark flips the message's bookmark flag.
func (s *Session) ToggleBookmark(messageID string) (models.Chat, error) {
	return s.mutateMessage(messageID, func(m *models.Message) bool {
		m.Bookmarked = !m.Bookmarked
		return true
	})
}

// mutateMessage applies fn to the identified message in the working copy
// and upserts when fn reports a change.
func (s *Session) mutateMessage(messageID string, fn func(*models.Message) bool) (models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.Chat{}, ErrNoActiveChat
	}
	idx := s.current.MessageIndex(messageID)
	if idx < 0 {
		return models.Chat{}, ErrMessageNotFound
	}
	if fn(&s.current.Messages[idx]) {
		if err := store.UpsertChat(*s.current); err != nil {
			logger.Error("chat_persist_failed", "chat", s.current.ID, "error", err)
		}
	}
	return s.current.Clone(), nil
}

// newChatLocked builds a transient chat. The folder falls back to the
// session's selected folder, then to the default folder.
func (s *Session) newChatLocked(folderID, model, title string) models.Chat {
	folder := folderID
	if folder == "" {
		folder = s.selectedFolder
	}
	if folder == "" {
		folder = models.DefaultFolderID
	}
	if model == "" {
		model = s.model
	}
	return models.Chat{
		ID:        utils.GenChatID(),
		Title:     title,
		CreatedAt: time.Now().UTC(),
		Folder:    folder,
		Model:     model,
	}
}

const titleLimit = 50

// deriveTitle truncates the first user message to the title prefix,
// appending an ellipsis marker when cut.
func deriveTitle(text string) string {
	r := []rune(text)
	if len(r) <= titleLimit {
		return text
	}
	return string(r[:titleLimit]) + "..."
}
