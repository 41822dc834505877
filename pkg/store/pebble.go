package store

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"

	"nebula/pkg/logger"
	"nebula/pkg/models"
	"nebula/pkg/telemetry"
	"nebula/pkg/utils"
)

// The store keeps the full chat, folder and settings collections in memory
// and mirrors them into pebble. Each record is serialized wholesale on every
// mutation; there are no incremental writes. Most-recent-first ordering of
// the chat collection is an invariant of the stored data, independent of any
// display sort.

var db *pebble.DB

var dbPath string

var (
	mu       sync.Mutex
	chats    []models.Chat
	folders  []models.Folder
	settings models.Settings
)

const (
	chatsKey    = "record:chats"
	foldersKey  = "record:folders"
	settingsKey = "record:settings"
)

// Open opens (or creates) a Pebble database at the given path and keeps
// a global handle for simple usage in this package.
func Open(path string) error {
	var err error
	logger.Info("opening_pebble_db", "path", path)
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return err
	}
	dbPath = path
	logger.Info("pebble_opened", "path", path)
	return nil
}

// Close closes the opened pebble DB if present.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	logger.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func Ready() bool {
	return db != nil
}

// Load reads the three persisted records into memory. Missing or
// unparseable data is treated as absent: chats start empty, folders fall
// back to the seeded defaults, settings to their defaults. Load never
// surfaces parse errors to the caller.
func Load() {
	mu.Lock()
	defer mu.Unlock()

	chats = nil
	folders = models.DefaultFolders()
	settings = models.DefaultSettings()

	if v, ok := getRecord(chatsKey); ok {
		var cs []models.Chat
		if err := json.Unmarshal(v, &cs); err != nil {
			logger.Warn("chats_record_corrupt", "error", err)
		} else {
			chats = cs
		}
	}
	if v, ok := getRecord(foldersKey); ok {
		var fs []models.Folder
		if err := json.Unmarshal(v, &fs); err != nil {
			logger.Warn("folders_record_corrupt", "error", err)
		} else if len(fs) > 0 {
			folders = fs
		}
	}
	if v, ok := getRecord(settingsKey); ok {
		var s models.Settings
		if err := json.Unmarshal(v, &s); err != nil {
			logger.Warn("settings_record_corrupt", "error", err)
		} else {
			settings = s
		}
	}

	refreshFolderCountsLocked()
	logger.Info("store_loaded", "chats", len(chats), "folders", len(folders))
}

func getRecord(key string) ([]byte, bool) {
	if db == nil {
		return nil, false
	}
	v, closer, err := db.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	out := append([]byte(nil), v...)
	_ = closer.Close()
	return out, true
}

func setRecord(key string, v interface{}) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := db.Set([]byte(key), b, pebble.Sync); err != nil {
		logger.Error("record_write_failed", "key", key, "error", err)
		return err
	}
	return nil
}

// UpsertChat removes any stored chat with the same id, inserts the given
// chat at the front of the collection and persists the full record. Folder
// counts are re-derived and persisted afterward.
func UpsertChat(c models.Chat) error {
	mu.Lock()
	defer mu.Unlock()
	next := make([]models.Chat, 0, len(chats)+1)
	next = append(next, c.Clone())
	for i := range chats {
		if chats[i].ID != c.ID {
			next = append(next, chats[i])
		}
	}
	chats = next
	if err := persistChatsLocked(); err != nil {
		return err
	}
	telemetry.StoreMutationsTotal.WithLabelValues("upsert_chat").Inc()
	return syncFoldersLocked()
}

// RemoveChat deletes the chat with the given id; absent ids are a no-op.
func RemoveChat(id string) error {
	mu.Lock()
	defer mu.Unlock()
	next := chats[:0]
	for i := range chats {
		if chats[i].ID != id {
			next = append(next, chats[i])
		}
	}
	chats = next
	if err := persistChatsLocked(); err != nil {
		return err
	}
	telemetry.StoreMutationsTotal.WithLabelValues("remove_chat").Inc()
	return syncFoldersLocked()
}

// ClearChats empties the collection and deletes the persisted record
// entirely rather than writing an empty array.
func ClearChats() error {
	mu.Lock()
	defer mu.Unlock()
	chats = nil
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	if err := db.Delete([]byte(chatsKey), pebble.Sync); err != nil {
		logger.Error("record_delete_failed", "key", chatsKey, "error", err)
		return err
	}
	telemetry.StoreMutationsTotal.WithLabelValues("clear_chats").Inc()
	return syncFoldersLocked()
}

// TogglePin flips the pinned flag in place, preserving collection order.
func TogglePin(id string) error {
	return mutateChat(id, "toggle_pin", func(c *models.Chat) {
		c.Pinned = !c.Pinned
	})
}

// ToggleArchive flips the archived flag in place.
func ToggleArchive(id string) error {
	return mutateChat(id, "toggle_archive", func(c *models.Chat) {
		c.Archived = !c.Archived
	})
}

// AddChatTag inserts the tag into the chat's tag set. Adding a tag that is
// already present, a blank tag, or an unknown chat id is a no-op.
func AddChatTag(id, tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil
	}
	return mutateChat(id, "add_tag", func(c *models.Chat) {
		if !c.HasTag(tag) {
			c.Tags = append(c.Tags, tag)
		}
	})
}

// ArchiveOlderThan archives every unpinned, unarchived chat created before
// the cutoff, in place. It returns the number of chats archived.
func ArchiveOlderThan(cutoff time.Time) (int, error) {
	mu.Lock()
	defer mu.Unlock()
	n := 0
	for i := range chats {
		if chats[i].Pinned || chats[i].Archived {
			continue
		}
		if chats[i].CreatedAt.Before(cutoff) {
			chats[i].Archived = true
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	if err := persistChatsLocked(); err != nil {
		return 0, err
	}
	telemetry.StoreMutationsTotal.WithLabelValues("archive_old").Inc()
	return n, syncFoldersLocked()
}

// mutateChat applies fn to the stored chat with the given id and persists.
// Unknown ids are a silent no-op.
func mutateChat(id, op string, fn func(*models.Chat)) error {
	mu.Lock()
	defer mu.Unlock()
	for i := range chats {
		if chats[i].ID == id {
			fn(&chats[i])
			if err := persistChatsLocked(); err != nil {
				return err
			}
			telemetry.StoreMutationsTotal.WithLabelValues(op).Inc()
			return syncFoldersLocked()
		}
	}
	return nil
}

// Chats returns a deep copy of the collection in stored order.
func Chats() []models.Chat {
	mu.Lock()
	defer mu.Unlock()
	out := make([]models.Chat, len(chats))
	for i := range chats {
		out[i] = chats[i].Clone()
	}
	return out
}

// GetChat returns a deep copy of the chat with the given id.
func GetChat(id string) (models.Chat, bool) {
	mu.Lock()
	defer mu.Unlock()
	for i := range chats {
		if chats[i].ID == id {
			return chats[i].Clone(), true
		}
	}
	return models.Chat{}, false
}

// CreateFolder adds a folder with a fresh id and a color from the fixed
// palette. Blank or whitespace-only names are rejected without error; the
// returned bool reports whether a folder was created. The initial ChatCount
// of zero is corrected by the next store mutation.
func CreateFolder(name string) (models.Folder, bool, error) {
	if strings.TrimSpace(name) == "" {
		return models.Folder{}, false, nil
	}
	mu.Lock()
	defer mu.Unlock()
	f := models.Folder{
		ID:    utils.GenFolderID(),
		Name:  name,
		Color: models.FolderPalette[rand.Intn(len(models.FolderPalette))],
	}
	folders = append(folders, f)
	if err := persistFoldersLocked(); err != nil {
		return models.Folder{}, false, err
	}
	telemetry.StoreMutationsTotal.WithLabelValues("create_folder").Inc()
	return f, true, nil
}

// Folders returns a copy of the folder collection with derived counts.
func Folders() []models.Folder {
	mu.Lock()
	defer mu.Unlock()
	return append([]models.Folder(nil), folders...)
}

// Settings returns the current settings record.
func Settings() models.Settings {
	mu.Lock()
	defer mu.Unlock()
	return settings
}

// SetSettings replaces the settings record wholesale and persists it.
func SetSettings(s models.Settings) error {
	mu.Lock()
	defer mu.Unlock()
	settings = s
	if err := setRecord(settingsKey, settings); err != nil {
		return err
	}
	telemetry.StoreMutationsTotal.WithLabelValues("set_settings").Inc()
	return nil
}

func persistChatsLocked() error {
	return setRecord(chatsKey, chats)
}

func persistFoldersLocked() error {
	return setRecord(foldersKey, folders)
}

// refreshFolderCountsLocked recomputes ChatCount for every folder from the
// chat collection. Counts are a derived projection, never authoritative.
func refreshFolderCountsLocked() {
	for i := range folders {
		n := 0
		for j := range chats {
			if chats[j].Folder == folders[i].ID {
				n++
			}
		}
		folders[i].ChatCount = n
	}
}

func syncFoldersLocked() error {
	refreshFolderCountsLocked()
	return persistFoldersLocked()
}
