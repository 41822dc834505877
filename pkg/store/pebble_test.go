package store

import (
	"testing"
	"time"

	"github.com/cockroachdb/pebble"

	"nebula/pkg/models"
)

func openTestStore(t *testing.T) {
	t.Helper()
	if err := Open(t.TempDir()); err != nil {
		t.Fatalf("open store: %v", err)
	}
	Load()
	t.Cleanup(func() { _ = Close() })
}

func mkChat(id, folder string, created time.Time) models.Chat {
	return models.Chat{ID: id, Title: id, Folder: folder, CreatedAt: created}
}

func TestUpsertMovesChatToFront(t *testing.T) {
	openTestStore(t)
	now := time.Now().UTC()

	if err := UpsertChat(mkChat("a", "general", now)); err != nil {
		t.Fatalf("upsert a: %v", err)
	}
	if err := UpsertChat(mkChat("b", "general", now)); err != nil {
		t.Fatalf("upsert b: %v", err)
	}
	got := Chats()
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("expected [b a], got %v", got)
	}

	// re-upserting an existing chat moves it back to the front
	if err := UpsertChat(mkChat("a", "general", now)); err != nil {
		t.Fatalf("re-upsert a: %v", err)
	}
	got = Chats()
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("expected [a b], got %v", got)
	}
}

func TestUpsertSurvivesReload(t *testing.T) {
	dir := t.TempDir()
	if err := Open(dir); err != nil {
		t.Fatalf("open: %v", err)
	}
	Load()
	if err := UpsertChat(mkChat("a", "general", time.Now().UTC())); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if err := Open(dir); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = Close() })
	Load()
	got := Chats()
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected chat a after reload, got %v", got)
	}
}

func TestRemoveChatUnknownIDIsNoop(t *testing.T) {
	openTestStore(t)
	if err := UpsertChat(mkChat("a", "general", time.Now().UTC())); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := RemoveChat("nope"); err != nil {
		t.Fatalf("remove unknown: %v", err)
	}
	if got := Chats(); len(got) != 1 {
		t.Fatalf("expected 1 chat, got %d", len(got))
	}
	if err := RemoveChat("a"); err != nil {
		t.Fatalf("remove a: %v", err)
	}
	if got := Chats(); len(got) != 0 {
		t.Fatalf("expected empty, got %d", len(got))
	}
}

func TestClearChatsDeletesRecord(t *testing.T) {
	openTestStore(t)
	if err := UpsertChat(mkChat("a", "general", time.Now().UTC())); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := ClearChats(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := Chats(); len(got) != 0 {
		t.Fatalf("expected empty, got %d", len(got))
	}
	// the record key itself is gone, not an empty array
	if _, ok := getRecord(chatsKey); ok {
		t.Fatalf("expected chats record to be deleted")
	}
}

func TestLoadTreatsCorruptRecordAsAbsent(t *testing.T) {
	openTestStore(t)
	if err := db.Set([]byte(chatsKey), []byte("{not json"), pebble.Sync); err != nil {
		t.Fatalf("set garbage: %v", err)
	}
	Load()
	if got := Chats(); len(got) != 0 {
		t.Fatalf("expected empty chats after corrupt load, got %d", len(got))
	}
	if got := Folders(); len(got) != 3 {
		t.Fatalf("expected default folders, got %d", len(got))
	}
	if s := Settings(); !s.AutoScroll || s.FontSize != 14 {
		t.Fatalf("expected default settings, got %+v", s)
	}
}

func TestFolderCountsTrackChats(t *testing.T) {
	openTestStore(t)
	now := time.Now().UTC()
	_ = UpsertChat(mkChat("a", "general", now))
	_ = UpsertChat(mkChat("b", "work", now))
	_ = UpsertChat(mkChat("c", "work", now))

	counts := map[string]int{}
	for _, f := range Folders() {
		counts[f.ID] = f.ChatCount
	}
	if counts["general"] != 1 || counts["work"] != 2 || counts["personal"] != 0 {
		t.Fatalf("unexpected counts %v", counts)
	}

	_ = RemoveChat("b")
	for _, f := range Folders() {
		if f.ID == "work" && f.ChatCount != 1 {
			t.Fatalf("expected work count 1, got %d", f.ChatCount)
		}
	}
}

func TestTogglePinPreservesOrder(t *testing.T) {
	openTestStore(t)
	now := time.Now().UTC()
	_ = UpsertChat(mkChat("a", "general", now))
	_ = UpsertChat(mkChat("b", "general", now))

	if err := TogglePin("a"); err != nil {
		t.Fatalf("toggle pin: %v", err)
	}
	got := Chats()
	if got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("pin must not reorder, got %v", got)
	}
	if !got[1].Pinned {
		t.Fatalf("expected a pinned")
	}
	if err := TogglePin("a"); err != nil {
		t.Fatalf("toggle pin again: %v", err)
	}
	if c, _ := GetChat("a"); c.Pinned {
		t.Fatalf("expected pin cleared after second toggle")
	}
}

func TestAddChatTagIdempotent(t *testing.T) {
	openTestStore(t)
	_ = UpsertChat(mkChat("a", "general", time.Now().UTC()))

	if err := AddChatTag("a", "go"); err != nil {
		t.Fatalf("add tag: %v", err)
	}
	if err := AddChatTag("a", "go"); err != nil {
		t.Fatalf("re-add tag: %v", err)
	}
	if err := AddChatTag("a", "  "); err != nil {
		t.Fatalf("blank tag: %v", err)
	}
	c, _ := GetChat("a")
	if len(c.Tags) != 1 || c.Tags[0] != "go" {
		t.Fatalf("expected single tag go, got %v", c.Tags)
	}
}

func TestCreateFolderRejectsBlankName(t *testing.T) {
	openTestStore(t)
	if _, created, err := CreateFolder("   "); err != nil || created {
		t.Fatalf("blank name must be a no-op, created=%v err=%v", created, err)
	}
	f, created, err := CreateFolder("Research")
	if err != nil || !created {
		t.Fatalf("create folder: created=%v err=%v", created, err)
	}
	if f.ID == "" || f.Name != "Research" || f.Color == "" {
		t.Fatalf("unexpected folder %+v", f)
	}
	if got := Folders(); len(got) != 4 {
		t.Fatalf("expected 4 folders, got %d", len(got))
	}
}

func TestArchiveOlderThan(t *testing.T) {
	openTestStore(t)
	now := time.Now().UTC()
	old := now.Add(-48 * time.Hour)

	_ = UpsertChat(mkChat("fresh", "general", now))
	_ = UpsertChat(mkChat("stale", "general", old))
	pinned := mkChat("pinned", "general", old)
	pinned.Pinned = true
	_ = UpsertChat(pinned)
	archived := mkChat("done", "general", old)
	archived.Archived = true
	_ = UpsertChat(archived)

	n, err := ArchiveOlderThan(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 archived, got %d", n)
	}
	if c, _ := GetChat("stale"); !c.Archived {
		t.Fatalf("expected stale archived")
	}
	if c, _ := GetChat("fresh"); c.Archived {
		t.Fatalf("fresh must stay unarchived")
	}
	if c, _ := GetChat("pinned"); c.Archived {
		t.Fatalf("pinned chats are exempt")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	openTestStore(t)
	s := Settings()
	s.SoundEnabled = false
	s.FontSize = 18
	if err := SetSettings(s); err != nil {
		t.Fatalf("set settings: %v", err)
	}
	got := Settings()
	if got.SoundEnabled || got.FontSize != 18 {
		t.Fatalf("unexpected settings %+v", got)
	}
}
