package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"nebula/pkg/api"
	"nebula/pkg/chat"
	"nebula/pkg/gateway"
	"nebula/pkg/models"
	"nebula/pkg/store"
)

// scriptedGateway answers with a fixed reply or error and reports whether a
// key is configured.
type scriptedGateway struct {
	reply      string
	err        error
	configured bool
}

func (g *scriptedGateway) Generate(context.Context, string) (string, error) {
	return g.reply, g.err
}

func (g *scriptedGateway) Configured() bool { return g.configured }

func newTestServer(t *testing.T, gw *scriptedGateway) *httptest.Server {
	t.Helper()
	if err := store.Open(t.TempDir()); err != nil {
		t.Fatalf("open store: %v", err)
	}
	store.Load()
	t.Cleanup(func() { _ = store.Close() })

	s := chat.NewSession(gw, nil)
	srv := httptest.NewServer(api.Handler(s, gw))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	var out map[string]json.RawMessage
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func sendChat(t *testing.T, srv *httptest.Server, text string) models.Chat {
	t.Helper()
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/session/messages", `{"text":`+jsonStr(text)+`}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("send returned %d", resp.StatusCode)
	}
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/v1/session", nil)
	r2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	defer r2.Body.Close()
	var c models.Chat
	if err := json.NewDecoder(r2.Body).Decode(&c); err != nil {
		t.Fatalf("decode chat: %v", err)
	}
	return c
}

func jsonStr(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestSendAndListChats(t *testing.T) {
	srv := newTestServer(t, &scriptedGateway{reply: "hi"})

	c := sendChat(t, srv, "hello world")
	if len(c.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(c.Messages))
	}

	resp, out := doJSON(t, http.MethodGet, srv.URL+"/v1/chats", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list returned %d", resp.StatusCode)
	}
	var chats []models.Chat
	if err := json.Unmarshal(out["chats"], &chats); err != nil {
		t.Fatalf("decode chats: %v", err)
	}
	if len(chats) != 1 || chats[0].ID != c.ID {
		t.Fatalf("unexpected chat list %v", chats)
	}
}

func TestSendEmptyTextIs400(t *testing.T) {
	srv := newTestServer(t, &scriptedGateway{reply: "hi"})
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/session/messages", `{"text":"  "}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSessionNotFoundWhenEmpty(t *testing.T) {
	srv := newTestServer(t, &scriptedGateway{})
	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/v1/session", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestPinToggleReflectsInSessionAndList(t *testing.T) {
	srv := newTestServer(t, &scriptedGateway{reply: "hi"})
	c := sendChat(t, srv, "pin me")

	resp, out := doJSON(t, http.MethodPost, srv.URL+"/v1/chats/"+c.ID+"/pin", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pin returned %d", resp.StatusCode)
	}
	var pinned bool
	_ = json.Unmarshal(out["pinned"], &pinned)
	if !pinned {
		t.Fatalf("expected pinned chat in response")
	}

	// the active session picked up the change
	resp2, out2 := doJSON(t, http.MethodGet, srv.URL+"/v1/session", "")
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("session returned %d", resp2.StatusCode)
	}
	_ = json.Unmarshal(out2["pinned"], &pinned)
	if !pinned {
		t.Fatalf("session copy must reflect pin")
	}
}

func TestDeleteChatDetachesSession(t *testing.T) {
	srv := newTestServer(t, &scriptedGateway{reply: "hi"})
	c := sendChat(t, srv, "delete me")

	resp, _ := doJSON(t, http.MethodDelete, srv.URL+"/v1/chats/"+c.ID, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete returned %d", resp.StatusCode)
	}
	resp2, _ := doJSON(t, http.MethodGet, srv.URL+"/v1/session", "")
	if resp2.StatusCode != http.StatusNotFound {
		t.Fatalf("expected detached session, got %d", resp2.StatusCode)
	}
	resp3, _ := doJSON(t, http.MethodGet, srv.URL+"/v1/chats/"+c.ID, "")
	if resp3.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for deleted chat, got %d", resp3.StatusCode)
	}
}

func TestExportEndpointServesMarkdown(t *testing.T) {
	srv := newTestServer(t, &scriptedGateway{reply: "hi"})
	c := sendChat(t, srv, "export me")

	resp, err := http.Get(srv.URL + "/v1/chats/" + c.ID + "/export")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export returned %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "export_me.md") {
		t.Fatalf("unexpected disposition %q", cd)
	}
}

func TestFolderCreateAndList(t *testing.T) {
	srv := newTestServer(t, &scriptedGateway{})

	resp, out := doJSON(t, http.MethodPost, srv.URL+"/v1/folders", `{"name":"Research"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create returned %d", resp.StatusCode)
	}
	var name string
	_ = json.Unmarshal(out["name"], &name)
	if name != "Research" {
		t.Fatalf("unexpected folder %v", out)
	}

	// blank name is a silent no-op
	resp2, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/folders", `{"name":"  "}`)
	if resp2.StatusCode != http.StatusNoContent {
		t.Fatalf("blank name returned %d", resp2.StatusCode)
	}

	resp3, out3 := doJSON(t, http.MethodGet, srv.URL+"/v1/folders", "")
	if resp3.StatusCode != http.StatusOK {
		t.Fatalf("list returned %d", resp3.StatusCode)
	}
	var folders []models.Folder
	_ = json.Unmarshal(out3["folders"], &folders)
	if len(folders) != 4 {
		t.Fatalf("expected 4 folders, got %d", len(folders))
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	srv := newTestServer(t, &scriptedGateway{})

	resp, _ := doJSON(t, http.MethodPut, srv.URL+"/v1/settings", `{"soundEnabled":false,"fontSize":18}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put returned %d", resp.StatusCode)
	}
	resp2, out := doJSON(t, http.MethodGet, srv.URL+"/v1/settings", "")
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("get returned %d", resp2.StatusCode)
	}
	var sound bool
	var size int
	_ = json.Unmarshal(out["soundEnabled"], &sound)
	_ = json.Unmarshal(out["fontSize"], &size)
	if sound || size != 18 {
		t.Fatalf("unexpected settings %v", out)
	}
	// untouched fields keep their previous values
	var autoScroll bool
	_ = json.Unmarshal(out["autoScroll"], &autoScroll)
	if !autoScroll {
		t.Fatalf("expected autoScroll preserved")
	}
}

func TestCatalogEndpoints(t *testing.T) {
	srv := newTestServer(t, &scriptedGateway{})

	resp, out := doJSON(t, http.MethodGet, srv.URL+"/v1/models", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("models returned %d", resp.StatusCode)
	}
	var ms []models.ModelInfo
	_ = json.Unmarshal(out["models"], &ms)
	if len(ms) != 3 {
		t.Fatalf("expected 3 models, got %d", len(ms))
	}

	resp2, out2 := doJSON(t, http.MethodGet, srv.URL+"/v1/prompts", "")
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("prompts returned %d", resp2.StatusCode)
	}
	var ps []models.QuickPrompt
	_ = json.Unmarshal(out2["prompts"], &ps)
	if len(ps) != 6 {
		t.Fatalf("expected 6 prompts, got %d", len(ps))
	}
}

func TestRelayAIMapsErrorsInBand(t *testing.T) {
	srv := newTestServer(t, &scriptedGateway{err: &gateway.APIError{Message: "quota exceeded"}, configured: true})

	resp, out := doJSON(t, http.MethodPost, srv.URL+"/api/ai", `{"text":"hi"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("relay returned %d", resp.StatusCode)
	}
	var msg string
	_ = json.Unmarshal(out["error"], &msg)
	if msg != "quota exceeded" {
		t.Fatalf("expected verbatim error, got %q", msg)
	}
}

func TestRelayGenerateValidation(t *testing.T) {
	srv := newTestServer(t, &scriptedGateway{reply: "ok", configured: true})

	resp, out := doJSON(t, http.MethodPost, srv.URL+"/api/generate", `{"prompt":""}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var msg string
	_ = json.Unmarshal(out["error"], &msg)
	if msg != "Prompt is required" {
		t.Fatalf("unexpected error %q", msg)
	}

	resp2, out2 := doJSON(t, http.MethodPost, srv.URL+"/api/generate", `{"prompt":"hi"}`)
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("generate returned %d", resp2.StatusCode)
	}
	var text string
	_ = json.Unmarshal(out2["text"], &text)
	if text != "ok" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestRelayGenerateWithoutKey(t *testing.T) {
	srv := newTestServer(t, &scriptedGateway{reply: "ok", configured: false})

	resp, out := doJSON(t, http.MethodPost, srv.URL+"/api/generate", `{"prompt":"hi"}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	var msg string
	_ = json.Unmarshal(out["error"], &msg)
	if msg != "Google Generative AI API key not configured" {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestRegenerateEndpointNoopOn200(t *testing.T) {
	srv := newTestServer(t, &scriptedGateway{reply: "answer"})
	c := sendChat(t, srv, "question")
	userID := c.Messages[0].ID

	resp, out := doJSON(t, http.MethodPost, srv.URL+"/v1/session/messages/"+userID+"/regenerate", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for no-op regenerate, got %d", resp.StatusCode)
	}
	var msgs []models.Message
	_ = json.Unmarshal(out["messages"], &msgs)
	if len(msgs) != 2 {
		t.Fatalf("chat must be unchanged, got %d messages", len(msgs))
	}
}
