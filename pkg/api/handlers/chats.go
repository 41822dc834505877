package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"nebula/pkg/chat"
	"nebula/pkg/models"
	"nebula/pkg/store"
	"nebula/pkg/utils"
)

// RegisterChats registers the chat-collection routes.
func RegisterChats(r *mux.Router, s *chat.Session) {
	r.HandleFunc("/v1/chats", listChats).Methods(http.MethodGet)
	r.HandleFunc("/v1/chats", clearChats(s)).Methods(http.MethodDelete)
	r.HandleFunc("/v1/chats/{id}", getChat).Methods(http.MethodGet)
	r.HandleFunc("/v1/chats/{id}", deleteChat(s)).Methods(http.MethodDelete)
	r.HandleFunc("/v1/chats/{id}/pin", toggleChatFlag(s, store.TogglePin)).Methods(http.MethodPost)
	r.HandleFunc("/v1/chats/{id}/archive", toggleChatFlag(s, store.ToggleArchive)).Methods(http.MethodPost)
	r.HandleFunc("/v1/chats/{id}/tags", addChatTag(s)).Methods(http.MethodPost)
	r.HandleFunc("/v1/chats/{id}/export", exportChat).Methods(http.MethodGet)
}

// listChats handles GET /v1/chats. The filter, folder, q and sort query
// parameters feed the visibility pipeline; unknown values fall back to the
// defaults (all, date).
func listChats(w http.ResponseWriter, r *http.Request) {
	q := chat.Query{
		Filter: chat.Filter(r.URL.Query().Get("filter")),
		Folder: r.URL.Query().Get("folder"),
		Search: r.URL.Query().Get("q"),
		Sort:   chat.Sort(r.URL.Query().Get("sort")),
	}
	visible := chat.Visible(store.Chats(), q)
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Chats []models.Chat `json:"chats"`
	}{Chats: visible})
}

func getChat(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	c, ok := store.GetChat(id)
	if !ok {
		utils.JSONError(w, http.StatusNotFound, "chat not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, c)
}

func deleteChat(s *chat.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		if err := store.RemoveChat(id); err != nil {
			utils.JSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.Detach(id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func clearChats(s *chat.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.ClearChats(); err != nil {
			utils.JSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.Detach("")
		w.WriteHeader(http.StatusNoContent)
	}
}

func toggleChatFlag(s *chat.Session, toggle func(string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		if _, ok := store.GetChat(id); !ok {
			utils.JSONError(w, http.StatusNotFound, "chat not found")
			return
		}
		if err := toggle(id); err != nil {
			utils.JSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.Sync(id)
		c, _ := store.GetChat(id)
		_ = utils.JSONWrite(w, http.StatusOK, c)
	}
}

func addChatTag(s *chat.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		var body struct {
			Tag string `json:"tag"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if _, ok := store.GetChat(id); !ok {
			utils.JSONError(w, http.StatusNotFound, "chat not found")
			return
		}
		if err := store.AddChatTag(id, body.Tag); err != nil {
			utils.JSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.Sync(id)
		c, _ := store.GetChat(id)
		_ = utils.JSONWrite(w, http.StatusOK, c)
	}
}

// exportChat streams the markdown rendering as a download.
func exportChat(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	c, ok := store.GetChat(id)
	if !ok {
		utils.JSONError(w, http.StatusNotFound, "chat not found")
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+chat.ExportFilename(c)+`"`)
	_, _ = w.Write([]byte(chat.ExportMarkdown(c)))
}
