package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"nebula/pkg/chat"
	"nebula/pkg/utils"
)

// RegisterSession registers the active-conversation routes.
func RegisterSession(r *mux.Router, s *chat.Session) {
	r.HandleFunc("/v1/session", currentSession(s)).Methods(http.MethodGet)
	r.HandleFunc("/v1/session", startSession(s)).Methods(http.MethodPost)
	r.HandleFunc("/v1/session/open", openSession(s)).Methods(http.MethodPost)
	r.HandleFunc("/v1/session/folder", selectFolder(s)).Methods(http.MethodPost)
	r.HandleFunc("/v1/session/model", selectModel(s)).Methods(http.MethodPost)
	r.HandleFunc("/v1/session/messages", sendMessage(s)).Methods(http.MethodPost)
	r.HandleFunc("/v1/session/messages/{id}/regenerate", regenerateMessage(s)).Methods(http.MethodPost)
	r.HandleFunc("/v1/session/messages/{id}", editMessage(s)).Methods(http.MethodPut)
	r.HandleFunc("/v1/session/messages/{id}/reactions", toggleReaction(s)).Methods(http.MethodPost)
	r.HandleFunc("/v1/session/messages/{id}/bookmark", toggleBookmark(s)).Methods(http.MethodPost)
}

func currentSession(s *chat.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := s.Current()
		if !ok {
			utils.JSONError(w, http.StatusNotFound, "no active chat")
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, c)
	}
}

func startSession(s *chat.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Folder string `json:"folder"`
			Model  string `json:"model"`
		}
		// Body is optional; an empty one starts a chat in the selected folder.
		_ = json.NewDecoder(r.Body).Decode(&body)
		c := s.StartNew(body.Folder, body.Model)
		_ = utils.JSONWrite(w, http.StatusCreated, c)
	}
}

func openSession(s *chat.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		c, err := s.Open(body.ID)
		if err != nil {
			utils.JSONError(w, http.StatusNotFound, err.Error())
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, c)
	}
}

func selectFolder(s *chat.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Folder string `json:"folder"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		s.SelectFolder(body.Folder)
		w.WriteHeader(http.StatusNoContent)
	}
}

func selectModel(s *chat.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model string `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		s.SelectModel(body.Model)
		w.WriteHeader(http.StatusNoContent)
	}
}

func sendMessage(s *chat.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		c, err := s.Send(r.Context(), body.Text)
		if err != nil {
			if errors.Is(err, chat.ErrEmptyMessage) {
				utils.JSONError(w, http.StatusBadRequest, err.Error())
				return
			}
			utils.JSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, c)
	}
}

// regenerateMessage replies 200 with the unchanged chat when the target
// message does not qualify, mirroring the no-op behavior of the session.
func regenerateMessage(s *chat.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		c, err := s.Regenerate(r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, chat.ErrNotRegenerable):
				cur, ok := s.Current()
				if !ok {
					utils.JSONError(w, http.StatusNotFound, chat.ErrNoActiveChat.Error())
					return
				}
				_ = utils.JSONWrite(w, http.StatusOK, cur)
			case errors.Is(err, chat.ErrNoActiveChat), errors.Is(err, chat.ErrMessageNotFound):
				utils.JSONError(w, http.StatusNotFound, err.Error())
			default:
				utils.JSONError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, c)
	}
}

func editMessage(s *chat.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		var body struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		c, err := s.Edit(id, body.Content)
		if err != nil {
			writeMessageErr(w, err)
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, c)
	}
}

func toggleReaction(s *chat.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		var body struct {
			Reaction string `json:"reaction"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		c, err := s.ToggleReaction(id, body.Reaction)
		if err != nil {
			writeMessageErr(w, err)
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, c)
	}
}

func toggleBookmark(s *chat.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		c, err := s.ToggleBookmark(id)
		if err != nil {
			writeMessageErr(w, err)
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, c)
	}
}

func writeMessageErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chat.ErrNoActiveChat), errors.Is(err, chat.ErrMessageNotFound):
		utils.JSONError(w, http.StatusNotFound, err.Error())
	default:
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
	}
}
