package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"nebula/pkg/models"
	"nebula/pkg/store"
	"nebula/pkg/utils"
)

// RegisterFolders registers the organization-folder routes.
func RegisterFolders(r *mux.Router) {
	r.HandleFunc("/v1/folders", listFolders).Methods(http.MethodGet)
	r.HandleFunc("/v1/folders", createFolder).Methods(http.MethodPost)
}

func listFolders(w http.ResponseWriter, r *http.Request) {
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Folders []models.Folder `json:"folders"`
	}{Folders: store.Folders()})
}

// createFolder accepts {"name": "..."}. A blank or whitespace-only name is a
// no-op and replies 204, matching the store behavior.
func createFolder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	f, created, err := store.CreateFolder(body.Name)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !created {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, f)
}
