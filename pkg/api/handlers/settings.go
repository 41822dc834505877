package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"nebula/pkg/store"
	"nebula/pkg/utils"
)

// RegisterSettings registers the user-preference routes.
func RegisterSettings(r *mux.Router) {
	r.HandleFunc("/v1/settings", getSettings).Methods(http.MethodGet)
	r.HandleFunc("/v1/settings", putSettings).Methods(http.MethodPut)
}

func getSettings(w http.ResponseWriter, r *http.Request) {
	_ = utils.JSONWrite(w, http.StatusOK, store.Settings())
}

// putSettings replaces the whole settings record. Partial updates are done
// client-side: read, modify, put.
func putSettings(w http.ResponseWriter, r *http.Request) {
	next := store.Settings()
	if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := store.SetSettings(next); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, next)
}
