package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"nebula/pkg/models"
	"nebula/pkg/utils"
)

// RegisterCatalog registers the static model and prompt listings.
func RegisterCatalog(r *mux.Router) {
	r.HandleFunc("/v1/models", listModels).Methods(http.MethodGet)
	r.HandleFunc("/v1/prompts", listPrompts).Methods(http.MethodGet)
}

func listModels(w http.ResponseWriter, r *http.Request) {
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Models []models.ModelInfo `json:"models"`
	}{Models: models.Models})
}

func listPrompts(w http.ResponseWriter, r *http.Request) {
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Prompts []models.QuickPrompt `json:"prompts"`
	}{Prompts: models.QuickPrompts})
}
