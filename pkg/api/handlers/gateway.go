package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"nebula/pkg/gateway"
	"nebula/pkg/logger"
	"nebula/pkg/utils"
)

// RegisterGateway registers the raw relay routes. These bypass the session
// entirely: the caller gets the provider's reply without any chat being
// created or persisted.
func RegisterGateway(r *mux.Router, gw gateway.Client) {
	r.HandleFunc("/api/ai", relayAI(gw)).Methods(http.MethodPost)
	r.HandleFunc("/api/generate", relayGenerate(gw)).Methods(http.MethodPost)
}

// relayAI answers 200 on provider-level errors too, carrying the message in
// the error field. Only a malformed request is a 4xx.
func relayAI(gw gateway.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		reply, err := gw.Generate(r.Context(), body.Text)
		if err != nil {
			var apiErr *gateway.APIError
			if errors.As(err, &apiErr) {
				_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"error": apiErr.Message})
				return
			}
			logger.Error("gateway_relay_failed", "error", err)
			_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"error": "Failed to get AI response"})
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"response": reply})
	}
}

func relayGenerate(gw gateway.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if strings.TrimSpace(body.Prompt) == "" {
			utils.JSONError(w, http.StatusBadRequest, "Prompt is required")
			return
		}
		if g, ok := gw.(interface{ Configured() bool }); ok && !g.Configured() {
			utils.JSONError(w, http.StatusInternalServerError, "Google Generative AI API key not configured")
			return
		}
		text, err := gw.Generate(r.Context(), body.Prompt)
		if err != nil {
			logger.Error("gateway_generate_failed", "error", err)
			utils.JSONError(w, http.StatusInternalServerError, "Failed to generate response")
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"text": text})
	}
}
