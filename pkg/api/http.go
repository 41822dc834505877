package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"nebula/pkg/api/handlers"
	"nebula/pkg/chat"
	"nebula/pkg/gateway"
)

// Handler builds the service router: chat collection and session routes
// under /v1, the gateway relay under /api.
func Handler(s *chat.Session, gw gateway.Client) http.Handler {
	r := mux.NewRouter()
	handlers.RegisterChats(r, s)
	handlers.RegisterSession(r, s)
	handlers.RegisterFolders(r)
	handlers.RegisterSettings(r)
	handlers.RegisterCatalog(r)
	handlers.RegisterGateway(r, gw)
	return r
}
