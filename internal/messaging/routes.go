// internal/messaging/routes.go

package messaging

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/zawajhub/zawaj-backend/internal/auth"
)

// RegisterRoutes registers messaging routes
func RegisterRoutes(router *mux.Router, handler *Handler, middleware *auth.Middleware) {
	protected := router.PathPrefix("/api/v1").Subrouter()
	protected.Use(middleware.Authenticate)

	protected.HandleFunc("/matches/{id:[0-9]+}/messages", handler.SendMessage).Methods(http.MethodPost)
	protected.HandleFunc("/matches/{id:[0-9]+}/messages", handler.ListMessages).Methods(http.MethodGet)
	protected.HandleFunc("/ws", handler.ServeWS).Methods(http.MethodGet)
}
