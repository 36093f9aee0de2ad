// internal/notification/routes.go

package notification

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/zawajhub/zawaj-backend/internal/auth"
)

// RegisterRoutes registers notification routes
func RegisterRoutes(router *mux.Router, handler *Handler, middleware *auth.Middleware) {
	protected := router.PathPrefix("/api/v1/notifications").Subrouter()
	protected.Use(middleware.Authenticate)

	protected.HandleFunc("", handler.List).Methods(http.MethodGet)
	protected.HandleFunc("/read-all", handler.MarkAllRead).Methods(http.MethodPost)
	protected.HandleFunc("/{id:[0-9]+}/read", handler.MarkRead).Methods(http.MethodPost)
}
