// internal/auth/routes.go

package auth

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers authentication routes
func RegisterRoutes(router *mux.Router, handler *Handler, middleware *Middleware) {
	router.HandleFunc("/api/v1/auth/register", handler.Register).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/auth/login", handler.Login).Methods(http.MethodPost)

	protected := router.PathPrefix("/api/v1/auth").Subrouter()
	protected.Use(middleware.Authenticate)
	protected.HandleFunc("/logout", handler.Logout).Methods(http.MethodPost)
}
