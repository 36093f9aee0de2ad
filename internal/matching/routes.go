// internal/matching/routes.go

package matching

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/zawajhub/zawaj-backend/internal/auth"
)

// RegisterRoutes registers match routes
func RegisterRoutes(router *mux.Router, handler *Handler, admin *AdminHandler, middleware *auth.Middleware) {
	protected := router.PathPrefix("/api/v1/matches").Subrouter()
	protected.Use(middleware.Authenticate)

	protected.HandleFunc("", handler.ListMyMatches).Methods(http.MethodGet)
	protected.HandleFunc("/{id:[0-9]+}", handler.GetMatch).Methods(http.MethodGet)
	protected.HandleFunc("/{id:[0-9]+}/respond", handler.Respond).Methods(http.MethodPost)

	adminRouter := router.PathPrefix("/api/v1/admin/matches").Subrouter()
	adminRouter.Use(middleware.Authenticate, middleware.RequireAdmin)

	adminRouter.HandleFunc("", admin.ListMatches).Methods(http.MethodGet)
	adminRouter.HandleFunc("", admin.ProposeMatch).Methods(http.MethodPost)
	adminRouter.HandleFunc("/generate", admin.RunGeneration).Methods(http.MethodPost)
	adminRouter.HandleFunc("/stats", admin.Stats).Methods(http.MethodGet)
}
