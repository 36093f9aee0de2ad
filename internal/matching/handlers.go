// internal/matching/handlers.go

package matching

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/zawajhub/zawaj-backend/internal/auth"
	"github.com/zawajhub/zawaj-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListMyMatches returns all matches the caller participates in.
func (h *Handler) ListMyMatches(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	matches, err := h.service.ListUserMatches(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch matches")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"matches": matches})
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	matchID, err := parseMatchID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid match ID")
		return
	}

	view, err := h.service.GetMatch(r.Context(), matchID, userID, auth.IsAdminFromContext(r.Context()))
	if err != nil {
		respondMatchError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, view)
}

// Respond applies the caller's accept or reject decision to their side
// of the match.
func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	matchID, err := parseMatchID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid match ID")
		return
	}

	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := h.service.RespondToMatch(r.Context(), matchID, userID, req.Decision)
	if err != nil {
		respondMatchError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, NewMatchView(m, userID))
}

func parseMatchID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// respondMatchError maps the service error taxonomy onto HTTP statuses.
// Each failure keeps its specific reason so clients can explain why.
func respondMatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMatchNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrForbidden):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrAlreadyResponded), errors.Is(err, ErrDuplicatePair):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidPair), errors.Is(err, ErrInvalidDecision):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrMatchNotActive):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
