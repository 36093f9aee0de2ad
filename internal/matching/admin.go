// internal/matching/admin.go
// Admin endpoints: manual matchmaking, generation runs, stats

package matching

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/zawajhub/zawaj-backend/internal/auth"
	"github.com/zawajhub/zawaj-backend/internal/common/utils"
)

type AdminHandler struct {
	service Service
}

func NewAdminHandler(service Service) *AdminHandler {
	return &AdminHandler{service: service}
}

// ProposeMatch force-creates a match between two users. It passes
// through the same eligibility and duplicate checks as generated
// matches.
func (h *AdminHandler) ProposeMatch(w http.ResponseWriter, r *http.Request) {
	adminID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ProposeMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := h.service.ProposeMatch(r.Context(), req.UserAID, req.UserBID, fmt.Sprintf("admin:%d", adminID))
	if err != nil {
		respondMatchError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, NewMatchView(m, 0))
}

// RunGeneration triggers a candidate generation run synchronously and
// returns its summary.
func (h *AdminHandler) RunGeneration(w http.ResponseWriter, r *http.Request) {
	var req GenerationRequest
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
		if err := utils.ValidateStruct(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	summary, err := h.service.RunGeneration(r.Context(), &req)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Generation run failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, summary)
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.Stats(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"by_state": counts})
}

// ListMatches pages through all matches for the admin dashboard.
func (h *AdminHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	views, err := h.service.ListMatches(r.Context(), limit, offset)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch matches")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"matches": views})
}
