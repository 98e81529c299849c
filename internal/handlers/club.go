package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dbu-union/portal-server/internal/middleware"
	"github.com/dbu-union/portal-server/internal/models"
	"github.com/dbu-union/portal-server/internal/services"
)

// ClubHandler handles club listing, registration and approval.
type ClubHandler struct {
	clubs  *services.ClubService
	logger *zap.SugaredLogger
}

// NewClubHandler creates a new club handler.
func NewClubHandler(cs *services.ClubService, logger *zap.SugaredLogger) *ClubHandler {
	return &ClubHandler{clubs: cs, logger: logger}
}

// List handles GET /api/v1/clubs?status=
func (h *ClubHandler) List(w http.ResponseWriter, r *http.Request) {
	status := models.ClubStatus(r.URL.Query().Get("status"))

	clubs, err := h.clubs.List(r.Context(), status)
	if err != nil {
		h.logger.Errorw("Failed to list clubs", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to list clubs")
		return
	}
	respondJSON(w, http.StatusOK, clubs)
}

// Get handles GET /api/v1/clubs/{id}
func (h *ClubHandler) Get(w http.ResponseWriter, r *http.Request) {
	club, err := h.clubs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, club)
}

// Register handles POST /api/v1/clubs
func (h *ClubHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.ClubRegistration
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	club, err := h.clubs.Register(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"club":    club,
		"message": "Registration submitted for review",
	})
}

// Approve handles POST /api/v1/clubs/{id}/approve
func (h *ClubHandler) Approve(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())

	if err := h.clubs.Approve(r.Context(), chi.URLParam(r, "id"), sess); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": string(models.ClubActive)})
}
