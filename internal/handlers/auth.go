package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/dbu-union/portal-server/internal/middleware"
	"github.com/dbu-union/portal-server/internal/models"
	"github.com/dbu-union/portal-server/internal/services"
)

// AuthHandler handles login, logout and session endpoints.
type AuthHandler struct {
	sessions  *services.SessionManager
	access    *services.AccessController
	workflows *services.WorkflowSet
	logger    *zap.SugaredLogger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(sm *services.SessionManager, ac *services.AccessController,
	ws *services.WorkflowSet, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{sessions: sm, access: ac, workflows: ws, logger: logger}
}

// Login handles POST /api/v1/auth/login for both entry points: students
// leave admin_role empty, admins select one.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" {
		respondError(w, http.StatusBadRequest, "Email required")
		return
	}

	sess, token, err := h.sessions.Login(r.Context(), req, r.RemoteAddr)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.LoginResponse{
		Token:      token,
		User:       sess.User,
		Credential: sess.Credential,
	})
}

// GoogleLogin handles POST /api/v1/auth/login/google.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	sess, token, err := h.sessions.LoginWithGoogle(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.LoginResponse{Token: token, User: sess.User})
}

// Logout handles POST /api/v1/auth/logout. Clearing an already cleared
// session still returns 200.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())

	if err := h.sessions.Logout(r.Context(), sess.ID); err != nil {
		h.logger.Errorw("Logout failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Logout failed")
		return
	}
	h.workflows.Drop(sess.ID)

	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Session handles GET /api/v1/auth/session: the restored session plus the
// UI composition derived from it.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":       sess.User,
		"credential": sess.Credential,
		"nav":        h.access.VisibleNavItems(sess.User),
		"dashboard":  services.DashboardFor(sess.User.Role),
	})
}
