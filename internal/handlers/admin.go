package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/dbu-union/portal-server/internal/session"
)

const defaultAccessLogLimit = 100

// AdminHandler exposes the admin access log. Routes using it must be gated
// on the audit_all permission.
type AdminHandler struct {
	store  session.Store
	logger *zap.SugaredLogger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(store session.Store, logger *zap.SugaredLogger) *AdminHandler {
	return &AdminHandler{store: store, logger: logger}
}

// AccessLog handles GET /api/v1/admin/access-log?limit=50. Entries are
// returned newest first.
func (h *AdminHandler) AccessLog(w http.ResponseWriter, r *http.Request) {
	limit := defaultAccessLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	entries, err := h.store.AccessLog(r.Context(), limit)
	if err != nil {
		h.logger.Errorw("Failed to read access log", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to read access log")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}
