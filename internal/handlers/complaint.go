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

// ComplaintHandler handles complaint-related HTTP endpoints
type ComplaintHandler struct {
	complaints *services.ComplaintService
	logger     *zap.SugaredLogger
}

// NewComplaintHandler creates a new complaint handler
func NewComplaintHandler(cs *services.ComplaintService, logger *zap.SugaredLogger) *ComplaintHandler {
	return &ComplaintHandler{complaints: cs, logger: logger}
}

// Submit handles POST /api/v1/complaints
func (h *ComplaintHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.ComplaintSubmission
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess := middleware.SessionFromContext(r.Context())
	complaint, err := h.complaints.Submit(r.Context(), &req, sess.User.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"case_id":   complaint.ID,
		"status":    complaint.Status,
		"message":   "Complaint submitted. Case ID: " + complaint.ID,
		"complaint": complaint,
	})
}

// List handles GET /api/v1/complaints?status=&category=&mine=true
func (h *ComplaintHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := services.ComplaintFilter{
		Status:   models.ComplaintStatus(r.URL.Query().Get("status")),
		Category: r.URL.Query().Get("category"),
	}
	if r.URL.Query().Get("mine") == "true" {
		sess := middleware.SessionFromContext(r.Context())
		filter.SubmittedBy = sess.User.ID
	}

	complaints, err := h.complaints.List(r.Context(), filter)
	if err != nil {
		h.logger.Errorw("Failed to list complaints", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to list complaints")
		return
	}
	respondJSON(w, http.StatusOK, complaints)
}

// Get handles GET /api/v1/complaints/{id}
func (h *ComplaintHandler) Get(w http.ResponseWriter, r *http.Request) {
	complaint, err := h.complaints.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, complaint)
}

// Respond handles POST /api/v1/complaints/{id}/responses
func (h *ComplaintHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req models.ComplaintResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess := middleware.SessionFromContext(r.Context())
	resp, err := h.complaints.Respond(r.Context(), chi.URLParam(r, "id"), req.Message, sess)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

// UpdateStatus handles PUT /api/v1/complaints/{id}/status
func (h *ComplaintHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req models.ComplaintStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess := middleware.SessionFromContext(r.Context())
	if err := h.complaints.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status, sess); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": req.Status})
}

// Stats handles GET /api/v1/complaints/stats
func (h *ComplaintHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.complaints.Stats(r.Context())
	if err != nil {
		h.logger.Errorw("Failed to fetch complaint stats", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
