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

// ElectionHandler handles election listing, the voter-verification
// workflow, and ballot casting.
type ElectionHandler struct {
	elections *services.ElectionService
	workflows *services.WorkflowSet
	logger    *zap.SugaredLogger
}

// NewElectionHandler creates a new election handler.
func NewElectionHandler(es *services.ElectionService, ws *services.WorkflowSet, logger *zap.SugaredLogger) *ElectionHandler {
	return &ElectionHandler{elections: es, workflows: ws, logger: logger}
}

// List handles GET /api/v1/elections?status=active
func (h *ElectionHandler) List(w http.ResponseWriter, r *http.Request) {
	status := models.ElectionStatus(r.URL.Query().Get("status"))
	switch status {
	case "", models.ElectionUpcoming, models.ElectionActive, models.ElectionCompleted:
	default:
		respondError(w, http.StatusBadRequest, "Unknown status filter")
		return
	}

	elections, err := h.elections.List(r.Context(), status)
	if err != nil {
		h.logger.Errorw("Failed to list elections", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to list elections")
		return
	}
	respondJSON(w, http.StatusOK, elections)
}

// Get handles GET /api/v1/elections/{id}
func (h *ElectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	election, err := h.elections.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, election)
}

// workflow returns the session's verification workflow.
func (h *ElectionHandler) workflow(r *http.Request) *services.VotingWorkflow {
	sess := middleware.SessionFromContext(r.Context())
	return h.workflows.Get(sess.ID)
}

// StartVerification handles POST /api/v1/elections/{id}/verification.
// Opening an election resets any in-flight attempt for the session.
func (h *ElectionHandler) StartVerification(w http.ResponseWriter, r *http.Request) {
	electionID := chi.URLParam(r, "id")

	election, err := h.elections.Get(r.Context(), electionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if election.Status != models.ElectionActive {
		respondServiceError(w, models.ErrElectionNotActive)
		return
	}

	wf := h.workflow(r)
	wf.Begin(electionID)
	respondJSON(w, http.StatusOK, map[string]interface{}{"step": wf.Step()})
}

// SubmitStudentID handles POST /api/v1/elections/{id}/verification/student-id
func (h *ElectionHandler) SubmitStudentID(w http.ResponseWriter, r *http.Request) {
	var req models.StudentIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	wf := h.workflow(r)
	if err := wf.EnterStudentID(req.StudentID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"step": wf.Step()})
}

// AttachDocument handles POST /api/v1/elections/{id}/verification/document
func (h *ElectionHandler) AttachDocument(w http.ResponseWriter, r *http.Request) {
	var req models.DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	wf := h.workflow(r)
	if err := wf.AttachDocument(req.FileName); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"step": wf.Step(), "document": true})
}

// RemoveDocument handles DELETE /api/v1/elections/{id}/verification/document
func (h *ElectionHandler) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	wf := h.workflow(r)
	wf.RemoveDocument()
	respondJSON(w, http.StatusOK, map[string]interface{}{"step": wf.Step(), "document": false})
}

// AdvanceVerification handles POST /api/v1/elections/{id}/verification/advance
func (h *ElectionHandler) AdvanceVerification(w http.ResponseWriter, r *http.Request) {
	wf := h.workflow(r)
	if err := wf.Advance(); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"step": wf.Step()})
}

// CancelVerification handles DELETE /api/v1/elections/{id}/verification
func (h *ElectionHandler) CancelVerification(w http.ResponseWriter, r *http.Request) {
	wf := h.workflow(r)
	wf.Cancel()
	respondJSON(w, http.StatusOK, map[string]interface{}{"step": wf.Step()})
}

// CastVote handles POST /api/v1/elections/{id}/vote. The verification
// workflow must be at the confirm step for this election; the verified
// student ID becomes the voter identity for the one-vote-per-voter check.
func (h *ElectionHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	electionID := chi.URLParam(r, "id")

	var req models.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CandidateID == "" {
		respondError(w, http.StatusBadRequest, "candidate_id required")
		return
	}

	wf := h.workflow(r)
	studentID, verifiedElection, err := wf.Confirm()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if verifiedElection != electionID {
		respondError(w, http.StatusConflict, "No verification in progress for this election")
		return
	}

	// The workflow stays at the confirm step until the cast is accepted, so
	// a rejected ballot does not force re-verification.
	receipt, err := h.elections.CastVote(r.Context(), electionID, req.CandidateID, studentID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	wf.Complete()

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"receipt": receipt,
		"message": "Vote submitted successfully",
		"step":    wf.Step(),
	})
}
