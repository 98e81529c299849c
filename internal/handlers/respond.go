// Package handlers contains HTTP request handlers for the portal API.
// Handlers parse requests, call services, and return JSON responses.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dbu-union/portal-server/internal/models"
)

// Helper: respond with JSON
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Helper: respond with error
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps the service error taxonomy to HTTP statuses.
// Every error here is user-visible and transient; the client may resubmit.
func respondServiceError(w http.ResponseWriter, err error) {
	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "Validation failed",
			"fields": vErr.Fields,
		})
	case errors.Is(err, models.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, models.ErrFederatedAuth):
		respondError(w, http.StatusUnauthorized, "Federated authentication failed")
	case errors.Is(err, models.ErrPermissionDenied):
		respondError(w, http.StatusForbidden, "Permission denied")
	case errors.Is(err, models.ErrNotFound):
		respondError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, models.ErrAlreadyVoted):
		respondError(w, http.StatusConflict, "Vote already cast for this election")
	case errors.Is(err, models.ErrElectionNotActive):
		respondError(w, http.StatusConflict, "Election is not open for voting")
	case errors.Is(err, models.ErrInvalidIDFormat):
		respondError(w, http.StatusBadRequest, "Invalid student ID format")
	case errors.Is(err, models.ErrMissingDocument):
		respondError(w, http.StatusBadRequest, "Identity document required")
	case errors.Is(err, models.ErrVerificationNeeded):
		respondError(w, http.StatusConflict, "Voter verification required")
	default:
		respondError(w, http.StatusInternalServerError, "Internal error")
	}
}
