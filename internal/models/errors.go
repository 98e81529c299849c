package models

import (
	"errors"
	"fmt"
	"strings"
)

// Portal error taxonomy. All of these surface as user-visible failures;
// none are fatal to the process.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrFederatedAuth      = errors.New("federated authentication failed")
	ErrInvalidIDFormat    = errors.New("invalid student ID format")
	ErrMissingDocument    = errors.New("identity document required")
	ErrVerificationNeeded = errors.New("voter verification required")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrAlreadyVoted       = errors.New("vote already cast for this election")
	ErrElectionNotActive  = errors.New("election is not open for voting")
	ErrNotFound           = errors.New("not found")
)

// ValidationError reports the missing or invalid form fields of a rejected
// submission. No partial submission is accepted.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: missing or invalid fields: %s", strings.Join(e.Fields, ", "))
}

// NewValidationError builds a ValidationError for the given fields.
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}
