// Package services contains business logic layers.
// Services are called by handlers and interact with the stores.
package services

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dbu-union/portal-server/internal/models"
)

// CredentialVerifier checks a password/OTP pair at login time. The mock
// implementation makes the portal's unverified-credential model explicit:
// swapping in a real verifier is a constructor change, not a rewrite.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password, otp string) error
}

// BcryptVerifier compares the submitted password against a bcrypt hash.
type BcryptVerifier struct {
	hash []byte
}

// NewBcryptVerifier wraps the configured password hash.
func NewBcryptVerifier(hash string) *BcryptVerifier {
	return &BcryptVerifier{hash: []byte(hash)}
}

// Verify returns models.ErrInvalidCredentials on mismatch.
func (v *BcryptVerifier) Verify(_ context.Context, _, password, _ string) error {
	if err := bcrypt.CompareHashAndPassword(v.hash, []byte(password)); err != nil {
		return models.ErrInvalidCredentials
	}
	return nil
}

// MockVerifier accepts any non-empty password after a simulated remote
// round-trip. Development only.
type MockVerifier struct {
	// Delay imitates the latency of a real identity backend.
	Delay time.Duration
}

// Verify waits out the simulated delay, honoring context cancellation.
func (v *MockVerifier) Verify(ctx context.Context, _, password, _ string) error {
	if v.Delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(v.Delay):
		}
	}
	if password == "" {
		return models.ErrInvalidCredentials
	}
	return nil
}
