// Package session persists the current-user and admin-credential records and
// the admin access log. Records are read and written wholesale (full
// replace); last-writer-wins is the concurrency discipline.
package session

import (
	"context"

	"github.com/dbu-union/portal-server/internal/models"
)

// Storage key layout. Session-scoped keys are suffixed with the session ID.
const (
	keyUser       = "dbu_user"
	keyCredential = "dbu_admin_credential"
	keyAdminLogs  = "admin_logs"
)

// Store persists session records. Load methods return (nil, nil) when no
// record exists; Clear is idempotent.
type Store interface {
	SaveUser(ctx context.Context, sessionID string, user *models.User) error
	LoadUser(ctx context.Context, sessionID string) (*models.User, error)

	SaveCredential(ctx context.Context, sessionID string, cred *models.AdminCredential) error
	LoadCredential(ctx context.Context, sessionID string) (*models.AdminCredential, error)

	// Clear removes both the user and credential records unconditionally.
	Clear(ctx context.Context, sessionID string) error

	// AppendAccessLog records an admin login, evicting the oldest entries
	// beyond the retention window.
	AppendAccessLog(ctx context.Context, entry models.AdminAccessLogEntry) error

	// AccessLog returns up to limit entries, newest first.
	AccessLog(ctx context.Context, limit int) ([]models.AdminAccessLogEntry, error)
}
