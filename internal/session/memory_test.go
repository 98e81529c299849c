package session

import (
	"context"
	"testing"
	"time"

	"github.com/dbu-union/portal-server/internal/models"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10)

	user := &models.User{ID: "u1", Name: "Student User", Email: "student@dbu.edu.et", Role: models.RoleStudent}
	if err := store.SaveUser(ctx, "s1", user); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}

	got, err := store.LoadUser(ctx, "s1")
	if err != nil {
		t.Fatalf("LoadUser: %v", err)
	}
	if got == nil || got.Email != user.Email {
		t.Errorf("loaded user = %+v, want %+v", got, user)
	}

	// Unknown session yields no user, no error
	got, err = store.LoadUser(ctx, "missing")
	if err != nil || got != nil {
		t.Errorf("LoadUser(missing) = %+v, %v, want nil, nil", got, err)
	}
}

func TestMemoryStoreClearIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10)

	store.SaveUser(ctx, "s1", &models.User{ID: "u1", Role: models.RoleStudent})
	store.SaveCredential(ctx, "s1", &models.AdminCredential{Email: "clubs@dbu.edu.et"})

	if err := store.Clear(ctx, "s1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	// Clearing twice is a no-op, not an error
	if err := store.Clear(ctx, "s1"); err != nil {
		t.Fatalf("second Clear: %v", err)
	}

	if u, _ := store.LoadUser(ctx, "s1"); u != nil {
		t.Errorf("user survived Clear: %+v", u)
	}
	if c, _ := store.LoadCredential(ctx, "s1"); c != nil {
		t.Errorf("credential survived Clear: %+v", c)
	}
}

func TestMemoryStoreAccessLogRetention(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(3)

	for i := 0; i < 5; i++ {
		entry := models.AdminAccessLogEntry{
			Timestamp:  time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC),
			AdminEmail: "clubs@dbu.edu.et",
			Action:     "LOGIN",
		}
		if err := store.AppendAccessLog(ctx, entry); err != nil {
			t.Fatalf("AppendAccessLog: %v", err)
		}
	}

	logs, err := store.AccessLog(ctx, 10)
	if err != nil {
		t.Fatalf("AccessLog: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("retained %d entries, want 3", len(logs))
	}
	// Newest first; oldest two evicted
	if !logs[0].Timestamp.After(logs[1].Timestamp) {
		t.Errorf("log not ordered newest first: %v before %v", logs[0].Timestamp, logs[1].Timestamp)
	}
	if logs[2].Timestamp.Day() != 3 {
		t.Errorf("oldest retained entry day = %d, want 3", logs[2].Timestamp.Day())
	}
}
