package session

import (
	"context"
	"sync"

	"github.com/dbu-union/portal-server/internal/models"
)

// MemoryStore is an in-process Store used in development and tests. It
// mirrors the Redis layout, including log retention.
type MemoryStore struct {
	mu        sync.Mutex
	users     map[string]models.User
	creds     map[string]models.AdminCredential
	logs      []models.AdminAccessLogEntry // newest first
	retention int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(retention int) *MemoryStore {
	return &MemoryStore{
		users:     make(map[string]models.User),
		creds:     make(map[string]models.AdminCredential),
		retention: retention,
	}
}

func (s *MemoryStore) SaveUser(_ context.Context, sessionID string, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[sessionID] = *user
	return nil
}

func (s *MemoryStore) LoadUser(_ context.Context, sessionID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[sessionID]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (s *MemoryStore) SaveCredential(_ context.Context, sessionID string, cred *models.AdminCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[sessionID] = *cred
	return nil
}

func (s *MemoryStore) LoadCredential(_ context.Context, sessionID string) (*models.AdminCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.creds[sessionID]
	if !ok {
		return nil, nil
	}
	return &cred, nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, sessionID)
	delete(s.creds, sessionID)
	return nil
}

func (s *MemoryStore) AppendAccessLog(_ context.Context, entry models.AdminAccessLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append([]models.AdminAccessLogEntry{entry}, s.logs...)
	if len(s.logs) > s.retention {
		s.logs = s.logs[:s.retention]
	}
	return nil
}

func (s *MemoryStore) AccessLog(_ context.Context, limit int) ([]models.AdminAccessLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit > len(s.logs) {
		limit = len(s.logs)
	}
	out := make([]models.AdminAccessLogEntry, limit)
	copy(out, s.logs[:limit])
	return out, nil
}
