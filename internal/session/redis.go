package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dbu-union/portal-server/internal/models"
)

// sessionTTL bounds how long an abandoned session survives without a logout.
const sessionTTL = 7 * 24 * time.Hour

// RedisStore is the production Store backed by Redis.
type RedisStore struct {
	client    *redis.Client
	retention int
}

// NewRedisStore connects to Redis and verifies connectivity.
func NewRedisStore(ctx context.Context, redisURL string, retention int) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{client: client, retention: retention}, nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping verifies connectivity for readiness checks.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func userKey(sessionID string) string       { return keyUser + ":" + sessionID }
func credentialKey(sessionID string) string { return keyCredential + ":" + sessionID }

// SaveUser replaces the persisted user record for the session.
func (s *RedisStore) SaveUser(ctx context.Context, sessionID string, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if err := s.client.Set(ctx, userKey(sessionID), data, sessionTTL).Err(); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// LoadUser returns the persisted user, or (nil, nil) when absent.
func (s *RedisStore) LoadUser(ctx context.Context, sessionID string) (*models.User, error) {
	data, err := s.client.Get(ctx, userKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &user, nil
}

// SaveCredential replaces the persisted admin credential for the session.
func (s *RedisStore) SaveCredential(ctx context.Context, sessionID string, cred *models.AdminCredential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}
	if err := s.client.Set(ctx, credentialKey(sessionID), data, sessionTTL).Err(); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// LoadCredential returns the persisted credential, or (nil, nil) when absent.
func (s *RedisStore) LoadCredential(ctx context.Context, sessionID string) (*models.AdminCredential, error) {
	data, err := s.client.Get(ctx, credentialKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}

	var cred models.AdminCredential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("unmarshal credential: %w", err)
	}
	return &cred, nil
}

// Clear deletes both session records. Deleting absent keys is a no-op.
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, userKey(sessionID), credentialKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// AppendAccessLog pushes the entry and trims the list to the retention
// window, newest first.
func (s *RedisStore) AppendAccessLog(ctx context.Context, entry models.AdminAccessLogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal log entry: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, keyAdminLogs, data)
	pipe.LTrim(ctx, keyAdminLogs, 0, int64(s.retention-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append access log: %w", err)
	}
	return nil
}

// AccessLog returns up to limit entries, newest first.
func (s *RedisStore) AccessLog(ctx context.Context, limit int) ([]models.AdminAccessLogEntry, error) {
	raw, err := s.client.LRange(ctx, keyAdminLogs, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read access log: %w", err)
	}

	entries := make([]models.AdminAccessLogEntry, 0, len(raw))
	for _, item := range raw {
		var entry models.AdminAccessLogEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
