package utils

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// SessionData is the server-side state bound to an authenticated
// client. A session is authenticated only when both identity fields
// are set; there is no partial state.
type SessionData struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

// Authenticated reports whether the session names a complete identity.
func (d SessionData) Authenticated() bool {
	return d.UserID != 0 && d.Username != ""
}

type sessionEntry struct {
	data      SessionData
	expiresAt time.Time
}

// SessionStore keeps session state server side, keyed by an opaque id
// carried in a cookie. Redis is preferred for multi-instance
// deployments; without it the store degrades to in-memory entries
// (single-instance only).
type SessionStore struct {
	rc  *redis.Client
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]sessionEntry
}

// NewSessionStore creates a store with the given TTL. rc may be nil.
func NewSessionStore(rc *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionStore{
		rc:      rc,
		ttl:     ttl,
		entries: map[string]sessionEntry{},
	}
}

// Establish creates a new session for the identity and returns its id.
func (s *SessionStore) Establish(userID uint, username string) (string, error) {
	sid := uuid.NewString()
	data := SessionData{UserID: userID, Username: username}

	if s.rc != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return "", err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.rc.Set(ctx, sessionKeyPrefix+sid, b, s.ttl).Err(); err == nil {
			return sid, nil
		} else if Sugar != nil {
			Sugar.Warnf("redis session write failed, falling back to memory: %v", err)
		}
	}

	s.mu.Lock()
	s.pruneExpiredLocked()
	s.entries[sid] = sessionEntry{data: data, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()
	return sid, nil
}

// Get loads a session by id. ok is false for unknown, expired, or
// incomplete sessions.
func (s *SessionStore) Get(sid string) (SessionData, bool) {
	if sid == "" {
		return SessionData{}, false
	}

	if s.rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		b, err := s.rc.Get(ctx, sessionKeyPrefix+sid).Bytes()
		if err == nil {
			var data SessionData
			if json.Unmarshal(b, &data) == nil && data.Authenticated() {
				return data, true
			}
			return SessionData{}, false
		}
		if err != redis.Nil && Sugar != nil {
			Sugar.Warnf("redis session read failed, trying memory: %v", err)
		}
	}

	s.mu.Lock()
	entry, ok := s.entries[sid]
	s.mu.Unlock()
	if !ok || time.Now().After(entry.expiresAt) || !entry.data.Authenticated() {
		return SessionData{}, false
	}
	return entry.data, true
}

// Clear removes a session. Clearing an unknown id is a no-op.
func (s *SessionStore) Clear(sid string) {
	if sid == "" {
		return
	}
	if s.rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.rc.Del(ctx, sessionKeyPrefix+sid).Err()
	}
	s.mu.Lock()
	delete(s.entries, sid)
	s.mu.Unlock()
}

func (s *SessionStore) pruneExpiredLocked() {
	now := time.Now()
	for sid, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, sid)
		}
	}
}
