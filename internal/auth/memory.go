package auth

import (
	"context"
	"sync"
	"time"
)

// MemoryAccountStore keeps accounts in a map. Default when no DATABASE_URL
// is configured, and the store used in tests.
type MemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]Account // keyed by username
}

// NewMemoryAccountStore creates an empty store.
func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{accounts: make(map[string]Account)}
}

// Create stores the account, enforcing username uniqueness.
func (s *MemoryAccountStore) Create(_ context.Context, a Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[a.Username]; exists {
		return ErrUsernameTaken
	}
	s.accounts[a.Username] = a
	return nil
}

// ByUsername looks up an account.
func (s *MemoryAccountStore) ByUsername(_ context.Context, username string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[username]
	if !ok {
		return Account{}, ErrInvalidCredentials
	}
	return a, nil
}

// MemorySessionStore keeps sessions in a map with per-entry expiry.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
	now      func() time.Time
}

type memorySession struct {
	username  string
	expiresAt time.Time
}

// NewMemorySessionStore creates an empty session store. now may be nil.
func NewMemorySessionStore(now func() time.Time) *MemorySessionStore {
	if now == nil {
		now = time.Now
	}
	return &MemorySessionStore{
		sessions: make(map[string]memorySession),
		now:      now,
	}
}

// Put stores the session.
func (s *MemorySessionStore) Put(_ context.Context, sessionID, username string, ttl time.Duration) error {
	s.mu.Lock()
	s.sessions[sessionID] = memorySession{
		username:  username,
		expiresAt: s.now().Add(ttl),
	}
	s.mu.Unlock()
	return nil
}

// Get returns the username behind a live session.
func (s *MemorySessionStore) Get(_ context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok || s.now().After(sess.expiresAt) {
		return "", ErrSessionNotFound
	}
	return sess.username, nil
}

// Delete removes the session.
func (s *MemorySessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}
