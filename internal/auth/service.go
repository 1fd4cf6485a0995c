// Package auth provides username/password accounts with server-side sessions.
// Ingestion and read endpoints do not require a session; advisory routes can
// be gated by configuration.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUsernameTaken is returned on duplicate registration.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials is returned for unknown users and bad passwords alike.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrSessionNotFound is returned for missing or expired sessions.
	ErrSessionNotFound = errors.New("session not found")
)

// Account is a registered user. The password is stored only as a bcrypt hash.
type Account struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Username     string    `gorm:"uniqueIndex;size:64"`
	Email        string    `gorm:"size:254"`
	PasswordHash string    `gorm:"size:60"`
	CreatedAt    time.Time
}

// AccountStore persists accounts.
type AccountStore interface {
	Create(ctx context.Context, a Account) error
	ByUsername(ctx context.Context, username string) (Account, error)
}

// SessionStore keeps session-id → username with a TTL.
type SessionStore interface {
	Put(ctx context.Context, sessionID, username string, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}

// Service implements register/login/logout on top of the stores.
type Service struct {
	accounts   AccountStore
	sessions   SessionStore
	sessionTTL time.Duration
}

// NewService creates the auth service.
func NewService(accounts AccountStore, sessions SessionStore, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &Service{accounts: accounts, sessions: sessions, sessionTTL: sessionTTL}
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, username, email, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", ErrInvalidCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.accounts.Create(ctx, Account{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	})
}

// Login verifies credentials and issues a session ID.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	account, err := s.accounts.ByUsername(ctx, username)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	sessionID := uuid.NewString()
	if err := s.sessions.Put(ctx, sessionID, username, s.sessionTTL); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return sessionID, nil
}

// Logout deletes the session. Unknown sessions are not an error.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

// Verify returns the username behind a session ID.
func (s *Service) Verify(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrSessionNotFound
	}
	return s.sessions.Get(ctx, sessionID)
}

// SessionTTL exposes the configured session lifetime for cookie expiry.
func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}
