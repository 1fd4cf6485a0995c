package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// PostgresAccountStore persists accounts in Postgres via GORM, sharing the
// connection used by the reading store.
type PostgresAccountStore struct {
	db *gorm.DB
}

// NewPostgresAccountStore migrates the accounts table and returns the store.
func NewPostgresAccountStore(db *gorm.DB) (*PostgresAccountStore, error) {
	if err := db.AutoMigrate(&Account{}); err != nil {
		return nil, fmt.Errorf("migrate accounts: %w", err)
	}
	return &PostgresAccountStore{db: db}, nil
}

// Create inserts the account, mapping unique violations to ErrUsernameTaken.
func (s *PostgresAccountStore) Create(ctx context.Context, a Account) error {
	err := s.db.WithContext(ctx).Create(&a).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUsernameTaken
	}
	if err != nil {
		// Older driver versions surface unique violations without the
		// translated sentinel; check explicitly before giving up.
		var existing Account
		lookupErr := s.db.WithContext(ctx).Where("username = ?", a.Username).First(&existing).Error
		if lookupErr == nil {
			return ErrUsernameTaken
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// ByUsername looks up an account.
func (s *PostgresAccountStore) ByUsername(ctx context.Context, username string) (Account, error) {
	var a Account
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return Account{}, fmt.Errorf("query account: %w", err)
	}
	return a, nil
}
