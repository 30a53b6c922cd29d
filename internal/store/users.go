package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/forayhq/foray/internal/dbpool"
)

// UserStore handles user lookups (API key → user ID).
type UserStore struct {
	Pool *dbpool.Pool
}

// NewUserStore creates a new UserStore.
func NewUserStore(pool *dbpool.Pool) *UserStore {
	return &UserStore{Pool: pool}
}

// GetUserByAPIKey looks up a user ID by API key hash.
func (s *UserStore) GetUserByAPIKey(ctx context.Context, apiKey string) (string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	hash := sha256.Sum256([]byte(apiKey))
	apiKeyHash := hex.EncodeToString(hash[:])

	var userID string

	err := s.Pool.QueryRow(ctx, "SELECT id FROM ig_users WHERE api_key_hash = $1", apiKeyHash).Scan(&userID)
	if err != nil {
		return "", fmt.Errorf("looking up user by API key: %w", err)
	}

	return userID, nil
}
