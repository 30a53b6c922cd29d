package store_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/forayhq/foray/internal/dbpool"
	"github.com/forayhq/foray/internal/store"
)

// testEnv holds shared test infrastructure (single pool across all tests).
type testEnv struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

var sharedEnv *testEnv

func getTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if sharedEnv != nil {
		return sharedEnv
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	pool, err := dbpool.NewPool(ctx, dbURL)
	if err != nil {
		t.Fatalf("connecting to test DB: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	sharedEnv = &testEnv{
		pool: pool,
		log:  log,
	}

	return sharedEnv
}

// setupTestBase creates a Base with a fresh test user, cleaned up after the test.
func setupTestBase(t *testing.T) (_ store.Base, _ string) {
	t.Helper()

	env := getTestEnv(t)
	userID := uuid.New().String()
	ctx := context.Background()

	apiKey := "test-key-" + userID
	hash := sha256.Sum256([]byte(apiKey))
	apiKeyHash := hex.EncodeToString(hash[:])

	_, err := env.pool.Exec(ctx,
		"INSERT INTO ig_users (id, api_key_hash) VALUES ($1, $2)",
		userID, apiKeyHash,
	)
	if err != nil {
		t.Fatalf("creating test user: %v", err)
	}

	t.Cleanup(func() {
		cleanCtx := context.Background()
		// Delete in dependency order: audit, keywords, nodes, user.
		env.pool.Exec(cleanCtx, "DELETE FROM ig_audit_log WHERE user_id = $1", userID)         //nolint:errcheck // best-effort cleanup
		env.pool.Exec(cleanCtx, "DELETE FROM ig_negative_keywords WHERE user_id = $1", userID) //nolint:errcheck // best-effort cleanup
		env.pool.Exec(cleanCtx, "DELETE FROM ig_nodes WHERE user_id = $1", userID)             //nolint:errcheck // best-effort cleanup
		env.pool.Exec(cleanCtx, "DELETE FROM ig_users WHERE id = $1", userID)                  //nolint:errcheck // best-effort cleanup
	})

	base := store.Base{Pool: env.pool, Log: env.log}

	return base, userID
}
