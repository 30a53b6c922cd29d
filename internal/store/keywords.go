package store

import (
	"context"
	"fmt"
	"strings"
)

// KeywordStore handles the per-user negative-keyword list. Keywords extracted
// from negative reactions accumulate here and penalize matching results
// during ranking.
type KeywordStore struct {
	Base
}

// NewKeywordStore creates a new KeywordStore.
func NewKeywordStore(base Base) *KeywordStore {
	return &KeywordStore{Base: base}
}

// AddNegativeKeywords records keywords from a negative reaction. Duplicates
// are ignored.
func (s *KeywordStore) AddNegativeKeywords(ctx context.Context, userID string, keywords []string) error {
	cleaned := make([]string, 0, len(keywords))

	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			cleaned = append(cleaned, k)
		}
	}

	if len(cleaned) == 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, userID)
	if err != nil {
		return fmt.Errorf("adding negative keywords: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	_, err = tx.Exec(ctx,
		`INSERT INTO ig_negative_keywords (user_id, keyword)
		 SELECT current_setting('app.user_id')::uuid, unnest($1::text[])
		 ON CONFLICT (user_id, keyword) DO NOTHING`,
		cleaned)
	if err != nil {
		return fmt.Errorf("inserting negative keywords: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing negative keywords: %w", err)
	}

	return nil
}

// ListNegativeKeywords returns the user's accumulated negative keywords.
func (s *KeywordStore) ListNegativeKeywords(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing negative keywords: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // read-only tx, rollback is cleanup.

	rows, err := tx.Query(ctx,
		`SELECT keyword FROM ig_negative_keywords
		 WHERE user_id = current_setting('app.user_id')::uuid
		 ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("querying negative keywords: %w", err)
	}
	defer rows.Close()

	var keywords []string

	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning negative keyword: %w", err)
		}

		keywords = append(keywords, k)
	}

	return keywords, rows.Err()
}
