package store

import (
	"context"
	"fmt"

	"github.com/forayhq/foray/internal/models"
)

// EmbeddingStore handles vector embedding persistence.
type EmbeddingStore struct {
	Base
}

// NewEmbeddingStore creates a new EmbeddingStore.
func NewEmbeddingStore(base Base) *EmbeddingStore {
	return &EmbeddingStore{Base: base}
}

// UpdateNodeEmbedding sets the embedding vector for a single node.
func (s *EmbeddingStore) UpdateNodeEmbedding(ctx context.Context, userID, nodeID string, embedding []float32) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, userID)
	if err != nil {
		return fmt.Errorf("updating node embedding: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	tag, err := tx.Exec(ctx,
		`UPDATE ig_nodes SET embedding = $1::vector, updated_at = NOW()
		 WHERE user_id = current_setting('app.user_id')::uuid AND id = $2`,
		formatEmbedding(embedding), nodeID,
	)
	if err != nil {
		return fmt.Errorf("executing embedding update: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return models.ErrNodeNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing embedding update: %w", err)
	}

	return nil
}

// ListNodesWithoutEmbeddings returns active nodes that have a NULL embedding
// vector, oldest first, up to the given limit. Used by the backfill worker.
func (s *EmbeddingStore) ListNodesWithoutEmbeddings(ctx context.Context, userID string, limit int) ([]models.Node, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}

	if limit > maxListLimit {
		limit = maxListLimit
	}

	tx, err := s.beginReadTx(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing nodes without embeddings: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // read-only tx, rollback is cleanup.

	rows, err := tx.Query(ctx,
		`SELECT `+nodeColumns+` FROM ig_nodes
		 WHERE user_id = current_setting('app.user_id')::uuid
		   AND embedding IS NULL AND status = 'active'
		 ORDER BY created_at
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying nodes without embeddings: %w", err)
	}
	defer rows.Close()

	return collectNodes(rows)
}
