package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/forayhq/foray/internal/models"
)

// ArchiveStore handles archival and root promotion. Archival is the only
// deletion mechanism in the graph; rows are never removed.
type ArchiveStore struct {
	Base
}

// NewArchiveStore creates a new ArchiveStore.
func NewArchiveStore(base Base) *ArchiveStore {
	return &ArchiveStore{Base: base}
}

// FindInterestByTitle returns the active interest node with the given title
// (case-insensitive), or models.ErrInterestNotFound.
func (s *ArchiveStore) FindInterestByTitle(ctx context.Context, userID, title string) (*models.Node, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("finding interest: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // read-only tx, rollback is cleanup.

	query := `SELECT ` + nodeColumns + ` FROM ig_nodes
		WHERE user_id = current_setting('app.user_id')::uuid
			AND kind = 'interest' AND status = 'active'
			AND lower(title) = lower($1)`

	n, err := scanNode(tx.QueryRow(ctx, query, title).Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrInterestNotFound
		}

		return nil, fmt.Errorf("scanning interest: %w", err)
	}

	return n, nil
}

// ArchiveNodes sets status=archived on the given nodes and returns the IDs
// that actually changed.
func (s *ArchiveStore) ArchiveNodes(ctx context.Context, userID string, nodeIDs []string) ([]string, error) {
	if len(nodeIDs) == 0 {
		return nil, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("archiving nodes: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	rows, err := tx.Query(ctx,
		`UPDATE ig_nodes
		 SET status = 'archived', updated_at = NOW()
		 WHERE user_id = current_setting('app.user_id')::uuid
			AND id = ANY($1) AND status <> 'archived'
		 RETURNING id`,
		nodeIDs)
	if err != nil {
		return nil, fmt.Errorf("executing archive update: %w", err)
	}

	archived, err := collectIDs(rows)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing archive: %w", err)
	}

	s.notify("ig_nodes", "update", userID)

	return archived, nil
}

// PromoteToRoot turns the given nodes into orphaned roots: parent cleared,
// depth 0, path reset to just the node's own id. Descendants of a promoted
// node are re-pathed beneath the new root in the same transaction, keeping
// path and depth consistent through the whole subtree. Deeper history under
// a removed interest survives this way instead of being archived with it.
func (s *ArchiveStore) PromoteToRoot(ctx context.Context, userID string, nodeIDs []string) ([]string, error) {
	if len(nodeIDs) == 0 {
		return nil, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("promoting nodes to root: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	rows, err := tx.Query(ctx,
		`UPDATE ig_nodes
		 SET parent_id = NULL, depth = 0, path = ARRAY[id], updated_at = NOW()
		 WHERE user_id = current_setting('app.user_id')::uuid AND id = ANY($1)
		 RETURNING id`,
		nodeIDs)
	if err != nil {
		return nil, fmt.Errorf("executing root promotion: %w", err)
	}

	promoted, err := collectIDs(rows)
	if err != nil {
		return nil, err
	}

	// Trim each descendant's path prefix above its promoted ancestor and
	// shift its depth accordingly.
	if _, err := tx.Exec(ctx,
		`UPDATE ig_nodes n
		 SET path = n.path[array_position(n.path, p.id):],
			depth = n.depth - (array_position(n.path, p.id) - 1),
			updated_at = NOW()
		 FROM unnest($1::text[]) AS p(id)
		 WHERE n.user_id = current_setting('app.user_id')::uuid
			AND p.id = ANY(n.path) AND n.id <> p.id`,
		nodeIDs); err != nil {
		return nil, fmt.Errorf("repathing promoted subtrees: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing root promotion: %w", err)
	}

	s.notify("ig_nodes", "update", userID)

	return promoted, nil
}

// collectIDs scans a single-column id result set.
func collectIDs(rows pgx.Rows) ([]string, error) {
	defer rows.Close()

	var ids []string

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning node id: %w", err)
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}
