package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/forayhq/foray/internal/models"
)

// ReactionStore handles reaction counters, cascades, and selection stamps.
// quality_score is a generated column, so every counter update recomputes it
// in the same statement, so the ratio can never drift from the counters.
type ReactionStore struct {
	Base
}

// NewReactionStore creates a new ReactionStore.
func NewReactionStore(base Base) *ReactionStore {
	return &ReactionStore{Base: base}
}

// CascadeIncrement is one decayed counter bump produced by a feedback cascade.
type CascadeIncrement struct {
	NodeID string
	Amount float64
}

// ApplyReaction adds a full increment to the matching counter of the target
// node, flips its approval status, and stamps last_used_at. Returns the
// updated node.
func (s *ReactionStore) ApplyReaction(
	ctx context.Context,
	userID, nodeID string,
	positive bool,
) (*models.Node, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("applying reaction: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	var sql string
	if positive {
		sql = `UPDATE ig_nodes
			SET positive_reactions = positive_reactions + 1,
				approval_status = 'approved',
				last_used_at = NOW(),
				updated_at = NOW()
			WHERE user_id = current_setting('app.user_id')::uuid AND id = $1
			RETURNING ` + nodeColumns
	} else {
		sql = `UPDATE ig_nodes
			SET negative_reactions = negative_reactions + 1,
				approval_status = 'rejected',
				last_used_at = NOW(),
				updated_at = NOW()
			WHERE user_id = current_setting('app.user_id')::uuid AND id = $1
			RETURNING ` + nodeColumns
	}

	n, err := scanNode(tx.QueryRow(ctx, sql, nodeID).Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNodeNotFound
		}

		return nil, fmt.Errorf("scanning reacted node: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing reaction: %w", err)
	}

	s.notify("ig_nodes", "update", userID)

	return n, nil
}

// ApplyCascade applies decayed fractional increments to descendant counters
// in a single transaction. Approval status is untouched: cascaded signal is
// reinforcement, not judgement.
func (s *ReactionStore) ApplyCascade(
	ctx context.Context,
	userID string,
	positive bool,
	increments []CascadeIncrement,
) error {
	if len(increments) == 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, userID)
	if err != nil {
		return fmt.Errorf("applying cascade: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	column := "negative_reactions"
	if positive {
		column = "positive_reactions"
	}

	sql := `UPDATE ig_nodes
		SET ` + column + ` = ` + column + ` + $2,
			updated_at = NOW()
		WHERE user_id = current_setting('app.user_id')::uuid AND id = $1`

	for _, inc := range increments {
		if _, err := tx.Exec(ctx, sql, inc.NodeID, inc.Amount); err != nil {
			return fmt.Errorf("cascading to node %s: %w", inc.NodeID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing cascade: %w", err)
	}

	s.notify("ig_nodes", "update", userID)

	return nil
}

// MarkSelected increments times_selected and stamps last_used_at for every
// given node. This is the observable side effect of a discovery selection.
func (s *ReactionStore) MarkSelected(ctx context.Context, userID string, nodeIDs []string) error {
	if len(nodeIDs) == 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, userID)
	if err != nil {
		return fmt.Errorf("marking nodes selected: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	_, err = tx.Exec(ctx,
		`UPDATE ig_nodes
		 SET times_selected = times_selected + 1,
			 last_used_at = NOW(),
			 updated_at = NOW()
		 WHERE user_id = current_setting('app.user_id')::uuid AND id = ANY($1)`,
		nodeIDs)
	if err != nil {
		return fmt.Errorf("updating selection counters: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing selection update: %w", err)
	}

	return nil
}
