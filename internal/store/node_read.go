package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/forayhq/foray/internal/models"
)

// buildSelectionFilter builds WHERE conditions and args for a SelectionFilter.
// Conditions are appended after the user scoping predicate.
func buildSelectionFilter(filter models.SelectionFilter) (conditions []string, args []any) {
	argIdx := 1

	if len(filter.Kinds) > 0 {
		kinds := make([]string, len(filter.Kinds))
		for i, k := range filter.Kinds {
			kinds[i] = string(k)
		}

		conditions = append(conditions, fmt.Sprintf("kind = ANY($%d)", argIdx))
		args = append(args, kinds)
		argIdx++
	}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}

		conditions = append(conditions, fmt.Sprintf("status = ANY($%d)", argIdx))
		args = append(args, statuses)
		argIdx++
	}

	if len(filter.Approvals) > 0 {
		approvals := make([]string, len(filter.Approvals))
		for i, a := range filter.Approvals {
			approvals[i] = string(a)
		}

		conditions = append(conditions, fmt.Sprintf("approval_status = ANY($%d)", argIdx))
		args = append(args, approvals)
		argIdx++
	}

	if filter.MinQuality > 0 {
		conditions = append(conditions, fmt.Sprintf("quality_score >= $%d", argIdx))
		args = append(args, filter.MinQuality)
		argIdx++
	}

	if filter.MaxDepth > 0 {
		conditions = append(conditions, fmt.Sprintf("depth <= $%d", argIdx))
		args = append(args, filter.MaxDepth)
	}

	return conditions, args
}

// ListNodes returns a page of nodes matching the filter, in insertion order.
// Returns nodes, a has-more flag, and any error.
func (s *NodeStore) ListNodes(
	ctx context.Context,
	userID string,
	filter models.SelectionFilter,
	limit, offset int,
) ([]models.Node, bool, error) {
	if limit <= 0 {
		limit = 50
	}

	if limit > maxListLimit {
		limit = maxListLimit
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("listing nodes: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // read-only tx, rollback is cleanup.

	conditions, args := buildSelectionFilter(filter)

	sql := `SELECT ` + nodeColumns + ` FROM ig_nodes
		WHERE user_id = current_setting('app.user_id')::uuid`

	for _, cond := range conditions {
		sql += " AND " + cond
	}

	sql += fmt.Sprintf(" ORDER BY created_at, id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit+1, offset)

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, false, fmt.Errorf("querying nodes: %w", err)
	}
	defer rows.Close()

	nodes, err := collectNodes(rows)
	if err != nil {
		return nil, false, err
	}

	hasMore := len(nodes) > limit
	if hasMore {
		nodes = nodes[:limit]
	}

	return nodes, hasMore, nil
}

// ListInterests returns all active interest nodes, embeddings included, in
// insertion order.
func (s *NodeStore) ListInterests(ctx context.Context, userID string) ([]models.Node, error) {
	return s.listByPredicate(ctx, userID,
		"kind = 'interest' AND status = 'active'")
}

// ListChildren returns active direct children of the given node.
func (s *NodeStore) ListChildren(ctx context.Context, userID, parentID string) ([]models.Node, error) {
	return s.listByPredicate(ctx, userID,
		"parent_id = $1 AND status = 'active'", parentID)
}

// ListDescendants returns active descendants of the given node up to
// maxDepthDelta levels below it, ordered by depth. The denormalized path
// column makes this a single scan instead of a recursive walk.
func (s *NodeStore) ListDescendants(
	ctx context.Context,
	userID, nodeID string,
	maxDepthDelta int,
) ([]models.Node, error) {
	return s.listByPredicate(ctx, userID,
		`$1 = ANY(path) AND id <> $1 AND status = 'active'
			AND depth <= (SELECT depth FROM ig_nodes
				WHERE user_id = current_setting('app.user_id')::uuid AND id = $1) + $2`,
		nodeID, maxDepthDelta)
}

// ListActiveCombinations returns all active combination nodes.
func (s *NodeStore) ListActiveCombinations(ctx context.Context, userID string) ([]models.Node, error) {
	return s.listByPredicate(ctx, userID,
		"kind = 'combination' AND status = 'active'")
}

// ListRootOrphans returns active root-level nodes that are not interests:
// promoted grandchildren and stale combinations awaiting the semantic sweep.
func (s *NodeStore) ListRootOrphans(ctx context.Context, userID string) ([]models.Node, error) {
	return s.listByPredicate(ctx, userID,
		"parent_id IS NULL AND kind <> 'interest' AND status = 'active'")
}

// listByPredicate runs a SELECT with the given extra predicate, always scoped
// to the user and ordered by depth then insertion.
func (s *NodeStore) listByPredicate(
	ctx context.Context,
	userID, predicate string,
	args ...any,
) ([]models.Node, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing nodes: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // read-only tx, rollback is cleanup.

	sql := `SELECT ` + nodeColumns + ` FROM ig_nodes
		WHERE user_id = current_setting('app.user_id')::uuid
			AND ` + strings.TrimSpace(predicate) + `
		ORDER BY depth, created_at, id`

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying nodes: %w", err)
	}
	defer rows.Close()

	return collectNodes(rows)
}
