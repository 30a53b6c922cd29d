package store

import (
	"context"
	"fmt"

	"github.com/forayhq/foray/internal/models"
)

// StatsStore aggregates read-only graph statistics. No side effects.
type StatsStore struct {
	Base
}

// NewStatsStore creates a new StatsStore.
func NewStatsStore(base Base) *StatsStore {
	return &StatsStore{Base: base}
}

// topNodeCount limits how many top-quality nodes the stats payload carries.
const topNodeCount = 5

// GraphStats returns aggregate statistics over the user's graph.
func (s *StatsStore) GraphStats(ctx context.Context, userID string) (*models.GraphStats, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reading graph stats: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // read-only tx, rollback is cleanup.

	stats := &models.GraphStats{
		ByKind:   map[string]int{},
		ByStatus: map[string]int{},
	}

	// Consolidated aggregate pass.
	if err := tx.QueryRow(ctx,
		`SELECT
			COUNT(*),
			COALESCE(MAX(depth), 0),
			COALESCE(AVG(quality_score) FILTER (WHERE status = 'active'), 0),
			COUNT(*) FILTER (WHERE embedding IS NOT NULL),
			COUNT(*) FILTER (WHERE embedding IS NULL AND status = 'active'),
			COUNT(*) FILTER (WHERE updated_at > NOW() - INTERVAL '7 days')
		 FROM ig_nodes
		 WHERE user_id = current_setting('app.user_id')::uuid`,
	).Scan(
		&stats.Nodes, &stats.MaxDepth, &stats.AvgQuality,
		&stats.EmbeddingsComplete, &stats.EmbeddingsPending,
		&stats.RecentActivity,
	); err != nil {
		return nil, fmt.Errorf("querying aggregate stats: %w", err)
	}

	rows, err := tx.Query(ctx,
		`SELECT kind, status, COUNT(*)
		 FROM ig_nodes
		 WHERE user_id = current_setting('app.user_id')::uuid
		 GROUP BY kind, status`)
	if err != nil {
		return nil, fmt.Errorf("querying kind/status breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind, status string
		var count int

		if err := rows.Scan(&kind, &status, &count); err != nil {
			return nil, fmt.Errorf("scanning breakdown row: %w", err)
		}

		stats.ByKind[kind] += count
		stats.ByStatus[status] += count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating breakdown rows: %w", err)
	}

	topRows, err := tx.Query(ctx,
		`SELECT `+nodeColumns+` FROM ig_nodes
		 WHERE user_id = current_setting('app.user_id')::uuid AND status = 'active'
		 ORDER BY quality_score DESC, created_at
		 LIMIT $1`, topNodeCount)
	if err != nil {
		return nil, fmt.Errorf("querying top nodes: %w", err)
	}
	defer topRows.Close()

	top, err := collectNodes(topRows)
	if err != nil {
		return nil, err
	}

	for _, n := range top {
		stats.TopNodes = append(stats.TopNodes, models.ScoredNode{Node: n, Score: n.QualityScore})
	}

	return stats, nil
}
