package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/forayhq/foray/internal/models"
)

// nodeColumns lists the columns selected for node queries. The embedding is
// cast to text so it round-trips through parseEmbedding without a vector
// codec.
const nodeColumns = `id, user_id, parent_id, kind, title, depth, path,
	positive_reactions, negative_reactions, quality_score, times_selected,
	keywords, embedding::text, status, approval_status,
	url, snippet, search_query,
	source_node_ids, combination_type, confidence_score, potential_queries,
	created_at, updated_at, last_used_at`

// scanNode scans a single row into a models.Node.
func scanNode(scan func(dest ...any) error) (*models.Node, error) {
	var n models.Node
	var userID uuid.UUID
	var parentID, embedding, url, snippet, searchQuery, combinationType *string
	var confidence *float64
	var sourceIDs, potentialQueries []string
	var lastUsedAt *time.Time

	err := scan(
		&n.ID,
		&userID,
		&parentID,
		&n.Kind,
		&n.Title,
		&n.Depth,
		&n.Path,
		&n.Positive,
		&n.Negative,
		&n.QualityScore,
		&n.TimesSelected,
		&n.Keywords,
		&embedding,
		&n.Status,
		&n.ApprovalStatus,
		&url,
		&snippet,
		&searchQuery,
		&sourceIDs,
		&combinationType,
		&confidence,
		&potentialQueries,
		&n.CreatedAt,
		&n.UpdatedAt,
		&lastUsedAt,
	)
	if err != nil {
		return nil, err
	}

	n.UserID = userID
	n.ParentID = parentID
	n.LastUsedAt = lastUsedAt
	n.SourceNodeIDs = sourceIDs
	n.PotentialQueries = potentialQueries

	if url != nil {
		n.URL = *url
	}

	if snippet != nil {
		n.Snippet = *snippet
	}

	if searchQuery != nil {
		n.SearchQuery = *searchQuery
	}

	if combinationType != nil {
		n.CombinationType = models.CombinationType(*combinationType)
	}

	if confidence != nil {
		n.ConfidenceScore = *confidence
	}

	if embedding != nil {
		vec, err := parseEmbedding(*embedding)
		if err != nil {
			return nil, fmt.Errorf("parsing node embedding: %w", err)
		}

		n.Embedding = vec
	}

	return &n, nil
}

// collectNodes scans all rows into a node slice.
func collectNodes(rows pgx.Rows) ([]models.Node, error) {
	var nodes []models.Node

	for rows.Next() {
		n, err := scanNode(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning node row: %w", err)
		}

		nodes = append(nodes, *n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating node rows: %w", err)
	}

	return nodes, nil
}
