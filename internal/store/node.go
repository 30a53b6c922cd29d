package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/forayhq/foray/internal/models"
)

// NodeStore handles node creation and lookup.
type NodeStore struct {
	Base
}

// NewNodeStore creates a new NodeStore.
func NewNodeStore(base Base) *NodeStore {
	return &NodeStore{Base: base}
}

// CreateInterest inserts a root-level interest node. Creation is idempotent
// by title: if an active interest with the same name exists, the existing
// node is returned with created=false.
func (s *NodeStore) CreateInterest(
	ctx context.Context,
	userID string,
	req models.CreateInterestRequest,
) (*models.Node, bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("creating interest: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	existing, err := findActiveInterest(ctx, tx, req.Name)
	if err != nil {
		return nil, false, err
	}

	if existing != nil {
		return existing, false, nil
	}

	id := uuid.New().String()

	query := `INSERT INTO ig_nodes
			(id, user_id, parent_id, kind, title, depth, path, keywords, status, approval_status)
		VALUES ($1, $2, NULL, 'interest', $3, 0, ARRAY[$1], $4, 'active', 'approved')
		RETURNING ` + nodeColumns

	row := tx.QueryRow(ctx, query, id, userID, req.Name, keywordsOrEmpty(req.Keywords))

	n, err := scanNode(row.Scan)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, false, models.ErrDuplicateKey
		}

		return nil, false, fmt.Errorf("scanning created interest: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("committing create interest: %w", err)
	}

	s.notify("ig_nodes", "insert", userID)

	return n, true, nil
}

// findActiveInterest looks up an active interest node by title, case-insensitively.
func findActiveInterest(ctx context.Context, tx pgx.Tx, name string) (*models.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM ig_nodes
		WHERE user_id = current_setting('app.user_id')::uuid
			AND kind = 'interest' AND status = 'active'
			AND lower(title) = lower($1)`

	row := tx.QueryRow(ctx, query, name)

	n, err := scanNode(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("looking up interest by title: %w", err)
	}

	return n, nil
}

// CreateContent inserts a content node under the given parent, deriving path
// and depth from the parent row inside the same transaction.
func (s *NodeStore) CreateContent(
	ctx context.Context,
	userID string,
	req models.CreateContentRequest,
) (*models.Node, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("creating content node: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	var parentDepth int
	var parentPath []string

	err = tx.QueryRow(ctx,
		`SELECT depth, path FROM ig_nodes
		 WHERE user_id = current_setting('app.user_id')::uuid AND id = $1`,
		req.ParentID,
	).Scan(&parentDepth, &parentPath)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNodeNotFound
		}

		return nil, fmt.Errorf("reading parent node: %w", err)
	}

	id := uuid.New().String()

	// Cycle guard: a parent whose path already contains the new id would make
	// the node its own ancestor. Fresh UUIDs never trip this, but the
	// bookkeeping is cheap to verify.
	if slices.Contains(parentPath, id) {
		return nil, models.ErrCycle
	}

	query := `INSERT INTO ig_nodes
			(id, user_id, parent_id, kind, title, depth, path, keywords,
			 status, approval_status, url, snippet, search_query)
		VALUES ($1, $2, $3, 'content', $4, $5, $6, $7, 'active', 'pending', $8, $9, $10)
		RETURNING ` + nodeColumns

	row := tx.QueryRow(ctx, query,
		id, userID, req.ParentID, req.Title, parentDepth+1,
		append(parentPath, id), keywordsOrEmpty(req.Keywords),
		req.URL, req.Snippet, req.SearchQuery,
	)

	n, err := scanNode(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("scanning created content node: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing create content node: %w", err)
	}

	s.notify("ig_nodes", "insert", userID)

	return n, nil
}

// CreateCombination inserts a root-level combination node from a synthesized
// suggestion. Combinations are auto-approved.
func (s *NodeStore) CreateCombination(
	ctx context.Context,
	userID string,
	suggestion models.CombinationSuggestion,
) (*models.Node, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("creating combination node: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	id := uuid.New().String()

	var embedding any
	if len(suggestion.Embedding) > 0 {
		embedding = formatEmbedding(suggestion.Embedding)
	}

	query := `INSERT INTO ig_nodes
			(id, user_id, parent_id, kind, title, depth, path, keywords,
			 status, approval_status, source_node_ids, combination_type,
			 confidence_score, potential_queries, embedding)
		VALUES ($1, $2, NULL, 'combination', $3, 0, ARRAY[$1], $4,
			'active', 'approved', $5, $6, $7, $8, $9::vector)
		RETURNING ` + nodeColumns

	row := tx.QueryRow(ctx, query,
		id, userID, suggestion.Title, keywordsOrEmpty(suggestion.Keywords),
		suggestion.SourceNodeIDs, string(suggestion.CombinationType),
		suggestion.ConfidenceScore, keywordsOrEmpty(suggestion.PotentialQueries),
		embedding,
	)

	n, err := scanNode(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("scanning created combination node: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing create combination node: %w", err)
	}

	s.notify("ig_nodes", "insert", userID)

	return n, nil
}

// GetNode returns a single node by ID.
func (s *NodeStore) GetNode(ctx context.Context, userID, nodeID string) (*models.Node, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("getting node: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // read-only tx, rollback is cleanup.

	query := `SELECT ` + nodeColumns + ` FROM ig_nodes
		WHERE user_id = current_setting('app.user_id')::uuid AND id = $1`

	n, err := scanNode(tx.QueryRow(ctx, query, nodeID).Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNodeNotFound
		}

		return nil, fmt.Errorf("scanning node: %w", err)
	}

	return n, nil
}

// GetTitles resolves node IDs to titles. Missing IDs are silently absent from
// the result; combination sources may reference archived nodes.
func (s *NodeStore) GetTitles(ctx context.Context, userID string, nodeIDs []string) (map[string]string, error) {
	if len(nodeIDs) == 0 {
		return map[string]string{}, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolving node titles: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // read-only tx, rollback is cleanup.

	rows, err := tx.Query(ctx,
		`SELECT id, title FROM ig_nodes
		 WHERE user_id = current_setting('app.user_id')::uuid AND id = ANY($1)`,
		nodeIDs)
	if err != nil {
		return nil, fmt.Errorf("querying node titles: %w", err)
	}
	defer rows.Close()

	titles := make(map[string]string, len(nodeIDs))

	for rows.Next() {
		var id, title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("scanning node title: %w", err)
		}

		titles[id] = title
	}

	return titles, rows.Err()
}

// keywordsOrEmpty normalizes a nil slice to an empty one so text[] columns
// stay NOT NULL.
func keywordsOrEmpty(ks []string) []string {
	if ks == nil {
		return []string{}
	}

	return ks
}
