// Package models defines data types for the interest graph.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NodeKind discriminates the three node variants.
type NodeKind string

// Node kinds.
const (
	KindInterest    NodeKind = "interest"
	KindContent     NodeKind = "content"
	KindCombination NodeKind = "combination"
)

// NodeStatus is the lifecycle state of a node. Archival is the only deletion
// mechanism; nothing is physically removed.
type NodeStatus string

// Node statuses.
const (
	StatusActive   NodeStatus = "active"
	StatusArchived NodeStatus = "archived"
	StatusHidden   NodeStatus = "hidden"
)

// ApprovalStatus tracks whether a node has received explicit user judgement.
type ApprovalStatus string

// Approval statuses. Content nodes start pending; interests and combinations
// are auto-approved at creation.
const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// ReactionPrior seeds both reaction counters at node creation. Counters never
// drop below this value, so quality starts at a neutral 0.5 instead of
// overcommitting to the first reaction.
const ReactionPrior = 1.0

// Node is a vertex in a user's interest graph. Kind-specific fields are only
// populated for the matching kind.
type Node struct {
	ID       string    `json:"id"`
	UserID   uuid.UUID `json:"-"`
	ParentID *string   `json:"parent_id,omitempty"`
	Kind     NodeKind  `json:"kind"`
	Title    string    `json:"title"`
	Depth    int       `json:"depth"`
	Path     []string  `json:"path"`

	// Reaction counters are fractional: direct reactions add 1.0, cascaded
	// reactions add decayed increments rounded to 2 decimals.
	Positive float64 `json:"positive_reactions"`
	Negative float64 `json:"negative_reactions"`

	// QualityScore is always positive/(positive+negative), recomputed by the
	// store on every counter change and never mutated directly.
	QualityScore float64 `json:"quality_score"`

	TimesSelected int       `json:"times_selected"`
	Keywords      []string  `json:"keywords,omitempty"`
	Embedding     []float32 `json:"embedding,omitempty"`

	Status         NodeStatus     `json:"status"`
	ApprovalStatus ApprovalStatus `json:"approval_status"`

	// Content-only fields.
	URL         string `json:"url,omitempty"`
	Snippet     string `json:"snippet,omitempty"`
	SearchQuery string `json:"search_query,omitempty"`

	// Combination-only fields.
	SourceNodeIDs    []string        `json:"source_node_ids,omitempty"`
	CombinationType  CombinationType `json:"combination_type,omitempty"`
	ConfidenceScore  float64         `json:"confidence_score,omitempty"`
	PotentialQueries []string        `json:"potential_queries,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// IsRoot reports whether the node sits at the top of its tree.
func (n *Node) IsRoot() bool { return n.ParentID == nil }

// EmbeddingText returns the text embedded for this node: title plus keywords,
// plus the snippet for content nodes.
func (n *Node) EmbeddingText() string {
	parts := []string{n.Title}
	if len(n.Keywords) > 0 {
		parts = append(parts, strings.Join(n.Keywords, " "))
	}

	if n.Snippet != "" {
		parts = append(parts, n.Snippet)
	}

	return strings.Join(parts, " ")
}

// ScoredNode pairs a Node with its computed selection score.
type ScoredNode struct {
	Node
	Score float64 `json:"score"`
}

// CreateInterestRequest is the payload for declaring a user interest.
// Creation is idempotent by name: a duplicate returns the existing node.
type CreateInterestRequest struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords,omitempty"`
}

// Validate checks CreateInterestRequest fields.
func (r *CreateInterestRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return ErrMissingTitle
	}

	if len(r.Name) > 500 {
		return ErrFieldTooLong("name", 500)
	}

	return nil
}

// CreateContentRequest is the payload for attaching a discovered result to a
// parent node. Content nodes are only created for results that received
// positive feedback.
type CreateContentRequest struct {
	ParentID    string   `json:"parent_id"`
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Snippet     string   `json:"snippet"`
	SearchQuery string   `json:"search_query,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// Validate checks that all required content fields are present. Node creation
// fails fast on a malformed request; partially valid nodes are never created.
func (r *CreateContentRequest) Validate() error {
	if r.ParentID == "" {
		return ErrMissingParent
	}

	if strings.TrimSpace(r.Title) == "" {
		return ErrMissingTitle
	}

	if strings.TrimSpace(r.Snippet) == "" {
		return ErrMissingSnippet
	}

	if len(r.Title) > 2000 {
		return ErrFieldTooLong("title", 2000)
	}

	if len(r.URL) > 4000 {
		return ErrFieldTooLong("url", 4000)
	}

	return nil
}

// SelectionFilter narrows the candidate set before scoring.
type SelectionFilter struct {
	Kinds      []NodeKind
	Statuses   []NodeStatus
	Approvals  []ApprovalStatus
	MinQuality float64
	MaxDepth   int // 0 means unlimited
}

// SelectionResult is the outcome of one node-selection pass.
type SelectionResult struct {
	Selected        []ScoredNode `json:"selected"`
	TotalCandidates int          `json:"total_candidates"`
}

// GraphStats aggregates read-only statistics over a user's graph.
type GraphStats struct {
	Nodes              int            `json:"nodes"`
	ByKind             map[string]int `json:"by_kind"`
	ByStatus           map[string]int `json:"by_status"`
	MaxDepth           int            `json:"max_depth"`
	AvgQuality         float64        `json:"avg_quality"`
	TopNodes           []ScoredNode   `json:"top_nodes,omitempty"`
	RecentActivity     int            `json:"recent_activity"`
	EmbeddingsComplete int            `json:"embeddings_complete"`
	EmbeddingsPending  int            `json:"embeddings_pending"`
}

// RemovalPhase identifies one phase of the interest-removal state machine.
type RemovalPhase string

// Removal phases, executed in order. Each phase is best-effort: a failure
// does not roll back earlier phases.
const (
	PhaseRemoveCore          RemovalPhase = "remove_core"
	PhaseCleanupCombinations RemovalPhase = "cleanup_combinations"
	PhaseSemanticSweep       RemovalPhase = "semantic_sweep"
)

// RemovalResult reports what each phase of an interest removal touched.
type RemovalResult struct {
	Interest    string                    `json:"interest"`
	AffectedIDs []string                  `json:"affected_ids"`
	PhaseIDs    map[RemovalPhase][]string `json:"phase_ids"`
	PhaseErrors map[RemovalPhase]string   `json:"phase_errors,omitempty"`
}
