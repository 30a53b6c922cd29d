package models

import "strings"

// Reaction is a user's explicit judgement on a node or result.
type Reaction string

// Reactions.
const (
	ReactionPositive Reaction = "positive"
	ReactionNegative Reaction = "negative"
)

// SearchResult is one raw hit from the web search gateway.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Rank    int    `json:"rank"`
}

// RankedResult is a search result annotated by the orchestrator with the
// nodes that produced it and its content-quality score.
type RankedResult struct {
	SearchResult
	SourceNodeIDs []string `json:"source_node_ids"`
	Query         string   `json:"query"`
	ContentScore  float64  `json:"content_score"`
	FinalScore    float64  `json:"final_score"`
}

// DiscoveryResult is the outcome of one discovery cycle. Zero results is a
// valid, just unproductive, state rather than an error.
type DiscoveryResult struct {
	Results  []RankedResult `json:"results"`
	Selected []ScoredNode   `json:"selected_nodes"`
	Queries  []string       `json:"queries"`
}

// FeedbackRequest is the payload for submitting a reaction.
type FeedbackRequest struct {
	NodeID string `json:"node_id"`

	// ParentID optionally names the contributing interest node. Combined
	// with a positive reaction and keywords it triggers content-node
	// creation for a raw search result.
	ParentID string `json:"parent_id,omitempty"`

	Reaction Reaction `json:"reaction"`
	Keywords []string `json:"keywords,omitempty"`

	// Result fields, present when the reaction targets a raw search result
	// rather than an existing node.
	Title       string `json:"title,omitempty"`
	URL         string `json:"url,omitempty"`
	Snippet     string `json:"snippet,omitempty"`
	SearchQuery string `json:"search_query,omitempty"`

	// OperationID is a client-supplied retry-dedup token, recorded in the
	// audit trail. The server does not deduplicate on it.
	OperationID string `json:"operation_id,omitempty"`
}

// Validate checks FeedbackRequest fields.
func (r *FeedbackRequest) Validate() error {
	if r.Reaction != ReactionPositive && r.Reaction != ReactionNegative {
		return ErrBadReaction
	}

	if r.NodeID == "" && r.ParentID == "" {
		return ErrMissingID
	}

	if r.NodeID == "" && strings.TrimSpace(r.Snippet) == "" {
		// A raw result needs enough substance to become a content node.
		return ErrMissingSnippet
	}

	return nil
}

// FeedbackResult reports which nodes a reaction touched, target first.
type FeedbackResult struct {
	NodeID      string   `json:"node_id"`
	AffectedIDs []string `json:"affected_ids"`
	Cascaded    int      `json:"cascaded"`
}
