// Package domain defines the canonical service interfaces shared across API
// layers. Consumers should depend on these interfaces rather than
// re-declaring equivalent ones.
package domain

import (
	"context"

	"github.com/forayhq/foray/internal/models"
)

// GraphService defines interest-graph operations.
type GraphService interface {
	CreateInterest(ctx context.Context, userID string, req models.CreateInterestRequest) (*models.Node, error)
	CreateContent(ctx context.Context, userID string, req models.CreateContentRequest) (*models.Node, error)
	CreateCombination(ctx context.Context, userID string, suggestion models.CombinationSuggestion) (*models.Node, error)
	ListInterests(ctx context.Context, userID string) ([]models.Node, error)
	GetNode(ctx context.Context, userID, nodeID string) (*models.Node, error)
	ListNodes(ctx context.Context, userID string, filter models.SelectionFilter, limit, offset int) ([]models.Node, bool, error)
	SelectForDiscovery(ctx context.Context, userID string, filter models.SelectionFilter, count int) (*models.SelectionResult, error)
	RemoveInterest(ctx context.Context, userID, name string) (*models.RemovalResult, error)
	Stats(ctx context.Context, userID string) (*models.GraphStats, error)
}

// FeedbackService applies user reactions and cascades their effect to
// descendants.
type FeedbackService interface {
	ApplyReaction(ctx context.Context, userID string, req models.FeedbackRequest) (*models.FeedbackResult, error)
}

// DiscoveryService drives discovery cycles. This is the boundary that
// converts gateway failures into degraded-but-successful results.
type DiscoveryService interface {
	RunDiscoveryCycle(ctx context.Context, userID string) (*models.DiscoveryResult, error)
	SubmitFeedback(ctx context.Context, userID string, req models.FeedbackRequest) (*models.FeedbackResult, error)
}

// CombinationService proposes composite interests from pairs of existing ones.
type CombinationService interface {
	Synthesize(ctx context.Context, userID string, maxResults int, minConfidence float64) ([]models.CombinationSuggestion, error)
}

// Embedder produces a fixed-length vector for a text. Implementations wrap
// an external embedding model.
type Embedder interface {
	Generate(ctx context.Context, text string) ([]float32, error)
}

// WebSearcher issues a query against an external web search provider.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error)
}

// TextGenerator produces text from a prompt. An empty result means "use the
// deterministic fallback", not an error.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AuditService defines audit log query and maintenance operations.
type AuditService interface {
	Auditor
	QueryAudit(ctx context.Context, userID string, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error)
	PurgeOldEntries(ctx context.Context, userID string, retentionDays int) (int, error)
}

// Auditor is the minimal interface for recording audit entries.
// Used by services and handlers for fire-and-forget audit logging.
type Auditor interface {
	RecordAudit(ctx context.Context, userID, action, entityType, entityID, actor string, detail map[string]any) error
}
