package api

import (
	"context"

	"github.com/forayhq/foray/internal/domain"
	"github.com/forayhq/foray/internal/models"
)

// Handlers depend on the canonical domain interfaces; the aliases keep
// handler signatures local to this package.
type (
	// GraphService serves interest-graph operations.
	GraphService = domain.GraphService
	// DiscoveryService drives discovery cycles and guarded feedback.
	DiscoveryService = domain.DiscoveryService
	// CombinationService proposes composite interests.
	CombinationService = domain.CombinationService
	// Auditor records audit entries.
	Auditor = domain.Auditor
)

// AuditRepository defines audit log operations used by AuditHandler.
type AuditRepository interface {
	Auditor
	QueryAudit(ctx context.Context, userID string, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error)
	PurgeOldEntries(ctx context.Context, userID string, retentionDays int) (int, error)
}

// AdminService lists nodes awaiting embedding backfill.
type AdminService interface {
	ListNodesWithoutEmbeddings(ctx context.Context, userID string, limit int) ([]models.Node, error)
}
