// Package service provides business logic between API handlers and data stores.
package service

import "github.com/forayhq/foray/internal/domain"

// Auditor is an alias for the canonical domain.Auditor interface.
type Auditor = domain.Auditor

// AuditEnqueuer enqueues audit entries for asynchronous recording.
type AuditEnqueuer interface {
	Enqueue(job *AuditJob)
}

// auditAsync enqueues an audit entry via the AuditWorker (best-effort, non-blocking).
func auditAsync(w AuditEnqueuer, userID, action, entityType, entityID string, detail map[string]any) {
	if w == nil {
		return
	}

	w.Enqueue(&AuditJob{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
	})
}
