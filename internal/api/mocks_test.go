package api_test

import (
	"context"

	"github.com/forayhq/foray/internal/models"
)

// mockGraph implements api.GraphService for testing.
type mockGraph struct {
	createInterestFn    func(ctx context.Context, userID string, req models.CreateInterestRequest) (*models.Node, error)
	createContentFn     func(ctx context.Context, userID string, req models.CreateContentRequest) (*models.Node, error)
	createCombinationFn func(ctx context.Context, userID string, s models.CombinationSuggestion) (*models.Node, error)
	listInterestsFn     func(ctx context.Context, userID string) ([]models.Node, error)
	getNodeFn           func(ctx context.Context, userID, nodeID string) (*models.Node, error)
	listNodesFn         func(ctx context.Context, userID string, filter models.SelectionFilter, limit, offset int) ([]models.Node, bool, error)
	selectFn            func(ctx context.Context, userID string, filter models.SelectionFilter, count int) (*models.SelectionResult, error)
	removeInterestFn    func(ctx context.Context, userID, name string) (*models.RemovalResult, error)
	statsFn             func(ctx context.Context, userID string) (*models.GraphStats, error)
}

func (m *mockGraph) CreateInterest(ctx context.Context, userID string, req models.CreateInterestRequest) (*models.Node, error) {
	return m.createInterestFn(ctx, userID, req)
}

func (m *mockGraph) CreateContent(ctx context.Context, userID string, req models.CreateContentRequest) (*models.Node, error) {
	return m.createContentFn(ctx, userID, req)
}

func (m *mockGraph) CreateCombination(ctx context.Context, userID string, s models.CombinationSuggestion) (*models.Node, error) {
	return m.createCombinationFn(ctx, userID, s)
}

func (m *mockGraph) ListInterests(ctx context.Context, userID string) ([]models.Node, error) {
	return m.listInterestsFn(ctx, userID)
}

func (m *mockGraph) GetNode(ctx context.Context, userID, nodeID string) (*models.Node, error) {
	return m.getNodeFn(ctx, userID, nodeID)
}

func (m *mockGraph) ListNodes(ctx context.Context, userID string, filter models.SelectionFilter, limit, offset int) ([]models.Node, bool, error) {
	return m.listNodesFn(ctx, userID, filter, limit, offset)
}

func (m *mockGraph) SelectForDiscovery(ctx context.Context, userID string, filter models.SelectionFilter, count int) (*models.SelectionResult, error) {
	return m.selectFn(ctx, userID, filter, count)
}

func (m *mockGraph) RemoveInterest(ctx context.Context, userID, name string) (*models.RemovalResult, error) {
	return m.removeInterestFn(ctx, userID, name)
}

func (m *mockGraph) Stats(ctx context.Context, userID string) (*models.GraphStats, error) {
	return m.statsFn(ctx, userID)
}

// mockDiscovery implements api.DiscoveryService for testing.
type mockDiscovery struct {
	runFn      func(ctx context.Context, userID string) (*models.DiscoveryResult, error)
	feedbackFn func(ctx context.Context, userID string, req models.FeedbackRequest) (*models.FeedbackResult, error)
}

func (m *mockDiscovery) RunDiscoveryCycle(ctx context.Context, userID string) (*models.DiscoveryResult, error) {
	return m.runFn(ctx, userID)
}

func (m *mockDiscovery) SubmitFeedback(ctx context.Context, userID string, req models.FeedbackRequest) (*models.FeedbackResult, error) {
	return m.feedbackFn(ctx, userID, req)
}

// mockCombiner implements api.CombinationService for testing.
type mockCombiner struct {
	synthesizeFn func(ctx context.Context, userID string, maxResults int, minConfidence float64) ([]models.CombinationSuggestion, error)
}

func (m *mockCombiner) Synthesize(ctx context.Context, userID string, maxResults int, minConfidence float64) ([]models.CombinationSuggestion, error) {
	return m.synthesizeFn(ctx, userID, maxResults, minConfidence)
}

// mockAuditRepo implements api.AuditRepository for testing.
type mockAuditRepo struct {
	recordFn func(ctx context.Context, userID, action, entityType, entityID, actor string, detail map[string]any) error
	queryFn  func(ctx context.Context, userID string, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error)
	purgeFn  func(ctx context.Context, userID string, retentionDays int) (int, error)
}

func (m *mockAuditRepo) RecordAudit(ctx context.Context, userID, action, entityType, entityID, actor string, detail map[string]any) error {
	if m.recordFn == nil {
		return nil
	}

	return m.recordFn(ctx, userID, action, entityType, entityID, actor, detail)
}

func (m *mockAuditRepo) QueryAudit(ctx context.Context, userID string, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error) {
	return m.queryFn(ctx, userID, opts)
}

func (m *mockAuditRepo) PurgeOldEntries(ctx context.Context, userID string, retentionDays int) (int, error) {
	return m.purgeFn(ctx, userID, retentionDays)
}
