package service

import (
	"context"
	"sync"

	"github.com/forayhq/foray/internal/models"
	"github.com/forayhq/foray/internal/store"
)

// mockNodeRepo records calls and returns configured responses.
type mockNodeRepo struct {
	mu    sync.Mutex
	calls []string

	createInterest    func(ctx context.Context, userID string, req models.CreateInterestRequest) (*models.Node, bool, error)
	createContent     func(ctx context.Context, userID string, req models.CreateContentRequest) (*models.Node, error)
	createCombination func(ctx context.Context, userID string, suggestion models.CombinationSuggestion) (*models.Node, error)
	getNode           func(ctx context.Context, userID, nodeID string) (*models.Node, error)
	getTitles         func(ctx context.Context, userID string, nodeIDs []string) (map[string]string, error)
	listNodes         func(ctx context.Context, userID string, filter models.SelectionFilter, limit, offset int) ([]models.Node, bool, error)
	listInterests     func(ctx context.Context, userID string) ([]models.Node, error)
	listChildren      func(ctx context.Context, userID, parentID string) ([]models.Node, error)
	listCombinations  func(ctx context.Context, userID string) ([]models.Node, error)
	listRootOrphans   func(ctx context.Context, userID string) ([]models.Node, error)
}

func (m *mockNodeRepo) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockNodeRepo) CreateInterest(ctx context.Context, userID string, req models.CreateInterestRequest) (*models.Node, bool, error) {
	m.record("CreateInterest")
	return m.createInterest(ctx, userID, req)
}

func (m *mockNodeRepo) CreateContent(ctx context.Context, userID string, req models.CreateContentRequest) (*models.Node, error) {
	m.record("CreateContent")
	return m.createContent(ctx, userID, req)
}

func (m *mockNodeRepo) CreateCombination(ctx context.Context, userID string, suggestion models.CombinationSuggestion) (*models.Node, error) {
	m.record("CreateCombination")
	return m.createCombination(ctx, userID, suggestion)
}

func (m *mockNodeRepo) GetNode(ctx context.Context, userID, nodeID string) (*models.Node, error) {
	m.record("GetNode")
	return m.getNode(ctx, userID, nodeID)
}

func (m *mockNodeRepo) GetTitles(ctx context.Context, userID string, nodeIDs []string) (map[string]string, error) {
	m.record("GetTitles")
	if m.getTitles == nil {
		return map[string]string{}, nil
	}
	return m.getTitles(ctx, userID, nodeIDs)
}

func (m *mockNodeRepo) ListNodes(ctx context.Context, userID string, filter models.SelectionFilter, limit, offset int) ([]models.Node, bool, error) {
	m.record("ListNodes")
	return m.listNodes(ctx, userID, filter, limit, offset)
}

func (m *mockNodeRepo) ListInterests(ctx context.Context, userID string) ([]models.Node, error) {
	m.record("ListInterests")
	return m.listInterests(ctx, userID)
}

func (m *mockNodeRepo) ListChildren(ctx context.Context, userID, parentID string) ([]models.Node, error) {
	m.record("ListChildren")
	if m.listChildren == nil {
		return nil, nil
	}
	return m.listChildren(ctx, userID, parentID)
}

func (m *mockNodeRepo) ListActiveCombinations(ctx context.Context, userID string) ([]models.Node, error) {
	m.record("ListActiveCombinations")
	if m.listCombinations == nil {
		return nil, nil
	}
	return m.listCombinations(ctx, userID)
}

func (m *mockNodeRepo) ListRootOrphans(ctx context.Context, userID string) ([]models.Node, error) {
	m.record("ListRootOrphans")
	if m.listRootOrphans == nil {
		return nil, nil
	}
	return m.listRootOrphans(ctx, userID)
}

// mockArchiveRepo records calls and returns configured responses.
type mockArchiveRepo struct {
	mu    sync.Mutex
	calls []string

	findInterestByTitle func(ctx context.Context, userID, title string) (*models.Node, error)
	archiveNodes        func(ctx context.Context, userID string, nodeIDs []string) ([]string, error)
	promoteToRoot       func(ctx context.Context, userID string, nodeIDs []string) ([]string, error)
}

func (m *mockArchiveRepo) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockArchiveRepo) FindInterestByTitle(ctx context.Context, userID, title string) (*models.Node, error) {
	m.record("FindInterestByTitle")
	return m.findInterestByTitle(ctx, userID, title)
}

func (m *mockArchiveRepo) ArchiveNodes(ctx context.Context, userID string, nodeIDs []string) ([]string, error) {
	m.record("ArchiveNodes")
	if m.archiveNodes == nil {
		return nodeIDs, nil
	}
	return m.archiveNodes(ctx, userID, nodeIDs)
}

func (m *mockArchiveRepo) PromoteToRoot(ctx context.Context, userID string, nodeIDs []string) ([]string, error) {
	m.record("PromoteToRoot")
	if m.promoteToRoot == nil {
		return nodeIDs, nil
	}
	return m.promoteToRoot(ctx, userID, nodeIDs)
}

// mockSelectionRepo records MarkSelected calls.
type mockSelectionRepo struct {
	mu       sync.Mutex
	selected [][]string

	err error
}

func (m *mockSelectionRepo) MarkSelected(ctx context.Context, userID string, nodeIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = append(m.selected, nodeIDs)
	return m.err
}

// mockReactionRepo records reaction and cascade calls.
type mockReactionRepo struct {
	mu       sync.Mutex
	cascades []store.CascadeIncrement

	applyReaction func(ctx context.Context, userID, nodeID string, positive bool) (*models.Node, error)
	cascadeErr    error
}

func (m *mockReactionRepo) ApplyReaction(ctx context.Context, userID, nodeID string, positive bool) (*models.Node, error) {
	return m.applyReaction(ctx, userID, nodeID, positive)
}

func (m *mockReactionRepo) ApplyCascade(ctx context.Context, userID string, positive bool, increments []store.CascadeIncrement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cascades = append(m.cascades, increments...)
	return m.cascadeErr
}

func (m *mockReactionRepo) getCascades() []store.CascadeIncrement {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]store.CascadeIncrement, len(m.cascades))
	copy(cp, m.cascades)
	return cp
}

// mockDescendantLister returns a configured descendant set.
type mockDescendantLister struct {
	listDescendants func(ctx context.Context, userID, nodeID string, maxDepthDelta int) ([]models.Node, error)
}

func (m *mockDescendantLister) ListDescendants(ctx context.Context, userID, nodeID string, maxDepthDelta int) ([]models.Node, error) {
	if m.listDescendants == nil {
		return nil, nil
	}
	return m.listDescendants(ctx, userID, nodeID, maxDepthDelta)
}

// mockKeywordRepo records negative-keyword writes.
type mockKeywordRepo struct {
	mu    sync.Mutex
	added [][]string

	keywords []string
	err      error
}

func (m *mockKeywordRepo) AddNegativeKeywords(ctx context.Context, userID string, keywords []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.added = append(m.added, keywords)
	return m.err
}

func (m *mockKeywordRepo) ListNegativeKeywords(ctx context.Context, userID string) ([]string, error) {
	return m.keywords, m.err
}

// mockContentCreator records content-node creation calls.
type mockContentCreator struct {
	mu   sync.Mutex
	reqs []models.CreateContentRequest

	createContent func(ctx context.Context, userID string, req models.CreateContentRequest) (*models.Node, error)
}

func (m *mockContentCreator) CreateContent(ctx context.Context, userID string, req models.CreateContentRequest) (*models.Node, error) {
	m.mu.Lock()
	m.reqs = append(m.reqs, req)
	m.mu.Unlock()
	return m.createContent(ctx, userID, req)
}

// mockSelector returns a configured selection result.
type mockSelector struct {
	selectForDiscovery func(ctx context.Context, userID string, filter models.SelectionFilter, count int) (*models.SelectionResult, error)
}

func (m *mockSelector) SelectForDiscovery(ctx context.Context, userID string, filter models.SelectionFilter, count int) (*models.SelectionResult, error) {
	return m.selectForDiscovery(ctx, userID, filter, count)
}

// mockSearcher records queries and returns configured hits.
type mockSearcher struct {
	mu      sync.Mutex
	queries []string

	search func(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error)
}

func (m *mockSearcher) Search(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()
	return m.search(ctx, query, maxResults)
}

func (m *mockSearcher) getQueries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]string, len(m.queries))
	copy(cp, m.queries)
	return cp
}

// mockTextGen returns a fixed generation result.
type mockTextGen struct {
	reply string
	err   error
}

func (m *mockTextGen) Generate(ctx context.Context, prompt string) (string, error) {
	return m.reply, m.err
}

// mockEmbedder returns a fixed embedding.
type mockEmbedder struct {
	embedding []float32
	err       error
}

func (m *mockEmbedder) Generate(ctx context.Context, text string) ([]float32, error) {
	return m.embedding, m.err
}

// mockAuditor records audit calls.
type mockAuditor struct {
	mu    sync.Mutex
	calls []AuditJob

	err error
}

func (m *mockAuditor) RecordAudit(ctx context.Context, userID, action, entityType, entityID, actor string, detail map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, AuditJob{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Actor:      actor,
		Detail:     detail,
	})
	return m.err
}

func (m *mockAuditor) getCalls() []AuditJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]AuditJob, len(m.calls))
	copy(cp, m.calls)
	return cp
}

// mockEmbedEnqueuer records enqueue calls.
type mockEmbedEnqueuer struct {
	mu   sync.Mutex
	jobs []EmbedJob
}

func (m *mockEmbedEnqueuer) Enqueue(job EmbedJob) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
}

func (m *mockEmbedEnqueuer) getJobs() []EmbedJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]EmbedJob, len(m.jobs))
	copy(cp, m.jobs)
	return cp
}
