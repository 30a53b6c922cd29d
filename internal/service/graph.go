package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/forayhq/foray/internal/domain"
	"github.com/forayhq/foray/internal/metrics"
	"github.com/forayhq/foray/internal/models"
	"github.com/forayhq/foray/internal/scoring"
	"github.com/forayhq/foray/internal/vectormath"
)

// Orphans whose closest remaining interest scores below this are swept.
const semanticSweepThreshold = 0.3

// NodeRepo is the node-store surface the graph service depends on.
type NodeRepo interface {
	CreateInterest(ctx context.Context, userID string, req models.CreateInterestRequest) (*models.Node, bool, error)
	CreateContent(ctx context.Context, userID string, req models.CreateContentRequest) (*models.Node, error)
	CreateCombination(ctx context.Context, userID string, suggestion models.CombinationSuggestion) (*models.Node, error)
	GetNode(ctx context.Context, userID, nodeID string) (*models.Node, error)
	GetTitles(ctx context.Context, userID string, nodeIDs []string) (map[string]string, error)
	ListNodes(ctx context.Context, userID string, filter models.SelectionFilter, limit, offset int) ([]models.Node, bool, error)
	ListInterests(ctx context.Context, userID string) ([]models.Node, error)
	ListChildren(ctx context.Context, userID, parentID string) ([]models.Node, error)
	ListActiveCombinations(ctx context.Context, userID string) ([]models.Node, error)
	ListRootOrphans(ctx context.Context, userID string) ([]models.Node, error)
}

// ArchiveRepo is the archival surface used by interest removal.
type ArchiveRepo interface {
	FindInterestByTitle(ctx context.Context, userID, title string) (*models.Node, error)
	ArchiveNodes(ctx context.Context, userID string, nodeIDs []string) ([]string, error)
	PromoteToRoot(ctx context.Context, userID string, nodeIDs []string) ([]string, error)
}

// SelectionRepo records the side effects of picking nodes for discovery.
type SelectionRepo interface {
	MarkSelected(ctx context.Context, userID string, nodeIDs []string) error
}

// StatsRepo computes read-only graph statistics.
type StatsRepo interface {
	GraphStats(ctx context.Context, userID string) (*models.GraphStats, error)
}

// EmbedEnqueuer queues background embedding generation for a node.
type EmbedEnqueuer interface {
	Enqueue(job EmbedJob)
}

// GraphService implements interest-graph operations on top of the stores.
type GraphService struct {
	nodes     NodeRepo
	archive   ArchiveRepo
	selection SelectionRepo
	stats     StatsRepo
	embedder  domain.Embedder
	embeds    EmbedEnqueuer
	audit     AuditEnqueuer
	log       *logrus.Logger
}

var _ domain.GraphService = (*GraphService)(nil)

// NewGraphService creates a GraphService. embeds and audit may be nil, which
// disables background embedding and audit logging respectively.
func NewGraphService(
	nodes NodeRepo,
	archive ArchiveRepo,
	selection SelectionRepo,
	stats StatsRepo,
	embedder domain.Embedder,
	embeds EmbedEnqueuer,
	audit AuditEnqueuer,
	log *logrus.Logger,
) *GraphService {
	return &GraphService{
		nodes:     nodes,
		archive:   archive,
		selection: selection,
		stats:     stats,
		embedder:  embedder,
		embeds:    embeds,
		audit:     audit,
		log:       log,
	}
}

// CreateInterest declares an interest. Creation is idempotent by title: if an
// active interest with the same name already exists it is returned as-is.
func (s *GraphService) CreateInterest(ctx context.Context, userID string, req models.CreateInterestRequest) (*models.Node, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	node, created, err := s.nodes.CreateInterest(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	if created {
		s.enqueueEmbedding(userID, node)
		auditAsync(s.audit, userID, "interest.create", "node", node.ID, map[string]any{
			"title": node.Title,
		})
	}

	return node, nil
}

// CreateContent attaches a discovered result to a parent node.
func (s *GraphService) CreateContent(ctx context.Context, userID string, req models.CreateContentRequest) (*models.Node, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	node, err := s.nodes.CreateContent(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	s.enqueueEmbedding(userID, node)
	auditAsync(s.audit, userID, "content.create", "node", node.ID, map[string]any{
		"parent_id": req.ParentID,
		"title":     node.Title,
	})

	return node, nil
}

// CreateCombination materializes a synthesizer suggestion as a root-level,
// auto-approved combination node.
func (s *GraphService) CreateCombination(ctx context.Context, userID string, suggestion models.CombinationSuggestion) (*models.Node, error) {
	if err := suggestion.Validate(); err != nil {
		return nil, err
	}

	node, err := s.nodes.CreateCombination(ctx, userID, suggestion)
	if err != nil {
		return nil, err
	}

	if len(node.Embedding) == 0 {
		s.enqueueEmbedding(userID, node)
	}

	auditAsync(s.audit, userID, "combination.create", "node", node.ID, map[string]any{
		"title":            node.Title,
		"combination_type": string(node.CombinationType),
	})

	return node, nil
}

// ListInterests returns the user's active interests.
func (s *GraphService) ListInterests(ctx context.Context, userID string) ([]models.Node, error) {
	return s.nodes.ListInterests(ctx, userID)
}

// GetNode returns a single node by id.
func (s *GraphService) GetNode(ctx context.Context, userID, nodeID string) (*models.Node, error) {
	return s.nodes.GetNode(ctx, userID, nodeID)
}

// ListNodes returns a filtered page of nodes plus a has-more flag.
func (s *GraphService) ListNodes(ctx context.Context, userID string, filter models.SelectionFilter, limit, offset int) ([]models.Node, bool, error) {
	return s.nodes.ListNodes(ctx, userID, filter, limit, offset)
}

// SelectForDiscovery scores the filtered candidate set against the user's
// active interests and returns the top count nodes. Selected nodes get their
// selection counter and last-used timestamp bumped.
func (s *GraphService) SelectForDiscovery(ctx context.Context, userID string, filter models.SelectionFilter, count int) (*models.SelectionResult, error) {
	candidates, _, err := s.nodes.ListNodes(ctx, userID, filter, 1000, 0)
	if err != nil {
		return nil, fmt.Errorf("listing selection candidates: %w", err)
	}

	interests, err := s.nodes.ListInterests(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing interests for scoring: %w", err)
	}

	selected := scoring.SelectTopK(candidates, interests, count, time.Now())

	if len(selected) > 0 {
		ids := make([]string, len(selected))
		for i := range selected {
			ids[i] = selected[i].ID
		}

		if err := s.selection.MarkSelected(ctx, userID, ids); err != nil {
			// Selection bookkeeping is advisory; the picked set still stands.
			s.log.WithError(err).WithField("user_id", userID).Warn("failed to mark selected nodes")
		}
	}

	return &models.SelectionResult{
		Selected:        selected,
		TotalCandidates: len(candidates),
	}, nil
}

// RemoveInterest retires an interest in three best-effort phases. A phase
// failure is recorded in the result and does not roll back earlier phases.
func (s *GraphService) RemoveInterest(ctx context.Context, userID, name string) (*models.RemovalResult, error) {
	interest, err := s.archive.FindInterestByTitle(ctx, userID, name)
	if err != nil {
		return nil, err
	}

	result := &models.RemovalResult{
		Interest:    interest.Title,
		PhaseIDs:    make(map[models.RemovalPhase][]string),
		PhaseErrors: make(map[models.RemovalPhase]string),
	}

	phases := []struct {
		phase models.RemovalPhase
		run   func(context.Context) ([]string, error)
	}{
		{models.PhaseRemoveCore, func(ctx context.Context) ([]string, error) {
			return s.removeCore(ctx, userID, interest)
		}},
		{models.PhaseCleanupCombinations, func(ctx context.Context) ([]string, error) {
			return s.cleanupCombinations(ctx, userID, interest.Title)
		}},
		{models.PhaseSemanticSweep, func(ctx context.Context) ([]string, error) {
			return s.semanticSweep(ctx, userID)
		}},
	}

	for _, p := range phases {
		ids, err := p.run(ctx)
		if err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"user_id": userID,
				"phase":   string(p.phase),
			}).Warn("interest removal phase failed")
			result.PhaseErrors[p.phase] = err.Error()

			continue
		}

		result.PhaseIDs[p.phase] = ids
		result.AffectedIDs = append(result.AffectedIDs, ids...)
	}

	if len(result.PhaseErrors) == 0 {
		result.PhaseErrors = nil
	}

	metrics.InterestRemovals.Inc()
	auditAsync(s.audit, userID, "interest.remove", "node", interest.ID, map[string]any{
		"title":    interest.Title,
		"affected": len(result.AffectedIDs),
	})

	return result, nil
}

// removeCore archives the interest and its direct children, then promotes
// grandchildren to orphaned roots so they survive for the semantic sweep.
func (s *GraphService) removeCore(ctx context.Context, userID string, interest *models.Node) ([]string, error) {
	children, err := s.nodes.ListChildren(ctx, userID, interest.ID)
	if err != nil {
		return nil, fmt.Errorf("listing children: %w", err)
	}

	var grandchildIDs []string

	toArchive := []string{interest.ID}
	for _, child := range children {
		toArchive = append(toArchive, child.ID)

		grandchildren, err := s.nodes.ListChildren(ctx, userID, child.ID)
		if err != nil {
			return nil, fmt.Errorf("listing grandchildren of %s: %w", child.ID, err)
		}

		for _, gc := range grandchildren {
			grandchildIDs = append(grandchildIDs, gc.ID)
		}
	}

	affected, err := s.archive.ArchiveNodes(ctx, userID, toArchive)
	if err != nil {
		return nil, fmt.Errorf("archiving interest subtree: %w", err)
	}

	if len(grandchildIDs) > 0 {
		promoted, err := s.archive.PromoteToRoot(ctx, userID, grandchildIDs)
		if err != nil {
			return affected, fmt.Errorf("promoting grandchildren: %w", err)
		}

		affected = append(affected, promoted...)
	}

	return affected, nil
}

// cleanupCombinations archives combinations that reference the removed
// interest by title, either in their own title or in a source node's title.
func (s *GraphService) cleanupCombinations(ctx context.Context, userID, name string) ([]string, error) {
	combos, err := s.nodes.ListActiveCombinations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing combinations: %w", err)
	}

	lowered := strings.ToLower(name)

	var toArchive []string

	for _, combo := range combos {
		if strings.Contains(strings.ToLower(combo.Title), lowered) {
			toArchive = append(toArchive, combo.ID)

			continue
		}

		titles, err := s.nodes.GetTitles(ctx, userID, combo.SourceNodeIDs)
		if err != nil {
			return nil, fmt.Errorf("resolving source titles for %s: %w", combo.ID, err)
		}

		for _, title := range titles {
			if strings.Contains(strings.ToLower(title), lowered) {
				toArchive = append(toArchive, combo.ID)

				break
			}
		}
	}

	if len(toArchive) == 0 {
		return nil, nil
	}

	return s.archive.ArchiveNodes(ctx, userID, toArchive)
}

// semanticSweep archives root orphans that are no longer close to any
// remaining interest. Orphans without a stored embedding are embedded on the
// fly; an embedding failure skips the orphan rather than failing the sweep.
func (s *GraphService) semanticSweep(ctx context.Context, userID string) ([]string, error) {
	interests, err := s.nodes.ListInterests(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing remaining interests: %w", err)
	}

	var anchors [][]float32
	for _, interest := range interests {
		if len(interest.Embedding) > 0 {
			anchors = append(anchors, interest.Embedding)
		}
	}

	if len(anchors) == 0 {
		// Nothing to compare against; sweeping everything would be wrong.
		return nil, nil
	}

	orphans, err := s.nodes.ListRootOrphans(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing root orphans: %w", err)
	}

	var toArchive []string

	for i := range orphans {
		orphan := &orphans[i]

		embedding := orphan.Embedding
		if len(embedding) == 0 {
			if s.embedder == nil {
				continue
			}

			embedding, err = s.embedder.Generate(ctx, orphan.EmbeddingText())
			if err != nil {
				s.log.WithError(err).WithField("node_id", orphan.ID).Warn("skipping orphan in semantic sweep")

				continue
			}
		}

		best, err := vectormath.MaxSimilarity(embedding, anchors)
		if err != nil {
			s.log.WithError(err).WithField("node_id", orphan.ID).Warn("skipping orphan in semantic sweep")

			continue
		}

		if best < semanticSweepThreshold {
			toArchive = append(toArchive, orphan.ID)
		}
	}

	if len(toArchive) == 0 {
		return nil, nil
	}

	return s.archive.ArchiveNodes(ctx, userID, toArchive)
}

// Stats returns read-only aggregate statistics for the user's graph.
func (s *GraphService) Stats(ctx context.Context, userID string) (*models.GraphStats, error) {
	return s.stats.GraphStats(ctx, userID)
}

func (s *GraphService) enqueueEmbedding(userID string, node *models.Node) {
	if s.embeds == nil {
		return
	}

	s.embeds.Enqueue(EmbedJob{
		UserID: userID,
		NodeID: node.ID,
		Text:   node.EmbeddingText(),
	})
}
