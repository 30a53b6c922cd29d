package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/forayhq/foray/internal/domain"
	"github.com/forayhq/foray/internal/metrics"
	"github.com/forayhq/foray/internal/models"
)

// Discovery cycle configuration.
const (
	selectionCount    = 3
	selectionMinQual  = 0.3
	maxQueries        = 3
	resultsPerQuery   = 10
	negKeywordPenalty = 0.5
	contentScoreFloor = 0.05
)

// NegativeKeywordLister returns the user's accumulated negative keywords.
type NegativeKeywordLister interface {
	ListNegativeKeywords(ctx context.Context, userID string) ([]string, error)
}

// NodeSelector picks nodes for a discovery cycle. Satisfied by GraphService.
type NodeSelector interface {
	SelectForDiscovery(ctx context.Context, userID string, filter models.SelectionFilter, count int) (*models.SelectionResult, error)
}

// DiscoveryService drives discovery cycles: select nodes, build queries,
// fan out searches, rank results. Gateway failures degrade the cycle, they
// never fail it.
type DiscoveryService struct {
	selector NodeSelector
	feedback domain.FeedbackService
	searcher domain.WebSearcher
	textgen  domain.TextGenerator
	keywords NegativeKeywordLister
	locks    *userLocks
	audit    AuditEnqueuer
	log      *logrus.Logger
}

var _ domain.DiscoveryService = (*DiscoveryService)(nil)

// NewDiscoveryService creates a DiscoveryService. textgen may be nil, which
// forces the deterministic query fallback.
func NewDiscoveryService(
	selector NodeSelector,
	feedback domain.FeedbackService,
	searcher domain.WebSearcher,
	textgen domain.TextGenerator,
	keywords NegativeKeywordLister,
	audit AuditEnqueuer,
	log *logrus.Logger,
) *DiscoveryService {
	return &DiscoveryService{
		selector: selector,
		feedback: feedback,
		searcher: searcher,
		textgen:  textgen,
		keywords: keywords,
		locks:    newUserLocks(),
		audit:    audit,
		log:      log,
	}
}

// searchQuery pairs a query string with the nodes that produced it.
type searchQuery struct {
	query   string
	nodeIDs []string
}

// RunDiscoveryCycle runs one discovery cycle for the user. Cycles for the
// same user are mutually exclusive; concurrent callers queue up. An empty
// graph yields an empty result, not an error.
func (s *DiscoveryService) RunDiscoveryCycle(ctx context.Context, userID string) (*models.DiscoveryResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	filter := models.SelectionFilter{
		Kinds:      []models.NodeKind{models.KindInterest, models.KindCombination},
		Statuses:   []models.NodeStatus{models.StatusActive},
		Approvals:  []models.ApprovalStatus{models.ApprovalApproved},
		MinQuality: selectionMinQual,
	}

	selection, err := s.selector.SelectForDiscovery(ctx, userID, filter, selectionCount)
	if err != nil {
		return nil, fmt.Errorf("selecting discovery nodes: %w", err)
	}

	if len(selection.Selected) == 0 {
		return &models.DiscoveryResult{
			Results:  []models.RankedResult{},
			Selected: []models.ScoredNode{},
			Queries:  []string{},
		}, nil
	}

	queries := s.buildQueries(ctx, selection.Selected)

	negatives, err := s.keywords.ListNegativeKeywords(ctx, userID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("failed to load negative keywords")
		negatives = nil
	}

	results := s.runSearches(ctx, userID, queries, negatives)
	rankResults(results)

	metrics.DiscoveryCycles.Inc()
	auditAsync(s.audit, userID, "discovery.run", "cycle", "", map[string]any{
		"selected": len(selection.Selected),
		"queries":  len(queries),
		"results":  len(results),
	})

	queryStrings := make([]string, len(queries))
	for i, q := range queries {
		queryStrings[i] = q.query
	}

	return &models.DiscoveryResult{
		Results:  results,
		Selected: selection.Selected,
		Queries:  queryStrings,
	}, nil
}

// SubmitFeedback applies a reaction under the same per-user guard that
// protects discovery cycles, so counters are never double-applied by a race.
func (s *DiscoveryService) SubmitFeedback(ctx context.Context, userID string, req models.FeedbackRequest) (*models.FeedbackResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	return s.feedback.ApplyReaction(ctx, userID, req)
}

// buildQueries turns the selected nodes into at most maxQueries search
// queries. A combination's precomputed queries win; everything else goes
// through the text generator with a deterministic keyword fallback.
func (s *DiscoveryService) buildQueries(ctx context.Context, selected []models.ScoredNode) []searchQuery {
	var queries []searchQuery
	seen := make(map[string]bool)

	add := func(query string, nodeID string) {
		query = strings.TrimSpace(query)
		if query == "" || seen[strings.ToLower(query)] {
			return
		}

		seen[strings.ToLower(query)] = true
		queries = append(queries, searchQuery{query: query, nodeIDs: []string{nodeID}})
	}

	for i := range selected {
		if len(queries) >= maxQueries {
			break
		}

		node := &selected[i].Node

		if node.Kind == models.KindCombination && len(node.PotentialQueries) > 0 {
			add(node.PotentialQueries[0], node.ID)

			continue
		}

		add(s.generateQuery(ctx, node), node.ID)
	}

	return queries
}

// generateQuery asks the text generator for a query; any failure or empty
// output falls back to keyword concatenation.
func (s *DiscoveryService) generateQuery(ctx context.Context, node *models.Node) string {
	if s.textgen != nil {
		prompt := fmt.Sprintf(
			"Write one concise web search query for recent news about %q. Respond with the query only.",
			node.EmbeddingText(),
		)

		query, err := s.textgen.Generate(ctx, prompt)
		if err != nil {
			s.log.WithError(err).WithField("node_id", node.ID).Debug("query generation failed, using fallback")
		} else if query = sanitizeQuery(query); query != "" {
			return query
		}
	}

	return fallbackQuery(node)
}

// fallbackQuery builds a deterministic query from the node's title and
// leading keywords.
func fallbackQuery(node *models.Node) string {
	parts := []string{node.Title}

	for i, kw := range node.Keywords {
		if i >= 2 {
			break
		}

		parts = append(parts, kw)
	}

	return strings.Join(parts, " ")
}

// sanitizeQuery strips quoting and collapses an LLM reply to a single line.
func sanitizeQuery(query string) string {
	if idx := strings.IndexByte(query, '\n'); idx >= 0 {
		query = query[:idx]
	}

	return strings.TrimSpace(strings.Trim(strings.TrimSpace(query), `"'`))
}

// runSearches fans the queries out concurrently and annotates every hit with
// its provenance and content score. A failed search contributes nothing.
func (s *DiscoveryService) runSearches(ctx context.Context, userID string, queries []searchQuery, negatives []string) []models.RankedResult {
	var (
		mu      sync.Mutex
		results []models.RankedResult
	)

	g, gctx := errgroup.WithContext(ctx)

	for _, q := range queries {
		g.Go(func() error {
			hits, err := s.searcher.Search(gctx, q.query, resultsPerQuery)
			if err != nil {
				s.log.WithError(err).WithFields(logrus.Fields{
					"user_id": userID,
					"query":   q.query,
				}).Warn("search failed")

				return nil
			}

			annotated := make([]models.RankedResult, 0, len(hits))
			for _, hit := range hits {
				annotated = append(annotated, models.RankedResult{
					SearchResult:  hit,
					SourceNodeIDs: q.nodeIDs,
					Query:         q.query,
					ContentScore:  contentScore(hit, negatives),
				})
			}

			mu.Lock()
			results = append(results, annotated...)
			mu.Unlock()

			return nil
		})
	}

	// Workers only ever return nil; failures are logged and dropped.
	_ = g.Wait()

	return results
}

// contentScore starts at 1.0 and halves per matched negative keyword, with a
// floor so a result is demoted rather than erased.
func contentScore(hit models.SearchResult, negatives []string) float64 {
	score := 1.0
	haystack := strings.ToLower(hit.Title + " " + hit.Snippet)

	for _, kw := range negatives {
		if kw == "" {
			continue
		}

		if strings.Contains(haystack, strings.ToLower(kw)) {
			score *= negKeywordPenalty
		}
	}

	if score < contentScoreFloor {
		score = contentScoreFloor
	}

	return score
}

// rankResults orders results by quality-squared times rank weight, so a
// low-quality hit falls off steeply relative to its search rank alone.
func rankResults(results []models.RankedResult) {
	for i := range results {
		rank := results[i].Rank
		if rank < 1 {
			rank = 1
		}

		results[i].FinalScore = results[i].ContentScore * results[i].ContentScore / float64(rank)
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].FinalScore > results[b].FinalScore
	})
}
