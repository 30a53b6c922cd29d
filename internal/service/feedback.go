package service

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/forayhq/foray/internal/domain"
	"github.com/forayhq/foray/internal/metrics"
	"github.com/forayhq/foray/internal/models"
	"github.com/forayhq/foray/internal/store"
)

// Cascade configuration. A reaction propagates to descendants with an
// increment of cascadeDecay^depthDelta, cut off below maxCascadeDepth levels.
const (
	cascadeDecay    = 0.7
	maxCascadeDepth = 5
)

// ReactionRepo applies reaction counter updates.
type ReactionRepo interface {
	ApplyReaction(ctx context.Context, userID, nodeID string, positive bool) (*models.Node, error)
	ApplyCascade(ctx context.Context, userID string, positive bool, increments []store.CascadeIncrement) error
}

// DescendantLister returns active descendants of a node within a depth window.
type DescendantLister interface {
	ListDescendants(ctx context.Context, userID, nodeID string, maxDepthDelta int) ([]models.Node, error)
}

// KeywordRepo stores the user's negative-keyword list.
type KeywordRepo interface {
	AddNegativeKeywords(ctx context.Context, userID string, keywords []string) error
}

// ContentCreator creates content nodes. Satisfied by GraphService.
type ContentCreator interface {
	CreateContent(ctx context.Context, userID string, req models.CreateContentRequest) (*models.Node, error)
}

// FeedbackService applies user reactions and cascades their effect downward
// through the target's subtree.
type FeedbackService struct {
	reactions   ReactionRepo
	descendants DescendantLister
	keywords    KeywordRepo
	content     ContentCreator
	audit       AuditEnqueuer
	log         *logrus.Logger
}

var _ domain.FeedbackService = (*FeedbackService)(nil)

// NewFeedbackService creates a FeedbackService.
func NewFeedbackService(
	reactions ReactionRepo,
	descendants DescendantLister,
	keywords KeywordRepo,
	content ContentCreator,
	audit AuditEnqueuer,
	log *logrus.Logger,
) *FeedbackService {
	return &FeedbackService{
		reactions:   reactions,
		descendants: descendants,
		keywords:    keywords,
		content:     content,
		audit:       audit,
		log:         log,
	}
}

// ApplyReaction records a reaction on a node and cascades a decayed fraction
// of it to the node's descendants. When the request targets a raw search
// result (no node id) with a positive reaction, a content node is first
// created under the contributing parent and the reaction applies to that new
// node. A disliked raw result never enters the graph; only its keywords are
// kept as negative signals.
func (s *FeedbackService) ApplyReaction(ctx context.Context, userID string, req models.FeedbackRequest) (*models.FeedbackResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	positive := req.Reaction == models.ReactionPositive

	nodeID := req.NodeID
	if nodeID == "" {
		if !positive {
			return s.rejectRawResult(ctx, userID, req)
		}

		node, err := s.content.CreateContent(ctx, userID, models.CreateContentRequest{
			ParentID:    req.ParentID,
			Title:       req.Title,
			URL:         req.URL,
			Snippet:     req.Snippet,
			SearchQuery: req.SearchQuery,
			Keywords:    req.Keywords,
		})
		if err != nil {
			return nil, fmt.Errorf("materializing result as content node: %w", err)
		}

		nodeID = node.ID
	}

	target, err := s.reactions.ApplyReaction(ctx, userID, nodeID, positive)
	if err != nil {
		return nil, err
	}

	cascaded, err := s.cascade(ctx, userID, target, positive)
	if err != nil {
		// The direct reaction already landed; report the partial result.
		s.log.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"node_id": nodeID,
		}).Warn("reaction cascade failed")
		cascaded = nil
	}

	if !positive && len(req.Keywords) > 0 {
		if err := s.keywords.AddNegativeKeywords(ctx, userID, req.Keywords); err != nil {
			s.log.WithError(err).WithField("user_id", userID).Warn("failed to record negative keywords")
		}
	}

	metrics.ReactionsTotal.WithLabelValues(string(req.Reaction)).Inc()

	detail := map[string]any{"reaction": string(req.Reaction), "cascaded": len(cascaded)}
	if req.OperationID != "" {
		detail["operation_id"] = req.OperationID
	}
	auditAsync(s.audit, userID, "feedback.apply", "node", nodeID, detail)

	return &models.FeedbackResult{
		NodeID:      nodeID,
		AffectedIDs: append([]string{nodeID}, cascaded...),
		Cascaded:    len(cascaded),
	}, nil
}

// rejectRawResult handles a negative reaction on a search result that was
// never materialized as a node. No node is created or touched; the extracted
// keywords feed the negative-keyword list so future ranking penalizes
// similar content.
func (s *FeedbackService) rejectRawResult(ctx context.Context, userID string, req models.FeedbackRequest) (*models.FeedbackResult, error) {
	if len(req.Keywords) > 0 {
		if err := s.keywords.AddNegativeKeywords(ctx, userID, req.Keywords); err != nil {
			return nil, fmt.Errorf("recording negative keywords: %w", err)
		}
	}

	metrics.ReactionsTotal.WithLabelValues(string(req.Reaction)).Inc()

	detail := map[string]any{"reaction": string(req.Reaction), "keywords": len(req.Keywords)}
	if req.OperationID != "" {
		detail["operation_id"] = req.OperationID
	}
	auditAsync(s.audit, userID, "feedback.reject_result", "result", req.URL, detail)

	return &models.FeedbackResult{AffectedIDs: []string{}}, nil
}

// cascade applies decayed increments to the target's descendants and returns
// the affected ids.
func (s *FeedbackService) cascade(ctx context.Context, userID string, target *models.Node, positive bool) ([]string, error) {
	descendants, err := s.descendants.ListDescendants(ctx, userID, target.ID, maxCascadeDepth)
	if err != nil {
		return nil, fmt.Errorf("listing descendants: %w", err)
	}

	if len(descendants) == 0 {
		return nil, nil
	}

	increments := make([]store.CascadeIncrement, 0, len(descendants))
	ids := make([]string, 0, len(descendants))

	for _, desc := range descendants {
		delta := desc.Depth - target.Depth
		if delta < 1 || delta > maxCascadeDepth {
			continue
		}

		increments = append(increments, store.CascadeIncrement{
			NodeID: desc.ID,
			Amount: roundIncrement(math.Pow(cascadeDecay, float64(delta))),
		})
		ids = append(ids, desc.ID)
	}

	if len(increments) == 0 {
		return nil, nil
	}

	if err := s.reactions.ApplyCascade(ctx, userID, positive, increments); err != nil {
		return nil, fmt.Errorf("applying cascade: %w", err)
	}

	return ids, nil
}

// roundIncrement rounds a cascade increment to 2 decimals so stored counters
// stay exact across runs.
func roundIncrement(v float64) float64 {
	return math.Round(v*100) / 100
}
