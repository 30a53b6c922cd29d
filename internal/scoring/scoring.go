// Package scoring computes deterministic selection scores for interest-graph
// nodes. The score is a product of independent factors rather than a weighted
// sum: a single near-zero factor (an entirely irrelevant node, say) should
// suppress the node regardless of its other strengths.
package scoring

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/forayhq/foray/internal/models"
	"github.com/forayhq/foray/internal/vectormath"
)

// Decay and clamp constants for the quality factor.
const (
	decayHalfLifeDays = 30.0
	decayFloor        = 0.3
	maxScore          = 10.0
)

// Score computes the selection score for a node against the active interest
// set. Identical inputs always produce identical scores; there is no hidden
// randomness anywhere in selection.
func Score(node *models.Node, interests []models.Node, now time.Time) float64 {
	s := decayedQuality(node, now) *
		relevance(node, interests) *
		freshness(node, now) *
		exploration(node.TimesSelected) *
		diversity(node.TimesSelected)

	return math.Max(0, math.Min(maxScore, s))
}

// decayedQuality applies exponential recency decay to the base quality ratio.
// The decay contribution is floored so an old-but-good node is dampened,
// never zeroed.
func decayedQuality(node *models.Node, now time.Time) float64 {
	total := node.Positive + node.Negative
	if total <= 0 {
		return 0
	}

	base := node.Positive / total

	ref := node.CreatedAt
	if node.LastUsedAt != nil {
		ref = *node.LastUsedAt
	}

	days := now.Sub(ref).Hours() / 24
	if days < 0 {
		days = 0
	}

	decay := math.Exp(-days / decayHalfLifeDays)

	return base * (decayFloor + (1-decayFloor)*decay)
}

// relevance measures how close the node is to the current interest set.
// Embedding similarity is preferred; keyword overlap is the fallback when
// either side lacks embeddings. No active interests means neutral 0.5.
func relevance(node *models.Node, interests []models.Node) float64 {
	if len(interests) == 0 {
		return 0.5
	}

	if len(node.Embedding) > 0 {
		var embeddings [][]float32

		for _, it := range interests {
			if len(it.Embedding) == len(node.Embedding) {
				embeddings = append(embeddings, it.Embedding)
			}
		}

		if len(embeddings) > 0 {
			best, err := vectormath.MaxSimilarity(node.Embedding, embeddings)
			if err == nil {
				return clamp01(best * 2)
			}
		}
	}

	return keywordRelevance(node, interests)
}

// keywordRelevance scores each interest phrase by the fraction of its words
// found as substrings in the node's title and keywords, averaged over
// interests, scaled x2 and clamped.
func keywordRelevance(node *models.Node, interests []models.Node) float64 {
	haystack := strings.ToLower(node.Title + " " + strings.Join(node.Keywords, " "))

	var sum float64

	for _, it := range interests {
		words := strings.Fields(strings.ToLower(it.Title))
		if len(words) == 0 {
			continue
		}

		matched := 0
		for _, w := range words {
			if strings.Contains(haystack, w) {
				matched++
			}
		}

		sum += float64(matched) / float64(len(words))
	}

	return clamp01(sum / float64(len(interests)) * 2)
}

// freshness is a step bonus by node age.
func freshness(node *models.Node, now time.Time) float64 {
	days := now.Sub(node.CreatedAt).Hours() / 24

	switch {
	case days < 1:
		return 1.5
	case days < 7:
		return 1.2
	case days < 30:
		return 1.0
	case days < 90:
		return 0.9
	default:
		return 0.8
	}
}

// exploration guarantees new and lightly-tested nodes get sampled before
// being judged.
func exploration(timesSelected int) float64 {
	switch {
	case timesSelected == 0:
		return 2.0
	case timesSelected < 3:
		return 1.5
	case timesSelected < 10:
		return 1.0
	case timesSelected < 25:
		return 0.9
	default:
		return 0.7
	}
}

// diversity penalizes overuse independently of the exploration bonus.
func diversity(timesSelected int) float64 {
	switch {
	case timesSelected > 20:
		return 0.5
	case timesSelected > 10:
		return 0.7
	case timesSelected > 5:
		return 0.9
	default:
		return 1.0
	}
}

// SelectTopK scores every candidate and returns the k highest, descending.
// The sort is stable, so ties keep candidate order and the whole selection is
// deterministic for a fixed snapshot.
func SelectTopK(candidates []models.Node, interests []models.Node, k int, now time.Time) []models.ScoredNode {
	scored := make([]models.ScoredNode, len(candidates))
	for i, n := range candidates {
		scored[i] = models.ScoredNode{Node: n, Score: Score(&n, interests, now)}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if k > 0 && k < len(scored) {
		scored = scored[:k]
	}

	return scored
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
