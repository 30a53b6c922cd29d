package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/forayhq/foray/internal/domain"
	"github.com/forayhq/foray/internal/models"
	"github.com/forayhq/foray/internal/vectormath"
)

// Synthesis defaults.
const (
	defaultMaxSuggestions = 5
	defaultMinConfidence  = 0.3

	nearDuplicateJaccard = 0.8
)

// Type multipliers reward combination types with higher discovery value.
var typeMultipliers = map[models.CombinationType]float64{
	models.CombinationSkillLocation:       1.3,
	models.CombinationIndustryLocation:    1.2,
	models.CombinationGeographicExpansion: 1.1,
	models.CombinationSemanticMerge:       1.0,
}

// Keyword dictionaries used to classify an interest pair. Matching is
// whole-word against the lowercased titles.
var (
	geographicTerms = wordSet(
		"spain", "germany", "france", "italy", "portugal", "netherlands",
		"europe", "asia", "america", "usa", "uk", "canada", "australia",
		"india", "china", "japan", "brazil", "mexico",
		"london", "berlin", "madrid", "barcelona", "paris", "amsterdam",
		"lisbon", "tokyo", "remote", "abroad",
	)

	skillTerms = wordSet(
		"engineering", "engineer", "developer", "development", "programming",
		"design", "designer", "marketing", "sales", "writing", "analyst",
		"analytics", "data", "science", "research", "management", "devops",
		"security", "job", "jobs", "career", "careers", "hiring", "freelance",
	)

	industryTerms = wordSet(
		"fintech", "healthcare", "biotech", "pharma", "energy", "automotive",
		"aerospace", "retail", "fashion", "gaming", "crypto", "blockchain",
		"robotics", "agriculture", "logistics", "media", "telecom",
		"insurance", "banking", "manufacturing", "tourism", "hospitality",
	)
)

// complementaryPairs lists term groups that make two interests more valuable
// together than apart (e.g. an employment interest plus a location).
var complementaryPairs = [][2][]string{
	{{"job", "jobs", "career", "careers", "hiring", "vacancy"}, {"spain", "germany", "france", "europe", "remote", "abroad", "london", "berlin", "madrid"}},
	{{"startup", "startups", "founder"}, {"funding", "investment", "venture"}},
	{{"learning", "course", "courses", "tutorial"}, {"programming", "development", "design", "data"}},
}

// InterestLister returns the active interests used as synthesis input.
type InterestLister interface {
	ListInterests(ctx context.Context, userID string) ([]models.Node, error)
}

// CombinationService proposes composite interests from pairs of existing
// ones. Suggestions are not persisted; accepting one goes through
// GraphService.CreateCombination.
type CombinationService struct {
	interests InterestLister
	log       *logrus.Logger
}

var _ domain.CombinationService = (*CombinationService)(nil)

// NewCombinationService creates a CombinationService.
func NewCombinationService(interests InterestLister, log *logrus.Logger) *CombinationService {
	return &CombinationService{interests: interests, log: log}
}

// Synthesize scores all unordered pairs of embedded interests and returns
// the best suggestions, confidence descending. Interests without embeddings
// are skipped; they cannot be compared yet.
func (s *CombinationService) Synthesize(ctx context.Context, userID string, maxResults int, minConfidence float64) ([]models.CombinationSuggestion, error) {
	if maxResults <= 0 {
		maxResults = defaultMaxSuggestions
	}
	if minConfidence <= 0 {
		minConfidence = defaultMinConfidence
	}

	interests, err := s.interests.ListInterests(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing interests for synthesis: %w", err)
	}

	embedded := interests[:0:0]
	for _, interest := range interests {
		if len(interest.Embedding) > 0 {
			embedded = append(embedded, interest)
		}
	}

	var suggestions []models.CombinationSuggestion

	for i := 0; i < len(embedded); i++ {
		for j := i + 1; j < len(embedded); j++ {
			suggestion, ok := s.synthesizePair(&embedded[i], &embedded[j])
			if ok && suggestion.ConfidenceScore >= minConfidence {
				suggestions = append(suggestions, suggestion)
			}
		}
	}

	sort.SliceStable(suggestions, func(a, b int) bool {
		return suggestions[a].ConfidenceScore > suggestions[b].ConfidenceScore
	})

	if len(suggestions) > maxResults {
		suggestions = suggestions[:maxResults]
	}

	return suggestions, nil
}

func (s *CombinationService) synthesizePair(a, b *models.Node) (models.CombinationSuggestion, bool) {
	similarity, err := vectormath.Cosine(a.Embedding, b.Embedding)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"node_a": a.ID,
			"node_b": b.ID,
		}).Warn("skipping interest pair")

		return models.CombinationSuggestion{}, false
	}

	if similarity <= 0 {
		return models.CombinationSuggestion{}, false
	}

	kind, title := classifyPair(a.Title, b.Title)

	confidence := similarity * typeMultipliers[kind]

	if jaccard(titleWords(a.Title), titleWords(b.Title)) > nearDuplicateJaccard {
		confidence *= 0.7
	}

	if hasComplementaryPair(a.Title, b.Title) {
		confidence *= 1.2
	}

	if confidence > 1 {
		confidence = 1
	}

	embedding, err := vectormath.Average([][]float32{a.Embedding, b.Embedding})
	if err != nil {
		return models.CombinationSuggestion{}, false
	}

	return models.CombinationSuggestion{
		Title:            title,
		SourceNodeIDs:    []string{a.ID, b.ID},
		CombinationType:  kind,
		ConfidenceScore:  confidence,
		PotentialQueries: potentialQueries(a, b),
		Embedding:        embedding,
		Keywords:         mergeKeywords(a.Keywords, b.Keywords),
	}, true
}

// classifyPair picks a combination type from the dictionary hits in the two
// titles and phrases the combined title accordingly (topic before location).
func classifyPair(titleA, titleB string) (models.CombinationType, string) {
	wordsA, wordsB := titleWords(titleA), titleWords(titleB)

	geoA, geoB := hasAny(wordsA, geographicTerms), hasAny(wordsB, geographicTerms)
	skill := hasAny(wordsA, skillTerms) || hasAny(wordsB, skillTerms)
	industry := hasAny(wordsA, industryTerms) || hasAny(wordsB, industryTerms)

	geo := geoA || geoB

	// Order the titles so the location reads last.
	topic, location := titleA, titleB
	if geoA && !geoB {
		topic, location = titleB, titleA
	}

	switch {
	case geo && skill:
		return models.CombinationSkillLocation, topic + " in " + location
	case geo && industry:
		return models.CombinationIndustryLocation, topic + " in " + location
	case geo:
		return models.CombinationGeographicExpansion, topic + " in " + location
	default:
		return models.CombinationSemanticMerge, titleA + " + " + titleB
	}
}

// potentialQueries precomputes search phrases the orchestrator can use
// without another generation round-trip.
func potentialQueries(a, b *models.Node) []string {
	base := strings.TrimSpace(a.Title + " " + b.Title)

	queries := []string{base, base + " news"}

	if len(a.Keywords) > 0 && len(b.Keywords) > 0 {
		queries = append(queries, a.Keywords[0]+" "+b.Keywords[0])
	}

	return queries
}

func mergeKeywords(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))

	var merged []string

	for _, kw := range append(append([]string{}, a...), b...) {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}

		seen[kw] = true
		merged = append(merged, kw)
	}

	return merged
}

func titleWords(title string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(title)) {
		words[strings.Trim(w, ".,;:!?\"'()")] = true
	}

	return words
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}

	return set
}

func hasAny(words, dict map[string]bool) bool {
	for w := range words {
		if dict[w] {
			return true
		}
	}

	return false
}

func hasComplementaryPair(titleA, titleB string) bool {
	wordsA, wordsB := titleWords(titleA), titleWords(titleB)

	for _, pair := range complementaryPairs {
		left, right := wordSet(pair[0]...), wordSet(pair[1]...)
		if (hasAny(wordsA, left) && hasAny(wordsB, right)) ||
			(hasAny(wordsB, left) && hasAny(wordsA, right)) {
			return true
		}
	}

	return false
}

// jaccard computes word-set similarity between two titles.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for w := range a {
		if b[w] {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}
