package models

import "strings"

// CombinationType classifies how two interests were merged.
type CombinationType string

// Combination types, ordered by the multiplier they earn during synthesis.
const (
	CombinationSemanticMerge       CombinationType = "semantic_merge"
	CombinationGeographicExpansion CombinationType = "geographic_expansion"
	CombinationSkillLocation       CombinationType = "skill_location"
	CombinationIndustryLocation    CombinationType = "industry_location"
)

// CombinationSuggestion is a candidate composite interest produced by the
// synthesizer. A suggestion becomes a combination node once accepted.
type CombinationSuggestion struct {
	Title            string          `json:"title"`
	SourceNodeIDs    []string        `json:"source_node_ids"`
	CombinationType  CombinationType `json:"combination_type"`
	ConfidenceScore  float64         `json:"confidence_score"`
	PotentialQueries []string        `json:"potential_queries"`
	Embedding        []float32       `json:"embedding,omitempty"`
	Keywords         []string        `json:"keywords,omitempty"`
}

// Validate checks that a suggestion is structurally sound before a
// combination node is created from it.
func (s *CombinationSuggestion) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return ErrMissingTitle
	}

	if len(s.SourceNodeIDs) < 2 {
		return ErrTooFewSources
	}

	switch s.CombinationType {
	case CombinationSemanticMerge, CombinationGeographicExpansion,
		CombinationSkillLocation, CombinationIndustryLocation:
	default:
		return ErrBadCombinationType
	}

	if s.ConfidenceScore < 0 || s.ConfidenceScore > 1 {
		return ErrConfidenceOutOfRange
	}

	return nil
}

// SynthesizeRequest is the payload for a combination-synthesis run.
type SynthesizeRequest struct {
	MaxResults    int     `json:"max_results,omitempty"`
	MinConfidence float64 `json:"min_confidence,omitempty"`
}
