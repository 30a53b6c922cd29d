package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for validation.
var (
	ErrMissingID            = errors.New("id is required")
	ErrMissingTitle         = errors.New("title is required")
	ErrMissingParent        = errors.New("parent_id is required")
	ErrMissingSnippet       = errors.New("snippet is required")
	ErrBadReaction          = errors.New("reaction must be positive or negative")
	ErrTooFewSources        = errors.New("combination requires at least two source nodes")
	ErrBadCombinationType   = errors.New("unknown combination type")
	ErrConfidenceOutOfRange = errors.New("confidence must be between 0 and 1")
)

// Sentinel errors for entity lookups.
var (
	ErrNodeNotFound     = errors.New("node not found")
	ErrInterestNotFound = errors.New("interest not found")
)

// ErrDuplicateKey indicates a unique constraint violation (maps to HTTP 409 Conflict).
var ErrDuplicateKey = errors.New("duplicate key")

// ErrCycle indicates a parent assignment that would make a node its own ancestor.
var ErrCycle = errors.New("parent assignment would create a cycle")

// Gateway sentinel errors. All of these are recoverable: callers degrade to
// their deterministic fallback paths instead of failing the cycle.
var (
	ErrEmbeddingUnavailable  = errors.New("embedding gateway unavailable")
	ErrSearchUnavailable     = errors.New("search gateway unavailable")
	ErrGenerationUnavailable = errors.New("generation gateway unavailable")
)

// ErrFieldTooLong returns an error indicating a field exceeds its maximum length.
func ErrFieldTooLong(field string, maxLen int) error {
	return fmt.Errorf("%s exceeds maximum length of %d", field, maxLen)
}
