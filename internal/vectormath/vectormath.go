// Package vectormath provides similarity and aggregation primitives over
// fixed-length float32 vectors. All functions are pure.
package vectormath

import (
	"errors"
	"math"
)

// Errors returned on malformed input. These indicate programming errors and
// should be propagated, never swallowed.
var (
	ErrDimensionMismatch = errors.New("vector dimensions do not match")
	ErrEmptyInput        = errors.New("at least one vector is required")
)

// Cosine returns the cosine similarity between a and b in [-1, 1].
// Floating-point overshoot is clamped to exactly that range. Two zero vectors
// have similarity 0.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))

	return math.Max(-1, math.Min(1, sim)), nil
}

// Average returns the element-wise mean of the given vectors.
func Average(vectors [][]float32) ([]float32, error) {
	if len(vectors) == 0 {
		return nil, ErrEmptyInput
	}

	dim := len(vectors[0])
	sums := make([]float64, dim)

	for _, v := range vectors {
		if len(v) != dim {
			return nil, ErrDimensionMismatch
		}

		for i, x := range v {
			sums[i] += float64(x)
		}
	}

	out := make([]float32, dim)
	for i, s := range sums {
		out[i] = float32(s / float64(len(vectors)))
	}

	return out, nil
}

// MaxSimilarity returns the maximum cosine similarity between v and any of
// the candidates. With no candidates it returns -1.
func MaxSimilarity(v []float32, candidates [][]float32) (float64, error) {
	best := -1.0

	for _, c := range candidates {
		sim, err := Cosine(v, c)
		if err != nil {
			return 0, err
		}

		if sim > best {
			best = sim
		}
	}

	return best, nil
}
