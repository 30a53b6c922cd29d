package store

import (
	"fmt"
	"strconv"
	"strings"
)

// maxListLimit is a defense-in-depth cap on limit values for list queries.
const maxListLimit = 1000

// formatEmbedding converts a float32 slice to the pgvector string format "[0.1,0.2,...]".
func formatEmbedding(embedding []float32) string {
	var b strings.Builder
	b.Grow(len(embedding)*8 + 2)
	b.WriteByte('[')

	for i, v := range embedding {
		if i > 0 {
			b.WriteByte(',')
		}

		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}

	b.WriteByte(']')

	return b.String()
}

// parseEmbedding converts the pgvector text representation back to a float32
// slice. Inverse of formatEmbedding.
func parseEmbedding(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("malformed vector literal %q", truncate(s, 32))
	}

	inner := s[1 : len(s)-1]
	if inner == "" {
		return []float32{}, nil
	}

	parts := strings.Split(inner, ",")
	out := make([]float32, len(parts))

	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("parsing vector element %d: %w", i, err)
		}

		out[i] = float32(f)
	}

	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
