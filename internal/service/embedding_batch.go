package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Batch generation configuration.
const (
	batchChunkSize  = 4
	batchChunkDelay = 200 * time.Millisecond
)

// BatchFailure records one input that could not be embedded.
type BatchFailure struct {
	Index int
	Err   error
}

// BatchResult holds the outcome of a GenerateBatch call. Embeddings is
// indexed like the input slice; entries for failed inputs are nil.
type BatchResult struct {
	Embeddings [][]float32
	Failures   []BatchFailure
}

// GenerateBatch embeds texts in chunks, pausing briefly between chunks to
// avoid overloading the embedding backend. A failed input does not abort the
// batch; it is reported in Failures and the remaining inputs are still
// processed. If the circuit breaker opens mid-batch, the remaining inputs
// fail fast with ErrCircuitOpen.
func (s *EmbeddingService) GenerateBatch(ctx context.Context, texts []string) (*BatchResult, error) {
	result := &BatchResult{
		Embeddings: make([][]float32, len(texts)),
	}

	var failMu sync.Mutex

	for start := 0; start < len(texts); start += batchChunkSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + batchChunkSize
		if end > len(texts) {
			end = len(texts)
		}

		g, gctx := errgroup.WithContext(ctx)

		for i := start; i < end; i++ {
			g.Go(func() error {
				embedding, err := s.Generate(gctx, texts[i])
				if err != nil {
					failMu.Lock()
					result.Failures = append(result.Failures, BatchFailure{Index: i, Err: err})
					failMu.Unlock()

					// Partial failures are collected, not propagated.
					return nil
				}

				result.Embeddings[i] = embedding

				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}

		if end < len(texts) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(batchChunkDelay):
			}
		}
	}

	return result, nil
}
