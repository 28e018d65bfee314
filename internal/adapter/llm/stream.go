package llm

import (
	"context"
	"sync/atomic"

	"study-byte/internal/domain"
)

// produceFunc pushes fragments to emit until the response ends, emit returns
// false, or an error occurs. It must return promptly once emit returns false.
type produceFunc func(ctx context.Context, emit func(chunk string) bool) error

// newChunkStream adapts a producer into a lazy, single-use domain.ChunkStream.
// The producer runs on the first range; breaking out cancels its context.
func newChunkStream(ctx context.Context, provider string, produce produceFunc) domain.ChunkStream {
	var consumed atomic.Bool
	return func(yield func(string, error) bool) {
		if !consumed.CompareAndSwap(false, true) {
			yield("", domain.ErrStreamConsumed)
			return
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		stopped := false
		err := produce(ctx, func(chunk string) bool {
			if chunk == "" {
				return true
			}
			if !yield(chunk, nil) {
				stopped = true
				cancel()
				return false
			}
			return true
		})
		if err != nil && !stopped {
			yield("", domain.NewGenerationFailedError(provider, err))
		}
	}
}
