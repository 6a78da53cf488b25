package tasks

import (
	"context"

	"github.com/charmbracelet/log"

	"spotfave/internal/services"
)

// ChunkError records a failed write call for one chunk of a batched mutation.
type ChunkError struct {
	Index int   // zero-based chunk index
	Size  int   // number of items in the failed chunk
	Err   error // error returned by the write call
}

// chunkWriteFunc issues a single write call for one chunk of items.
type chunkWriteFunc func(ctx context.Context, chunk []string) error

// writeChunks partitions items into chunks of at most
// [services.MaxBatchItems] and issues one write call per chunk in order.
//
// A failed chunk is recorded and skipped; remaining chunks are still
// attempted. There is no rollback and no retry. The returned count is the
// sum of the sizes of the chunks that succeeded.
func writeChunks(ctx context.Context, logger *log.Logger, items []string, write chunkWriteFunc) (int, []ChunkError) {
	added := 0
	var failures []ChunkError

	for i := 0; i < len(items); i += services.MaxBatchItems {
		end := min(i+services.MaxBatchItems, len(items))
		chunk := items[i:end]
		index := i / services.MaxBatchItems

		if err := write(ctx, chunk); err != nil {
			logger.Error("chunk write failed", "chunk", index, "size", len(chunk), "error", err)
			failures = append(failures, ChunkError{Index: index, Size: len(chunk), Err: err})
			continue
		}
		added += len(chunk)
	}

	return added, failures
}
