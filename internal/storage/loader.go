// This file implements a generic, batched loader that drains rows from a
// channel and invokes a provided flush function per batch.
//
// The ingest pipeline uses it to group resolved collision rows into storage
// flushes; flush implementations use each backend's most efficient primitive
// (Postgres COPY, multi-row INSERT elsewhere).
//
// Logging: on every successful flush, a concise progress line is emitted with
// running totals and instantaneous rows/sec since the previous flush.
package storage

import (
	"context"
	"fmt"
	"log"
	"time"
)

// FlushFn persists one batch and returns the number of rows the database
// accepted. The function should be safe for repeated calls and cancel
// promptly when ctx is done.
type FlushFn[T any] func(ctx context.Context, batch []T) (int64, error)

// LoadBatches drains rows from 'in', groups them into batches of size
// 'batchSize', and calls 'flush' for each non-empty batch. It returns the
// total number of rows reported by flush and the first error encountered.
//
// Cancellation: returns (total, ctx.Err()) when canceled. Progress is logged
// on each successful flush.
func LoadBatches[T any](
	ctx context.Context,
	in <-chan T,
	batchSize int,
	flush FlushFn[T],
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if flush == nil {
		return 0, fmt.Errorf("flush must not be nil")
	}

	var (
		total       int64
		batches     int64
		batch       = make([]T, 0, batchSize)
		start       = time.Now()
		lastFlushTS = start
		lastTotal   int64
	)

	doFlush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := flush(ctx, batch)
		total += n

		// Reuse allocated slice; keep capacity to avoid churn.
		batch = batch[:0]

		if err != nil {
			log.Printf("loader: flush failed after=%d total=%d err=%v", n, total, err)
			return err
		}

		batches++
		now := time.Now()
		sinceLast := now.Sub(lastFlushTS)
		insertedSinceLast := total - lastTotal
		rps := float64(0)
		if sinceLast > 0 {
			rps = float64(insertedSinceLast) / sinceLast.Seconds()
		}
		log.Printf(
			"batch #%d: rps=%.0f inserted=%d total_inserted=%d elapsed=%s since_last=%s",
			batches,
			rps,
			n,
			total,
			now.Sub(start).Truncate(time.Millisecond),
			sinceLast.Truncate(time.Millisecond),
		)
		lastFlushTS = now
		lastTotal = total

		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()

		case row, ok := <-in:
			if !ok {
				if err := doFlush(); err != nil {
					return total, err
				}
				log.Printf("loader: input closed, total_inserted=%d", total)
				return total, nil
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				if err := doFlush(); err != nil {
					return total, err
				}
			}
		}
	}
}
