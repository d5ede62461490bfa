// Package replicate draws independent seeded tables from one model in
// parallel. Replicate i always uses the stream "replicate/<i>", so results do
// not depend on the worker count or on scheduling.
package replicate

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"gocausal/domain/core"
	"gocausal/domain/scm"
	"gocausal/domain/table"
	"gocausal/internal"
	"gocausal/ports"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Options controls a replicate run
type Options struct {
	Rows    int
	Count   int
	Workers int
	Seed    uint64
}

// Replicate is one independent draw
type Replicate struct {
	ID        core.ReplicateID `json:"id"`
	Index     int              `json:"index"`
	Stream    string           `json:"stream"`
	Seed      uint64           `json:"seed"`
	Digest    core.Hash        `json:"digest"`
	Table     *table.Table     `json:"-"`
	CreatedAt core.Timestamp   `json:"created_at"`
}

// StreamName names the random stream of replicate i
func StreamName(i int) string {
	return fmt.Sprintf("replicate/%d", i)
}

// Run draws opts.Count tables of opts.Rows rows each, at most opts.Workers
// at a time. The first failure cancels the remaining draws.
func Run(ctx context.Context, model *scm.SCM, rng ports.RNGPort, opts Options) ([]Replicate, error) {
	if opts.Count < 0 {
		return nil, core.NewValidationError("count", "must be non-negative")
	}
	if opts.Rows < 0 {
		return nil, core.NewShapeError("rows must be non-negative, got %d", opts.Rows)
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	start := time.Now()
	internal.DefaultLogger.Info("drawing %d replicates of %d rows with %d workers", opts.Count, opts.Rows, workers)

	out := make([]Replicate, opts.Count)
	sem := semaphore.NewWeighted(int64(workers))
	g, gCtx := errgroup.WithContext(ctx)

	for i := 0; i < opts.Count; i++ {
		if err := sem.Acquire(gCtx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)

			stream := StreamName(i)
			src, err := rng.Stream(gCtx, stream, opts.Seed)
			if err != nil {
				return err
			}
			t, err := model.RandWithSource(opts.Rows, src)
			if err != nil {
				return fmt.Errorf("replicate %d: %w", i, err)
			}
			out[i] = Replicate{
				ID:        core.NewReplicateID(),
				Index:     i,
				Stream:    stream,
				Seed:      opts.Seed,
				Digest:    Digest(t),
				Table:     t,
				CreatedAt: core.Now(),
			}
			internal.DefaultLogger.Trace("replicate %d done", i)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Acquire only fails once gCtx is done; with no goroutine error that
	// means the caller cancelled.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	internal.DefaultLogger.Debug("drew %d replicates in %v", opts.Count, time.Since(start))
	return out, nil
}

// Digest hashes the names and values of t's data columns. Equal draws have
// equal digests.
func Digest(t *table.Table) core.Hash {
	var buf []byte
	for _, c := range t.Columns() {
		buf = append(buf, c.Name...)
		buf = append(buf, 0)
		for _, v := range c.Values {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
		}
	}
	return core.NewHash(buf)
}
