package rng

import (
	"context"
	"fmt"
	"math/rand/v2"

	"gocausal/domain/core"
	"gocausal/ports"
)

var _ ports.RNGPort = (*PCGAdapter)(nil)

// PCGAdapter derives one PCG stream per name from a base seed.
type PCGAdapter struct{}

// NewPCGAdapter creates a new PCG-backed RNG adapter
func NewPCGAdapter() *PCGAdapter {
	return &PCGAdapter{}
}

// Stream returns a fresh PCG source seeded from (baseSeed, name).
func (a *PCGAdapter) Stream(ctx context.Context, name string, baseSeed uint64) (rand.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hi, lo := core.StreamSeed(baseSeed, name)
	return rand.NewPCG(hi, lo), nil
}

// ValidateSeed replays a stream and compares its first len(expected) uniform draws.
func (a *PCGAdapter) ValidateSeed(ctx context.Context, name string, baseSeed uint64, expected []float64) error {
	src, err := a.Stream(ctx, name, baseSeed)
	if err != nil {
		return err
	}
	r := rand.New(src)
	for i, want := range expected {
		if got := r.Float64(); got != want {
			return core.NewValidationError("seed", fmt.Sprintf("stream %q draw %d is %v, want %v", name, i, got, want))
		}
	}
	return nil
}
