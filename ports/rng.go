package ports

import (
	"context"
	"math/rand/v2"
)

// RNGPort provides seeded random sources for deterministic sampling
type RNGPort interface {
	// Stream returns a deterministic source for a named stream. Equal
	// (name, baseSeed) pairs yield identical sequences; different names
	// yield independent ones.
	Stream(ctx context.Context, name string, baseSeed uint64) (rand.Source, error)

	// ValidateSeed checks that the first draws of Float64 from a stream
	// match expected
	ValidateSeed(ctx context.Context, name string, baseSeed uint64, expected []float64) error
}
