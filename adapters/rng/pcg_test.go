package rng

import (
	"context"
	"math/rand/v2"
	"testing"

	"gocausal/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draws(t *testing.T, a *PCGAdapter, name string, seed uint64, n int) []float64 {
	t.Helper()
	src, err := a.Stream(context.Background(), name, seed)
	require.NoError(t, err)
	r := rand.New(src)
	out := make([]float64, n)
	for i := range out {
		out[i] = r.Float64()
	}
	return out
}

func TestStream_Deterministic(t *testing.T) {
	a := NewPCGAdapter()

	assert.Equal(t, draws(t, a, "replicate/0", 42, 5), draws(t, a, "replicate/0", 42, 5))
	assert.NotEqual(t, draws(t, a, "replicate/0", 42, 5), draws(t, a, "replicate/1", 42, 5))
	assert.NotEqual(t, draws(t, a, "replicate/0", 42, 5), draws(t, a, "replicate/0", 43, 5))
}

func TestValidateSeed(t *testing.T) {
	a := NewPCGAdapter()
	ctx := context.Background()
	want := draws(t, a, "sample", 7, 3)

	require.NoError(t, a.ValidateSeed(ctx, "sample", 7, want))

	want[2] += 1
	err := a.ValidateSeed(ctx, "sample", 7, want)
	assert.True(t, core.IsValidationError(err))
}

func TestStream_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPCGAdapter().Stream(ctx, "x", 1)
	assert.ErrorIs(t, err, context.Canceled)
}
