package dist

import (
	"math"
	"math/rand/v2"
	"testing"

	"gocausal/domain/core"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestConvolve_Normals(t *testing.T) {
	d, err := Convolve(distuv.Normal{Mu: 0, Sigma: 1}, distuv.Normal{Mu: 0, Sigma: 1})
	require.NoError(t, err)

	n, ok := d.(distuv.Normal)
	require.True(t, ok, "expected Normal, got %T", d)
	assert.InDelta(t, 0, n.Mu, 1e-12)
	assert.InDelta(t, math.Sqrt2, n.Sigma, 1e-12)
}

func TestConvolve_EmptyIsZeroPointMass(t *testing.T) {
	d, err := Convolve()
	require.NoError(t, err)
	assert.Equal(t, PointMass{Value: 0}, d)
	assert.Equal(t, 0.0, d.Mean())
	assert.Equal(t, 0.0, d.Variance())
	assert.Equal(t, 1.0, d.Prob(0))
	assert.Equal(t, 0.0, d.Prob(0.5))
}

func TestConvolve_SingletonUnchanged(t *testing.T) {
	b := distuv.Beta{Alpha: 2, Beta: 4}
	d, err := Convolve(b)
	require.NoError(t, err)
	assert.Equal(t, b, d)
}

func TestConvolve_IncompatibleFamilies(t *testing.T) {
	_, err := Convolve(distuv.Normal{Mu: 0, Sigma: 1}, distuv.Uniform{Min: 0, Max: 1})
	require.Error(t, err)
	assert.True(t, core.IsUnsupportedError(err))
	assert.Contains(t, err.Error(), "Normal")
	assert.Contains(t, err.Error(), "Uniform")

	_, err = Convolve(distuv.Bernoulli{P: 0.2}, distuv.Bernoulli{P: 0.3})
	assert.True(t, core.IsUnsupportedError(err))
}

func TestConvolve_Families(t *testing.T) {
	tests := []struct {
		name string
		in   []Distribution
		want Distribution
	}{
		{"poisson", []Distribution{distuv.Poisson{Lambda: 1}, distuv.Poisson{Lambda: 2.5}}, distuv.Poisson{Lambda: 3.5}},
		{"bernoulli", []Distribution{distuv.Bernoulli{P: 0.3}, distuv.Bernoulli{P: 0.3}, distuv.Bernoulli{P: 0.3}}, distuv.Binomial{N: 3, P: 0.3}},
		{"binomial", []Distribution{distuv.Binomial{N: 4, P: 0.5}, distuv.Binomial{N: 6, P: 0.5}}, distuv.Binomial{N: 10, P: 0.5}},
		{"gamma", []Distribution{distuv.Gamma{Alpha: 1, Beta: 2}, distuv.Exponential{Rate: 2}}, distuv.Gamma{Alpha: 2, Beta: 2}},
		{"exponential", []Distribution{distuv.Exponential{Rate: 3}, distuv.Exponential{Rate: 3}}, distuv.Gamma{Alpha: 2, Beta: 3}},
		{"chisquared", []Distribution{distuv.ChiSquared{K: 2}, distuv.ChiSquared{K: 3}}, distuv.ChiSquared{K: 5}},
		{"zero identity", []Distribution{Zero(), distuv.Poisson{Lambda: 2}}, distuv.Poisson{Lambda: 2}},
		{"shifted normal", []Distribution{PointMass{Value: 2}, distuv.Normal{Mu: 1, Sigma: 3}}, distuv.Normal{Mu: 3, Sigma: 3}},
		{"point masses", []Distribution{PointMass{Value: 2}, PointMass{Value: -0.5}}, PointMass{Value: 1.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convolve(tt.in...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestConvolve_OrderIndependent checks that the fold order does not change
// the result for supported families.
func TestConvolve_OrderIndependent(t *testing.T) {
	groups := [][]Distribution{
		{distuv.Normal{Mu: 1, Sigma: 1}, distuv.Normal{Mu: -2, Sigma: 2}, distuv.Normal{Mu: 0.5, Sigma: 0.5}},
		{distuv.Bernoulli{P: 0.4}, distuv.Binomial{N: 3, P: 0.4}, distuv.Bernoulli{P: 0.4}},
		{distuv.Exponential{Rate: 1}, distuv.Gamma{Alpha: 3, Beta: 1}, distuv.Exponential{Rate: 1}},
		{Zero(), distuv.Normal{Mu: 0, Sigma: 1}, PointMass{Value: 1}},
	}

	for _, g := range groups {
		forward, err := Convolve(g...)
		require.NoError(t, err)
		backward, err := Convolve(g[2], g[1], g[0])
		require.NoError(t, err)
		middle, err := Convolve(g[1], g[0], g[2])
		require.NoError(t, err)

		assert.InDelta(t, forward.Mean(), backward.Mean(), 1e-9)
		assert.InDelta(t, forward.Variance(), backward.Variance(), 1e-9)
		assert.InDelta(t, forward.Mean(), middle.Mean(), 1e-9)
		assert.InDelta(t, forward.Variance(), middle.Variance(), 1e-9)
		assert.Equal(t, Family(forward), Family(backward))
	}
}

func TestDraw_SeededReproducible(t *testing.T) {
	d := distuv.Normal{Mu: 5, Sigma: 2}
	a := Draw(d, 50, rand.NewPCG(1, 2))
	b := Draw(d, 50, rand.NewPCG(1, 2))
	assert.Equal(t, a, b)

	big := Draw(d, 5000, rand.NewPCG(3, 4))
	mean, err := stats.Mean(big)
	require.NoError(t, err)
	assert.InDelta(t, 5, mean, 0.15)
}

func TestDrawEach_Heterogeneous(t *testing.T) {
	ds := Each(4, func(i int) Distribution { return PointMass{Value: float64(i)} })
	assert.Equal(t, []float64{0, 1, 2, 3}, DrawEach(ds, nil))
	assert.Equal(t, []float64{0, 1, 2, 3}, Means(ds))
	assert.Equal(t, []float64{0, 0, 0, 0}, Variances(ds))

	dens, err := Densities(ds, []float64{0, 5, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 1, 1}, dens)

	_, err = Densities(ds, []float64{1})
	assert.True(t, core.IsShapeError(err))
}
