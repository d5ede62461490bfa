// Package dist defines the probability-distribution contract used by the
// data-generating process: sampling, moments and density for univariate
// families (backed by gonum's distuv), joint draws (distmv), a degenerate
// point mass, and closed-form convolution.
package dist

import (
	"fmt"
	"math/rand/v2"

	"gocausal/domain/core"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// Distribution is a univariate distribution that can be sampled and queried.
// Every distuv family used by this module satisfies it by value.
type Distribution interface {
	Rand() float64
	Mean() float64
	Variance() float64
	Prob(x float64) float64
}

// Joint is a multivariate distribution producing one Dim-length vector per
// draw. *distmv.Normal satisfies it and is reseeded by DrawJoint; other
// implementations keep their own source, so seeded sampling is only
// reproducible if they were built with a seeded source.
type Joint interface {
	Dim() int
	Rand(x []float64) []float64
}

// PointMass is the degenerate distribution placing all mass on Value.
type PointMass struct {
	Value float64
}

// Zero is the point mass at zero: the distribution of an empty sum.
func Zero() PointMass { return PointMass{} }

func (p PointMass) Rand() float64     { return p.Value }
func (p PointMass) Mean() float64     { return p.Value }
func (p PointMass) Variance() float64 { return 0 }

// Prob is the mass at x.
func (p PointMass) Prob(x float64) float64 {
	if x == p.Value {
		return 1
	}
	return 0
}

// Each builds n per-unit distributions.
func Each(n int, f func(i int) Distribution) []Distribution {
	out := make([]Distribution, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

// Family names the distribution family of d for error messages.
func Family(d Distribution) string {
	switch d.(type) {
	case PointMass:
		return "PointMass"
	case distuv.Normal:
		return "Normal"
	case distuv.Bernoulli:
		return "Bernoulli"
	case distuv.Binomial:
		return "Binomial"
	case distuv.Poisson:
		return "Poisson"
	case distuv.Gamma:
		return "Gamma"
	case distuv.Exponential:
		return "Exponential"
	case distuv.ChiSquared:
		return "ChiSquared"
	case distuv.Uniform:
		return "Uniform"
	case distuv.Beta:
		return "Beta"
	case distuv.LogNormal:
		return "LogNormal"
	default:
		return fmt.Sprintf("%T", d)
	}
}

// WithSource returns d rebound to draw from src. Families that carry no
// source field are returned unchanged and sample from their own state.
func WithSource(d Distribution, src rand.Source) Distribution {
	if src == nil {
		return d
	}
	switch v := d.(type) {
	case distuv.Normal:
		v.Src = src
		return v
	case distuv.Bernoulli:
		v.Src = src
		return v
	case distuv.Binomial:
		v.Src = src
		return v
	case distuv.Poisson:
		v.Src = src
		return v
	case distuv.Gamma:
		v.Src = src
		return v
	case distuv.Exponential:
		v.Src = src
		return v
	case distuv.ChiSquared:
		v.Src = src
		return v
	case distuv.Uniform:
		v.Src = src
		return v
	case distuv.Beta:
		v.Src = src
		return v
	case distuv.LogNormal:
		v.Src = src
		return v
	default:
		return d
	}
}

// Draw takes n independent samples from d.
func Draw(d Distribution, n int, src rand.Source) []float64 {
	d = WithSource(d, src)
	out := make([]float64, n)
	for i := range out {
		out[i] = d.Rand()
	}
	return out
}

// DrawEach takes one sample from every distribution in ds.
func DrawEach(ds []Distribution, src rand.Source) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i] = WithSource(d, src).Rand()
	}
	return out
}

// DrawJoint takes n independent vectors from j and returns them column-wise:
// result[k][i] is coordinate k of draw i. A non-nil src replaces the source
// of a *distmv.Normal; other joints draw from the source they were built
// with.
func DrawJoint(j Joint, n int, src rand.Source) [][]float64 {
	j = jointWithSource(j, src)
	dim := j.Dim()
	cols := make([][]float64, dim)
	for k := range cols {
		cols[k] = make([]float64, n)
	}
	buf := make([]float64, dim)
	for i := 0; i < n; i++ {
		v := j.Rand(buf)
		for k := 0; k < dim; k++ {
			cols[k][i] = v[k]
		}
	}
	return cols
}

func jointWithSource(j Joint, src rand.Source) Joint {
	x, ok := j.(*distmv.Normal)
	if !ok || src == nil {
		return j
	}
	var cov mat.SymDense
	x.CovarianceMatrix(&cov)
	rebound, ok := distmv.NewNormal(x.Mean(nil), &cov, src)
	if !ok {
		return j
	}
	return rebound
}

// Means returns the expectation of every distribution.
func Means(ds []Distribution) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i] = d.Mean()
	}
	return out
}

// Variances returns the variance of every distribution.
func Variances(ds []Distribution) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i] = d.Variance()
	}
	return out
}

// Densities evaluates every distribution at the matching observed value.
func Densities(ds []Distribution, x []float64) ([]float64, error) {
	if len(ds) != len(x) {
		return nil, core.NewShapeError("%d distributions for %d observations", len(ds), len(x))
	}
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i] = d.Prob(x[i])
	}
	return out, nil
}
