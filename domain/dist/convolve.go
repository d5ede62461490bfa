package dist

import (
	"fmt"
	"math"

	"gocausal/domain/core"

	"gonum.org/v1/gonum/stat/distuv"
)

// Convolve returns the distribution of the sum of independent draws from ds.
// An empty list yields the zero point mass and a singleton is returned
// unchanged. Pairs are folded left to right; families without a closed-form
// sum return ErrUnsupported.
func Convolve(ds ...Distribution) (Distribution, error) {
	if len(ds) == 0 {
		return Zero(), nil
	}
	acc := ds[0]
	for _, d := range ds[1:] {
		next, err := convolve2(acc, d)
		if err != nil {
			return nil, err
		}
		acc = next
	}
	return acc, nil
}

func convolve2(a, b Distribution) (Distribution, error) {
	if d, ok := convolveOrdered(a, b); ok {
		return d, nil
	}
	if d, ok := convolveOrdered(b, a); ok {
		return d, nil
	}
	return nil, core.NewUnsupportedError(fmt.Sprintf("no closed-form convolution of %s and %s", Family(a), Family(b)))
}

// convolveOrdered handles the rules for one argument order; convolve2 tries
// both so every rule is symmetric.
func convolveOrdered(a, b Distribution) (Distribution, bool) {
	if pm, ok := a.(PointMass); ok {
		return shift(b, pm.Value)
	}

	switch x := a.(type) {
	case distuv.Normal:
		if y, ok := b.(distuv.Normal); ok {
			return distuv.Normal{Mu: x.Mu + y.Mu, Sigma: math.Hypot(x.Sigma, y.Sigma)}, true
		}
	case distuv.Poisson:
		if y, ok := b.(distuv.Poisson); ok {
			return distuv.Poisson{Lambda: x.Lambda + y.Lambda}, true
		}
	case distuv.Bernoulli:
		switch y := b.(type) {
		case distuv.Bernoulli:
			if x.P == y.P {
				return distuv.Binomial{N: 2, P: x.P}, true
			}
		case distuv.Binomial:
			if x.P == y.P {
				return distuv.Binomial{N: y.N + 1, P: x.P}, true
			}
		}
	case distuv.Binomial:
		if y, ok := b.(distuv.Binomial); ok && x.P == y.P {
			return distuv.Binomial{N: x.N + y.N, P: x.P}, true
		}
	case distuv.Gamma:
		switch y := b.(type) {
		case distuv.Gamma:
			if x.Beta == y.Beta {
				return distuv.Gamma{Alpha: x.Alpha + y.Alpha, Beta: x.Beta}, true
			}
		case distuv.Exponential:
			if x.Beta == y.Rate {
				return distuv.Gamma{Alpha: x.Alpha + 1, Beta: x.Beta}, true
			}
		}
	case distuv.Exponential:
		if y, ok := b.(distuv.Exponential); ok && x.Rate == y.Rate {
			return distuv.Gamma{Alpha: 2, Beta: x.Rate}, true
		}
	case distuv.ChiSquared:
		if y, ok := b.(distuv.ChiSquared); ok {
			return distuv.ChiSquared{K: x.K + y.K}, true
		}
	}
	return nil, false
}

// shift adds the constant c to d. Adding zero is the identity for every
// family; other shifts exist only for location families.
func shift(d Distribution, c float64) (Distribution, bool) {
	if c == 0 {
		return d, true
	}
	switch v := d.(type) {
	case PointMass:
		return PointMass{Value: v.Value + c}, true
	case distuv.Normal:
		return distuv.Normal{Mu: v.Mu + c, Sigma: v.Sigma}, true
	case distuv.Uniform:
		return distuv.Uniform{Min: v.Min + c, Max: v.Max + c}, true
	}
	return nil, false
}
