// Package summary describes network-aggregate variables: a column computed,
// for every unit, by aggregating a target variable over the unit's
// neighbours in an auxiliary adjacency matrix.
package summary

import (
	"fmt"
	"math"

	"gocausal/domain/core"

	"gonum.org/v1/gonum/mat"
)

// Kind is the aggregation applied over a unit's neighbours.
type Kind int

const (
	KindSum Kind = iota
	KindProduct
	KindMean
	KindMaximum
	KindMinimum
	KindNeighborCount
)

func (k Kind) String() string {
	switch k {
	case KindSum:
		return "sum"
	case KindProduct:
		return "product"
	case KindMean:
		return "mean"
	case KindMaximum:
		return "maximum"
	case KindMinimum:
		return "minimum"
	case KindNeighborCount:
		return "neighbor_count"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Source exposes the values a summary is evaluated against: row-aligned
// columns and auxiliary matrices.
type Source interface {
	Column(name string) ([]float64, error)
	Matrix(name string) (mat.Matrix, error)
}

// Summary is a network-summary descriptor. The output column name is the key
// under which the descriptor is registered, not part of the descriptor.
type Summary struct {
	kind   Kind
	target string
	matrix string
}

// Sum adds target over neighbours. Like every summary it treats any nonzero
// matrix entry as an edge, so edge weights do not scale the sum; an empty
// sum is 0.
func Sum(target, matrix string) Summary { return Summary{kind: KindSum, target: target, matrix: matrix} }

// Product multiplies target over neighbours; an empty product is 1.
func Product(target, matrix string) Summary {
	return Summary{kind: KindProduct, target: target, matrix: matrix}
}

// Mean averages target over neighbours; units without neighbours get 0.
func Mean(target, matrix string) Summary { return Summary{kind: KindMean, target: target, matrix: matrix} }

// Maximum is the largest neighbour value; units without neighbours get 0.
func Maximum(target, matrix string) Summary {
	return Summary{kind: KindMaximum, target: target, matrix: matrix}
}

// Minimum is the smallest neighbour value; units without neighbours get 0.
func Minimum(target, matrix string) Summary {
	return Summary{kind: KindMinimum, target: target, matrix: matrix}
}

// NeighborCount counts neighbours. It has no target variable.
func NeighborCount(matrix string) Summary {
	return Summary{kind: KindNeighborCount, matrix: matrix}
}

func (s Summary) Kind() Kind         { return s.kind }
func (s Summary) Target() string     { return s.target }
func (s Summary) MatrixName() string { return s.matrix }

func (s Summary) String() string {
	if s.target == "" {
		return fmt.Sprintf("%s(%s)", s.kind, s.matrix)
	}
	return fmt.Sprintf("%s(%s, %s)", s.kind, s.target, s.matrix)
}

// Evaluate computes the summary column against src.
func (s Summary) Evaluate(src Source) ([]float64, error) {
	m, err := src.Matrix(s.matrix)
	if err != nil {
		return nil, err
	}
	r, c := m.Dims()
	if r != c {
		return nil, core.NewShapeError("summary %s: matrix %q is %dx%d, want square", s, s.matrix, r, c)
	}
	n := r

	var x []float64
	if s.target != "" {
		x, err = src.Column(s.target)
		if err != nil {
			return nil, err
		}
		if len(x) != n {
			return nil, core.NewShapeError("summary %s: column %q has %d rows, matrix has %d", s, s.target, len(x), n)
		}
	} else if s.kind != KindNeighborCount {
		return nil, core.NewValidationError("summary", fmt.Sprintf("%s requires a target variable", s.kind))
	}

	if n == 0 {
		return []float64{}, nil
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		nb := Neighbors(m, i)
		switch s.kind {
		case KindNeighborCount:
			out[i] = float64(len(nb))
		case KindSum:
			for _, j := range nb {
				out[i] += x[j]
			}
		case KindProduct:
			p := 1.0
			for _, j := range nb {
				p *= x[j]
			}
			out[i] = p
		case KindMean:
			if len(nb) == 0 {
				continue
			}
			total := 0.0
			for _, j := range nb {
				total += x[j]
			}
			out[i] = total / float64(len(nb))
		case KindMaximum, KindMinimum:
			if len(nb) == 0 {
				continue
			}
			best := x[nb[0]]
			for _, j := range nb[1:] {
				if s.kind == KindMaximum {
					best = math.Max(best, x[j])
				} else {
					best = math.Min(best, x[j])
				}
			}
			out[i] = best
		default:
			return nil, core.NewUnsupportedError(fmt.Sprintf("summary kind %s", s.kind))
		}
	}
	return out, nil
}

// Neighbors lists the columns j with a nonzero entry in row i. Edge weights
// are ignored: any nonzero entry marks a neighbour.
func Neighbors(m mat.Matrix, i int) []int {
	_, c := m.Dims()
	var out []int
	for j := 0; j < c; j++ {
		if m.At(i, j) != 0 {
			out = append(out, j)
		}
	}
	return out
}
