package dgp

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"gocausal/domain/core"

	"gonum.org/v1/gonum/mat"
)

// Env is the append-only environment a generator reads from: every value
// bound by an earlier step, in binding order. It is scoped to one
// evaluation and never shared across calls.
type Env struct {
	n      int
	src    rand.Source
	names  []string
	values map[string]any
}

// NewEnv returns an empty environment for n units. src may be nil.
func NewEnv(n int, src rand.Source) *Env {
	return &Env{n: n, src: src, values: make(map[string]any)}
}

// N returns the number of units being generated.
func (e *Env) N() int { return e.n }

// Source returns the random source of the evaluation, or nil when the
// process-wide generator is in use.
func (e *Env) Source() rand.Source { return e.src }

// Names returns the bound names in binding order.
func (e *Env) Names() []string { return slices.Clone(e.names) }

// Has reports whether name is bound.
func (e *Env) Has(name string) bool {
	_, ok := e.values[name]
	return ok
}

// Bind binds name to v. Rebinding keeps the original position.
func (e *Env) Bind(name string, v any) {
	if _, ok := e.values[name]; !ok {
		e.names = append(e.names, name)
	}
	e.values[name] = v
}

// Value returns the raw bound value.
func (e *Env) Value(name string) (any, error) {
	v, ok := e.values[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not bound", core.ErrVariableNotFound, name)
	}
	return v, nil
}

// Column returns the bound value as a column.
func (e *Env) Column(name string) ([]float64, error) {
	v, err := e.Value(name)
	if err != nil {
		return nil, err
	}
	col, ok := v.([]float64)
	if !ok {
		return nil, core.NewValidationError("environment", fmt.Sprintf("%q is a %T, not a column", name, v))
	}
	return col, nil
}

// Matrix returns the bound value as a matrix.
func (e *Env) Matrix(name string) (mat.Matrix, error) {
	v, err := e.Value(name)
	if err != nil {
		return nil, err
	}
	m, ok := v.(mat.Matrix)
	if !ok {
		return nil, core.NewValidationError("environment", fmt.Sprintf("%q is a %T, not a matrix", name, v))
	}
	return m, nil
}

// Float returns the bound value as a scalar.
func (e *Env) Float(name string) (float64, error) {
	v, err := e.Value(name)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	default:
		return 0, core.NewValidationError("environment", fmt.Sprintf("%q is a %T, not a scalar", name, v))
	}
}
