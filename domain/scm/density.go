package scm

import (
	"fmt"
	"slices"

	"gocausal/domain/core"
	"gocausal/domain/dgp"
	"gocausal/domain/dist"
	"gocausal/domain/summary"
	"gocausal/domain/table"
)

// Condensity returns, for every row of t, the distribution of step name
// conditional on the values t holds for the steps preceding it. Nothing is
// resampled: intervened columns in t propagate into the result.
func (s *SCM) Condensity(t *table.Table, name string) ([]dist.Distribution, error) {
	idx, ok := s.dgp.Index(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrStepNotFound, name)
	}
	return s.condensity(t, idx)
}

// Conmean returns the conditional mean of step name for every row of t.
func (s *SCM) Conmean(t *table.Table, name string) ([]float64, error) {
	ds, err := s.Condensity(t, name)
	if err != nil {
		return nil, err
	}
	return dist.Means(ds), nil
}

// Convar returns the conditional variance of step name for every row of t.
func (s *SCM) Convar(t *table.Table, name string) ([]float64, error) {
	ds, err := s.Condensity(t, name)
	if err != nil {
		return nil, err
	}
	return dist.Variances(ds), nil
}

// Propensity evaluates the conditional density (or mass) of step name at
// each row's observed value.
func (s *SCM) Propensity(t *table.Table, name string) ([]float64, error) {
	ds, err := s.Condensity(t, name)
	if err != nil {
		return nil, err
	}
	obs, err := observed(t, name)
	if err != nil {
		return nil, err
	}
	return dist.Densities(ds, obs)
}

func (s *SCM) condensity(t *table.Table, idx int) ([]dist.Distribution, error) {
	step := s.dgp.At(idx)
	if step.Kind == dgp.OpaqueRandom {
		return nil, core.NewUnsupportedError(fmt.Sprintf("step %q is opaque random and has no density", step.Name))
	}

	env, err := s.environment(t, idx)
	if err != nil {
		return nil, err
	}
	v, err := step.Generator(env)
	if err != nil {
		return nil, core.NewGeneratorError(step.Name, err)
	}

	n := t.NRow()
	switch step.Kind {
	case dgp.Distribution:
		switch x := v.(type) {
		case dist.Distribution:
			return dist.Each(n, func(int) dist.Distribution { return x }), nil
		case []dist.Distribution:
			if len(x) != n {
				return nil, core.NewShapeError("step %q returned %d distributions for %d rows", step.Name, len(x), n)
			}
			return slices.Clone(x), nil
		case dist.Joint:
			return nil, core.NewUnsupportedError(fmt.Sprintf("step %q is a joint distribution", step.Name))
		default:
			return nil, core.NewKindMismatchError(step.Name, step.Kind.String(), v)
		}

	case dgp.NetworkSummary:
		sum, ok := v.(summary.Summary)
		if !ok {
			return nil, core.NewKindMismatchError(step.Name, step.Kind.String(), v)
		}
		return s.summaryDensity(t, env, idx, sum)

	case dgp.Transform:
		if sum, ok := v.(summary.Summary); ok {
			return s.summaryDensity(t, env, idx, sum)
		}
		return nil, core.NewUnsupportedError(fmt.Sprintf("transform step %q is not a network summary", step.Name))
	}
	return nil, core.NewUnsupportedError(fmt.Sprintf("step %q has kind %s", step.Name, step.Kind))
}

// summaryDensity convolves, for every unit, the marginal distributions of
// its neighbours' target values. Any nonzero matrix entry counts as a
// neighbour; weights are ignored. Units without neighbours get the point
// mass at zero.
func (s *SCM) summaryDensity(t *table.Table, env *dgp.Env, idx int, sum summary.Summary) ([]dist.Distribution, error) {
	name := s.dgp.At(idx).Name
	if sum.Kind() != summary.KindSum {
		return nil, core.NewUnsupportedError(fmt.Sprintf("no closed-form density for %s summary %q", sum.Kind(), name))
	}

	ti, ok := s.dgp.Index(sum.Target())
	if !ok {
		return nil, fmt.Errorf("summary %q: %w: %q", name, core.ErrStepNotFound, sum.Target())
	}
	if ti >= idx {
		return nil, core.NewValidationError("summary", fmt.Sprintf("%q targets %q, which is not an earlier step", name, sum.Target()))
	}
	marginals, err := s.condensity(t, ti)
	if err != nil {
		return nil, err
	}

	m, err := env.Matrix(sum.MatrixName())
	if err != nil {
		return nil, fmt.Errorf("summary %q: %w", name, err)
	}
	n := t.NRow()
	if r, c := m.Dims(); r != n || c != n {
		return nil, core.NewShapeError("summary %q: matrix %q is %dx%d, want %dx%d", name, sum.MatrixName(), r, c, n, n)
	}

	out := make([]dist.Distribution, n)
	for i := 0; i < n; i++ {
		nb := summary.Neighbors(m, i)
		ds := make([]dist.Distribution, len(nb))
		for k, j := range nb {
			ds[k] = marginals[j]
		}
		d, err := dist.Convolve(ds...)
		if err != nil {
			return nil, fmt.Errorf("summary %q, unit %d: %w", name, i, err)
		}
		out[i] = d
	}
	return out, nil
}

// environment rebuilds the values of the steps before upto from t rather
// than from the original draw.
func (s *SCM) environment(t *table.Table, upto int) (*dgp.Env, error) {
	env := dgp.NewEnv(t.NRow(), nil)
	sums := t.Summaries()
	for i := 0; i < upto; i++ {
		name := s.dgp.At(i).Name

		if t.HasColumn(name) {
			col, err := t.Column(name)
			if err != nil {
				return nil, err
			}
			env.Bind(name, col)
			continue
		}
		if v, ok := t.Array(name); ok {
			env.Bind(name, v)
			continue
		}
		if sum, ok := sums[name]; ok {
			vals, err := sum.Evaluate(env)
			if err != nil {
				return nil, fmt.Errorf("summary %q: %w", name, err)
			}
			env.Bind(name, vals)
			continue
		}
		for k := 0; t.HasColumn(dgp.SubColumn(name, k)); k++ {
			sub := dgp.SubColumn(name, k)
			col, err := t.Column(sub)
			if err != nil {
				return nil, err
			}
			env.Bind(sub, col)
		}
	}
	return env, nil
}

func observed(t *table.Table, name string) ([]float64, error) {
	if t.HasColumn(name) {
		return t.Column(name)
	}
	if _, ok := t.Summaries()[name]; ok {
		st, err := t.Summarize()
		if err != nil {
			return nil, err
		}
		return st.Column(name)
	}
	if v, ok := t.Array(name); ok {
		if col, ok := v.([]float64); ok && len(col) == t.NRow() {
			return slices.Clone(col), nil
		}
	}
	return nil, fmt.Errorf("%w: no observed values for %q", core.ErrVariableNotFound, name)
}
