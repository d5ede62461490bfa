package dgp

import (
	"fmt"
	"math/rand/v2"

	"gocausal/domain/core"
	"gocausal/domain/dist"
	"gocausal/domain/summary"
	"gocausal/domain/table"
)

// Realization is one evaluated DGP, partitioned for table construction.
type Realization struct {
	// Columns holds Distribution-kind outputs in declaration order.
	Columns []table.Column
	// Arrays holds Transform and OpaqueRandom outputs.
	Arrays map[string]any
	// Summaries holds network-summary descriptors; their realized values
	// are recomputed from the table on demand.
	Summaries map[string]summary.Summary
	// Split maps a joint step to the sub-columns its draw was expanded into.
	Split map[string][]string
}

// Rand evaluates every step in order for n units. Nothing is returned when
// any step fails. A nil src draws from the process-wide generator.
func Rand(d *DGP, n int, src rand.Source) (*Realization, error) {
	if n < 0 {
		return nil, core.NewShapeError("cannot draw %d rows", n)
	}

	env := NewEnv(n, src)
	out := &Realization{
		Arrays:    make(map[string]any),
		Summaries: make(map[string]summary.Summary),
		Split:     make(map[string][]string),
	}

	for _, s := range d.steps {
		v, err := s.Generator(env)
		if err != nil {
			return nil, core.NewGeneratorError(s.Name, err)
		}

		switch s.Kind {
		case Distribution:
			cols, err := realize(s, v, n, src)
			if err != nil {
				return nil, err
			}
			for _, c := range cols {
				if c.Name != s.Name && (d.Has(c.Name) || env.Has(c.Name)) {
					return nil, core.NewValidationError("steps", fmt.Sprintf("joint step %q expands to %q, which is already declared", s.Name, c.Name))
				}
				env.Bind(c.Name, c.Values)
				out.Columns = append(out.Columns, c)
			}
			if len(cols) > 1 {
				for _, c := range cols {
					out.Split[s.Name] = append(out.Split[s.Name], c.Name)
				}
			}

		case NetworkSummary, Transform:
			if sum, ok := v.(summary.Summary); ok {
				vals, err := sum.Evaluate(env)
				if err != nil {
					return nil, core.NewGeneratorError(s.Name, err)
				}
				env.Bind(s.Name, vals)
				out.Summaries[s.Name] = sum
				continue
			}
			if s.Kind == NetworkSummary {
				return nil, core.NewKindMismatchError(s.Name, s.Kind.String(), v)
			}
			env.Bind(s.Name, v)
			out.Arrays[s.Name] = v

		case OpaqueRandom:
			env.Bind(s.Name, v)
			out.Arrays[s.Name] = v
		}
	}
	return out, nil
}

// realize turns a Distribution-kind generator result into columns.
func realize(s Step, v any, n int, src rand.Source) ([]table.Column, error) {
	switch x := v.(type) {
	case dist.Distribution:
		return []table.Column{{Name: s.Name, Values: dist.Draw(x, n, src)}}, nil

	case []dist.Distribution:
		if len(x) != n {
			return nil, core.NewShapeError("step %q returned %d distributions for %d units", s.Name, len(x), n)
		}
		return []table.Column{{Name: s.Name, Values: dist.DrawEach(x, src)}}, nil

	case dist.Joint:
		if x.Dim() < 1 {
			return nil, core.NewKindMismatchError(s.Name, s.Kind.String(), v)
		}
		draws := dist.DrawJoint(x, n, src)
		if len(draws) == 1 {
			return []table.Column{{Name: s.Name, Values: draws[0]}}, nil
		}
		cols := make([]table.Column, len(draws))
		for k, d := range draws {
			cols[k] = table.Column{Name: SubColumn(s.Name, k), Values: d}
		}
		return cols, nil

	default:
		return nil, core.NewKindMismatchError(s.Name, s.Kind.String(), v)
	}
}

// SubColumn names coordinate k (zero-based) of a split joint step.
func SubColumn(name string, k int) string {
	return fmt.Sprintf("%s_%d", name, k+1)
}
