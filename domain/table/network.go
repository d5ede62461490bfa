package table

import (
	"fmt"
	"maps"
	"slices"

	"gocausal/domain/core"

	"gonum.org/v1/gonum/mat"
)

// AdjacencyMatrix returns the 0/1 n×n union of every array referenced by a
// summary descriptor. Without any such array each unit is its own sole
// neighbour and the identity is returned.
func (t *Table) AdjacencyMatrix() (*mat.Dense, error) {
	if t.n == 0 {
		return &mat.Dense{}, nil
	}
	adj := mat.NewDense(t.n, t.n, nil)
	found := false
	for _, name := range t.SummaryNames() {
		m, err := t.matrix(t.summaries[name].MatrixName())
		if err != nil {
			return nil, err
		}
		if r, c := m.Dims(); r != t.n || c != t.n {
			return nil, core.NewShapeError("array %q is %dx%d, want %dx%d", t.summaries[name].MatrixName(), r, c, t.n, t.n)
		}
		found = true
		for i := 0; i < t.n; i++ {
			for j := 0; j < t.n; j++ {
				if m.At(i, j) != 0 {
					adj.Set(i, j, 1)
				}
			}
		}
	}
	if !found {
		for i := 0; i < t.n; i++ {
			adj.Set(i, i, 1)
		}
	}
	return adj, nil
}

// DependencyMatrix marks units i and j as dependent when they are equal,
// adjacent, or share a neighbour: A ∪ A² ∪ I.
func (t *Table) DependencyMatrix() (*mat.Dense, error) {
	adj, err := t.AdjacencyMatrix()
	if err != nil || t.n == 0 {
		return adj, err
	}
	var dep mat.Dense
	dep.Mul(adj, adj)
	dep.Add(&dep, adj)
	dep.Apply(func(i, j int, v float64) float64 {
		if v != 0 || i == j {
			return 1
		}
		return 0
	}, &dep)
	return &dep, nil
}

// Summarize materializes every summary descriptor as a data column and
// extends the causal labels: a summary of a treatment becomes a treatment, a
// summary of a response becomes a response, and a summary that is not a key
// of the causes map inherits its target's parents. A summary absent from the
// causes map altogether also becomes a parent of its target's children.
func (t *Table) Summarize() (*Table, error) {
	values, err := t.evaluateSummaries()
	if err != nil {
		return nil, err
	}

	out := &Table{
		names:     slices.Clone(t.names),
		data:      make(map[string][]float64, len(t.names)+len(values)),
		n:         t.n,
		treatment: slices.Clone(t.treatment),
		response:  slices.Clone(t.response),
		causes:    t.causes.Clone(),
		arrays:    maps.Clone(t.arrays),
		summaries: maps.Clone(t.summaries),
	}
	for _, n := range t.names {
		out.data[n] = slices.Clone(t.data[n])
	}

	for _, name := range t.SummaryNames() {
		if !slices.Contains(out.names, name) {
			out.names = append(out.names, name)
		}
		out.data[name] = values[name]

		target := t.summaries[name].Target()
		if target == "" {
			continue
		}
		if slices.Contains(t.treatment, target) && !slices.Contains(out.treatment, name) {
			out.treatment = append(out.treatment, name)
		}
		if slices.Contains(t.response, target) && !slices.Contains(out.response, name) {
			out.response = append(out.response, name)
		}
		mentioned := mentions(out.causes, name)
		if _, ok := out.causes[name]; !ok {
			if parents, ok := out.causes[target]; ok {
				out.causes[name] = slices.Clone(parents)
			} else if slices.Contains(out.treatment, name) || slices.Contains(out.response, name) {
				out.causes[name] = []string{}
			}
		}
		if !mentioned {
			for _, k := range out.causes.Keys() {
				if k != name && slices.Contains(out.causes[k], target) {
					out.causes[k] = append(out.causes[k], name)
				}
			}
		}
	}

	if err := out.validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// evaluateSummaries computes all summaries, resolving summaries of
// summaries in dependency order.
func (t *Table) evaluateSummaries() (map[string][]float64, error) {
	src := &overlay{table: t, computed: make(map[string][]float64)}
	pending := t.SummaryNames()
	for len(pending) > 0 {
		var next []string
		for _, name := range pending {
			target := t.summaries[name].Target()
			if target != "" && slices.Contains(pending, target) && target != name {
				next = append(next, name)
				continue
			}
			v, err := t.summaries[name].Evaluate(src)
			if err != nil {
				return nil, fmt.Errorf("summary %q: %w", name, err)
			}
			src.computed[name] = v
		}
		if len(next) == len(pending) {
			return nil, core.NewValidationError("summaries", fmt.Sprintf("circular summary targets %v", next))
		}
		pending = next
	}
	return src.computed, nil
}

func mentions(c map[string][]string, name string) bool {
	if _, ok := c[name]; ok {
		return true
	}
	for _, ps := range c {
		if slices.Contains(ps, name) {
			return true
		}
	}
	return false
}

// overlay resolves columns from freshly computed summaries before falling
// back to the table's data.
type overlay struct {
	table    *Table
	computed map[string][]float64
}

func (o *overlay) Column(name string) ([]float64, error) {
	if v, ok := o.computed[name]; ok {
		return v, nil
	}
	if v, ok := o.table.data[name]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: column %q", core.ErrVariableNotFound, name)
}

func (o *overlay) Matrix(name string) (mat.Matrix, error) {
	return o.table.matrix(name)
}
