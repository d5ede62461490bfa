package table

import (
	"fmt"
	"maps"
	"slices"

	"gocausal/domain/core"
	"gocausal/domain/graph"
	"gocausal/domain/summary"

	"gonum.org/v1/gonum/mat"
)

// Select projects the table onto the named columns and summaries. Summaries
// without a target variable depend only on arrays and are always retained.
// A selected summary whose target is not selected is materialized as a data
// column. Labels and causes are restricted to what remains.
func (t *Table) Select(names ...string) (*Table, error) {
	if err := t.checkVariables(names); err != nil {
		return nil, err
	}
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}

	var cols []string
	for _, n := range names {
		if _, ok := t.data[n]; ok && !slices.Contains(cols, n) {
			cols = append(cols, n)
		}
	}
	sums := make(map[string]summary.Summary)
	for name, s := range t.summaries {
		if keep[name] || s.Target() == "" {
			sums[name] = s
		}
	}
	return t.project(cols, sums)
}

// Reject drops the named columns and summaries. Summaries of a rejected
// target are kept as materialized data columns.
func (t *Table) Reject(names ...string) (*Table, error) {
	if err := t.checkVariables(names); err != nil {
		return nil, err
	}
	var cols []string
	for _, n := range t.names {
		if !slices.Contains(names, n) {
			cols = append(cols, n)
		}
	}
	sums := make(map[string]summary.Summary)
	for name, s := range t.summaries {
		if !slices.Contains(names, name) {
			sums[name] = s
		}
	}
	return t.project(cols, sums)
}

func (t *Table) checkVariables(names []string) error {
	var missing []string
	for _, n := range names {
		if !t.isVariable(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", core.ErrVariableNotFound, missing)
	}
	return nil
}

func (t *Table) project(cols []string, sums map[string]summary.Summary) (*Table, error) {
	orphans := orphaned(cols, sums)
	var computed map[string][]float64
	if len(orphans) > 0 {
		var err error
		if computed, err = t.evaluateSummaries(); err != nil {
			return nil, err
		}
		for _, name := range orphans {
			if !slices.Contains(cols, name) {
				cols = append(cols, name)
			}
			delete(sums, name)
		}
	}

	out := &Table{
		names:     cols,
		data:      make(map[string][]float64, len(cols)),
		n:         t.n,
		arrays:    maps.Clone(t.arrays),
		summaries: sums,
	}
	for _, c := range cols {
		if v, ok := computed[c]; ok {
			out.data[c] = v
			continue
		}
		out.data[c] = slices.Clone(t.data[c])
	}
	for _, n := range t.treatment {
		if out.isVariable(n) {
			out.treatment = append(out.treatment, n)
		}
	}
	for _, n := range t.response {
		if out.isVariable(n) {
			out.response = append(out.response, n)
		}
	}
	out.causes = make(graph.Causes)
	for k, parents := range t.causes {
		if !out.isKnown(k) {
			continue
		}
		kept := []string{}
		for _, p := range parents {
			if out.isKnown(p) {
				kept = append(kept, p)
			}
		}
		out.causes[k] = kept
	}
	if err := out.validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// orphaned lists, in sorted order, the summaries whose target is neither a
// kept column nor a kept summary.
func orphaned(cols []string, sums map[string]summary.Summary) []string {
	var out []string
	for _, name := range sortedKeys(sums) {
		target := sums[name].Target()
		if target == "" || slices.Contains(cols, target) {
			continue
		}
		if _, ok := sums[target]; ok {
			continue
		}
		out = append(out, name)
	}
	return out
}

// Subset returns the rows at idx, in order. Square n×n arrays are sliced
// along both dimensions, n-row matrices and length-n vectors along rows;
// other arrays are carried unchanged. Duplicate indices are rejected when
// the table carries an adjacency-shaped array.
func (t *Table) Subset(idx []int) (*Table, error) {
	for _, i := range idx {
		if i < 0 || i >= t.n {
			return nil, core.NewShapeError("index %d out of range [0, %d)", i, t.n)
		}
	}
	if t.hasAdjacency() && hasDuplicates(idx) {
		return nil, core.NewShapeError("duplicate indices would corrupt adjacency arrays")
	}

	out := &Table{
		names:     slices.Clone(t.names),
		data:      make(map[string][]float64, len(t.names)),
		n:         len(idx),
		treatment: slices.Clone(t.treatment),
		response:  slices.Clone(t.response),
		causes:    t.causes.Clone(),
		arrays:    make(map[string]any, len(t.arrays)),
		summaries: maps.Clone(t.summaries),
	}
	for _, n := range t.names {
		col := t.data[n]
		sub := make([]float64, len(idx))
		for k, i := range idx {
			sub[k] = col[i]
		}
		out.data[n] = sub
	}
	for name, v := range t.arrays {
		out.arrays[name] = subsetArray(v, idx, t.n)
	}
	return out, nil
}

func (t *Table) hasAdjacency() bool {
	for _, v := range t.arrays {
		if m, ok := v.(mat.Matrix); ok {
			if r, c := m.Dims(); r == t.n && c == t.n {
				return true
			}
		}
	}
	return false
}

func hasDuplicates(idx []int) bool {
	seen := make(map[int]bool, len(idx))
	for _, i := range idx {
		if seen[i] {
			return true
		}
		seen[i] = true
	}
	return false
}

func subsetArray(v any, idx []int, n int) any {
	switch a := v.(type) {
	case mat.Matrix:
		r, c := a.Dims()
		if r != n {
			return v
		}
		square := c == n
		cols := c
		if square {
			cols = len(idx)
		}
		if len(idx) == 0 || cols == 0 {
			return &mat.Dense{}
		}
		sub := mat.NewDense(len(idx), cols, nil)
		for ri, i := range idx {
			for cj := 0; cj < cols; cj++ {
				j := cj
				if square {
					j = idx[cj]
				}
				sub.Set(ri, cj, a.At(i, j))
			}
		}
		return sub
	case []float64:
		if len(a) != n {
			return slices.Clone(a)
		}
		sub := make([]float64, len(idx))
		for k, i := range idx {
			sub[k] = a[i]
		}
		return sub
	default:
		return v
	}
}

// Option overrides one field of a table in Replace.
type Option func(*replacement)

type replacement struct {
	cols []Column
	opts Options
}

// WithTreatment overrides the treatment labels.
func WithTreatment(names ...string) Option {
	return func(r *replacement) { r.opts.Treatment = slices.Clone(names) }
}

// WithResponse overrides the response labels.
func WithResponse(names ...string) Option {
	return func(r *replacement) { r.opts.Response = slices.Clone(names) }
}

// WithCauses overrides the causes map.
func WithCauses(c graph.Causes) Option {
	return func(r *replacement) { r.opts.Causes = c.Clone() }
}

// WithColumns replaces every data column.
func WithColumns(cols []Column) Option {
	return func(r *replacement) { r.cols = slices.Clone(cols) }
}

// WithColumn overwrites one data column, appending it when new.
func WithColumn(name string, values []float64) Option {
	return func(r *replacement) {
		for i := range r.cols {
			if r.cols[i].Name == name {
				r.cols[i].Values = values
				return
			}
		}
		r.cols = append(r.cols, Column{Name: name, Values: values})
	}
}

// WithArrays replaces every auxiliary array.
func WithArrays(arrays map[string]any) Option {
	return func(r *replacement) { r.opts.Arrays = maps.Clone(arrays) }
}

// WithArray sets one auxiliary array.
func WithArray(name string, v any) Option {
	return func(r *replacement) {
		if r.opts.Arrays == nil {
			r.opts.Arrays = map[string]any{}
		}
		r.opts.Arrays[name] = v
	}
}

// WithSummaries replaces every summary descriptor.
func WithSummaries(s map[string]summary.Summary) Option {
	return func(r *replacement) { r.opts.Summaries = maps.Clone(s) }
}

// WithSummary sets one summary descriptor.
func WithSummary(name string, s summary.Summary) Option {
	return func(r *replacement) {
		if r.opts.Summaries == nil {
			r.opts.Summaries = map[string]summary.Summary{}
		}
		r.opts.Summaries[name] = s
	}
}

// Replace returns a copy of the table with the given fields overridden. The
// result is validated as a fresh table, so a new causes map must still cover
// the (possibly unchanged) treatment and response.
func (t *Table) Replace(opts ...Option) (*Table, error) {
	r := &replacement{
		cols: t.Columns(),
		opts: Options{
			Treatment: t.Treatment(),
			Response:  t.Response(),
			Causes:    t.Causes(),
			Arrays:    maps.Clone(t.arrays),
			Summaries: maps.Clone(t.summaries),
		},
	}
	for _, o := range opts {
		o(r)
	}
	return New(r.cols, r.opts)
}

// Intervention maps a table to replacement values for some of its treatment
// columns.
type Intervention func(t *Table) (map[string][]float64, error)

// Intervene applies fn and returns the table with the replaced treatment
// columns. Materialized summary columns are recomputed from the new values
// and cannot be replaced directly. Everything else, including the causes
// map, is unchanged.
func (t *Table) Intervene(fn Intervention) (*Table, error) {
	repl, err := fn(t)
	if err != nil {
		return nil, fmt.Errorf("intervention failed: %w", err)
	}
	if len(repl) == 0 || len(repl) > len(t.treatment) {
		return nil, core.NewShapeError("intervention replaced %d columns, table has %d treatments", len(repl), len(t.treatment))
	}

	var opts []Option
	for _, name := range sortedKeys(repl) {
		if !slices.Contains(t.treatment, name) {
			return nil, core.NewValidationError("intervention", fmt.Sprintf("%q is not a treatment", name))
		}
		if _, ok := t.summaries[name]; ok {
			return nil, core.NewValidationError("intervention", fmt.Sprintf("%q is a network summary and follows its target", name))
		}
		if len(repl[name]) != t.n {
			return nil, core.NewShapeError("intervention on %q has %d rows, want %d", name, len(repl[name]), t.n)
		}
		opts = append(opts, WithColumn(name, repl[name]))
	}
	out, err := t.Replace(opts...)
	if err != nil {
		return nil, err
	}
	if err := out.refreshSummaries(); err != nil {
		return nil, err
	}
	return out, nil
}

// refreshSummaries recomputes summary columns that have been materialized
// as data.
func (t *Table) refreshSummaries() error {
	stale := false
	for name := range t.summaries {
		if _, ok := t.data[name]; ok {
			stale = true
			break
		}
	}
	if !stale {
		return nil
	}
	values, err := t.evaluateSummaries()
	if err != nil {
		return err
	}
	for name, v := range values {
		if _, ok := t.data[name]; ok {
			t.data[name] = v
		}
	}
	return nil
}
