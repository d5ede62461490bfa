// Package table implements the causal table: row-aligned data bound to
// treatment/response labels, a causes map, auxiliary arrays such as
// adjacency matrices, and network-summary descriptors. Tables are values:
// every operation returns a new table and never mutates its receiver.
package table

import (
	"fmt"
	"maps"
	"slices"
	"sort"

	"gocausal/domain/core"
	"gocausal/domain/graph"
	"gocausal/domain/summary"

	"gonum.org/v1/gonum/mat"
)

// Column is one named, row-aligned variable.
type Column struct {
	Name   string
	Values []float64
}

// Options carries the causal labels and auxiliary structures of a table.
type Options struct {
	Treatment []string
	Response  []string
	// Causes defaults to graph.Default over the table's columns and
	// summaries when nil.
	Causes graph.Causes
	// Arrays holds auxiliary values that are not indexed by row, typically
	// n×n adjacency matrices.
	Arrays map[string]any
	// Summaries maps an output column name to the descriptor that computes it.
	Summaries map[string]summary.Summary
}

// Table is a causal table. The zero value is not usable; build with New.
type Table struct {
	names     []string
	data      map[string][]float64
	n         int
	treatment []string
	response  []string
	causes    graph.Causes
	arrays    map[string]any
	summaries map[string]summary.Summary
}

// New builds a table, validating shapes and causal labels. Column values are
// copied.
func New(cols []Column, opts Options) (*Table, error) {
	t := &Table{
		data:      make(map[string][]float64, len(cols)),
		treatment: slices.Clone(opts.Treatment),
		response:  slices.Clone(opts.Response),
		arrays:    maps.Clone(opts.Arrays),
		summaries: maps.Clone(opts.Summaries),
	}
	if t.arrays == nil {
		t.arrays = map[string]any{}
	}
	if t.summaries == nil {
		t.summaries = map[string]summary.Summary{}
	}

	for i, c := range cols {
		if _, err := core.ParseVariableName(c.Name); err != nil {
			return nil, err
		}
		if _, dup := t.data[c.Name]; dup {
			return nil, core.NewValidationError("columns", fmt.Sprintf("duplicate column %q", c.Name))
		}
		if i == 0 {
			t.n = len(c.Values)
		} else if len(c.Values) != t.n {
			return nil, core.NewShapeError("column %q has %d rows, want %d", c.Name, len(c.Values), t.n)
		}
		t.names = append(t.names, c.Name)
		t.data[c.Name] = slices.Clone(c.Values)
	}

	if opts.Causes == nil {
		t.causes = graph.Default(t.variables(), t.treatment, t.response)
	} else {
		t.causes = opts.Causes.Clone()
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// FromMap builds a table from unordered columns; columns are ordered by name.
func FromMap(data map[string][]float64, opts Options) (*Table, error) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	cols := make([]Column, len(keys))
	for i, k := range keys {
		cols[i] = Column{Name: k, Values: data[k]}
	}
	return New(cols, opts)
}

func (t *Table) validate() error {
	for name := range t.arrays {
		if _, clash := t.data[name]; clash {
			return core.NewValidationError("arrays", fmt.Sprintf("%q is both a column and an array", name))
		}
	}

	for _, name := range sortedKeys(t.summaries) {
		s := t.summaries[name]
		if _, ok := t.arrays[s.MatrixName()]; !ok {
			return core.NewUnknownNamesError(fmt.Sprintf("summary %q matrix", name), []string{s.MatrixName()})
		}
		if s.Target() != "" && !t.isVariable(s.Target()) {
			return core.NewUnknownNamesError(fmt.Sprintf("summary %q target", name), []string{s.Target()})
		}
	}

	var unknown []string
	for _, n := range append(slices.Clone(t.treatment), t.response...) {
		if !t.isVariable(n) {
			unknown = append(unknown, n)
		}
	}
	if len(unknown) > 0 {
		return core.NewUnknownNamesError("treatment/response", unknown)
	}

	unknown = nil
	for _, k := range t.causes.Keys() {
		if !t.isKnown(k) && !slices.Contains(unknown, k) {
			unknown = append(unknown, k)
		}
		for _, p := range t.causes[k] {
			if !t.isKnown(p) && !slices.Contains(unknown, p) {
				unknown = append(unknown, p)
			}
		}
	}
	if len(unknown) > 0 {
		return core.NewUnknownNamesError("causes", unknown)
	}

	return graph.Validate(t.causes, t.treatment, t.response)
}

// variables lists data columns followed by summaries not yet materialized.
func (t *Table) variables() []string {
	out := slices.Clone(t.names)
	for _, s := range sortedKeys(t.summaries) {
		if _, ok := t.data[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

func (t *Table) isVariable(name string) bool {
	if _, ok := t.data[name]; ok {
		return true
	}
	_, ok := t.summaries[name]
	return ok
}

func (t *Table) isKnown(name string) bool {
	if t.isVariable(name) {
		return true
	}
	_, ok := t.arrays[name]
	return ok
}

// NRow returns the number of rows.
func (t *Table) NRow() int { return t.n }

// NCol returns the number of data columns.
func (t *Table) NCol() int { return len(t.names) }

// Names returns the data column names in order.
func (t *Table) Names() []string { return slices.Clone(t.names) }

// HasColumn reports whether name is a data column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.data[name]
	return ok
}

// Column returns a copy of the named data column.
func (t *Table) Column(name string) ([]float64, error) {
	c, ok := t.data[name]
	if !ok {
		return nil, fmt.Errorf("%w: column %q", core.ErrVariableNotFound, name)
	}
	return slices.Clone(c), nil
}

// Columns returns copies of every data column in order.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.names))
	for i, n := range t.names {
		out[i] = Column{Name: n, Values: slices.Clone(t.data[n])}
	}
	return out
}

// Row returns the values of row i keyed by column name.
func (t *Table) Row(i int) (map[string]float64, error) {
	if i < 0 || i >= t.n {
		return nil, core.NewShapeError("row %d out of range [0, %d)", i, t.n)
	}
	row := make(map[string]float64, len(t.names))
	for _, n := range t.names {
		row[n] = t.data[n][i]
	}
	return row, nil
}

// Treatment returns the treatment labels.
func (t *Table) Treatment() []string { return slices.Clone(t.treatment) }

// Response returns the response labels.
func (t *Table) Response() []string { return slices.Clone(t.response) }

// Causes returns a copy of the causes map.
func (t *Table) Causes() graph.Causes { return t.causes.Clone() }

// ArrayNames returns the auxiliary array names in sorted order.
func (t *Table) ArrayNames() []string { return sortedKeys(t.arrays) }

// Array returns the named auxiliary value.
func (t *Table) Array(name string) (any, bool) {
	v, ok := t.arrays[name]
	return v, ok
}

// Matrix returns a copy of the named auxiliary array when it is a matrix.
func (t *Table) Matrix(name string) (mat.Matrix, error) {
	m, err := t.matrix(name)
	if err != nil {
		return nil, err
	}
	if r, c := m.Dims(); r == 0 || c == 0 {
		return &mat.Dense{}, nil
	}
	return mat.DenseCopyOf(m), nil
}

func (t *Table) matrix(name string) (mat.Matrix, error) {
	v, ok := t.arrays[name]
	if !ok {
		return nil, fmt.Errorf("%w: array %q", core.ErrVariableNotFound, name)
	}
	m, ok := v.(mat.Matrix)
	if !ok {
		return nil, core.NewValidationError("arrays", fmt.Sprintf("%q is a %T, not a matrix", name, v))
	}
	return m, nil
}

// Summaries returns the network-summary descriptors keyed by output name.
func (t *Table) Summaries() map[string]summary.Summary { return maps.Clone(t.summaries) }

// SummaryNames returns the summary output names in sorted order.
func (t *Table) SummaryNames() []string { return sortedKeys(t.summaries) }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
