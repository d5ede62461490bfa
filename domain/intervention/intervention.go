// Package intervention provides stock interventions: functions from a causal
// table to replacement values for its treatment columns, applied with
// table.Intervene.
package intervention

import (
	"fmt"
	"slices"

	"gocausal/domain/core"
	"gocausal/domain/table"
)

var (
	_ table.Intervention = TreatAll
	_ table.Intervention = TreatNone
)

// TreatAll sets every treatment to 1.
func TreatAll(t *table.Table) (map[string][]float64, error) { return constant(t, 1) }

// TreatNone sets every treatment to 0.
func TreatNone(t *table.Table) (map[string][]float64, error) { return constant(t, 0) }

// Constant sets every treatment to v.
func Constant(v float64) table.Intervention {
	return func(t *table.Table) (map[string][]float64, error) { return constant(t, v) }
}

// AdditiveShift adds delta to every treatment value.
func AdditiveShift(delta float64) table.Intervention {
	return mapTreatments(func(x float64) float64 { return x + delta })
}

// MultiplicativeShift scales every treatment value by delta.
func MultiplicativeShift(delta float64) table.Intervention {
	return mapTreatments(func(x float64) float64 { return x * delta })
}

// Set replaces a single treatment column with values.
func Set(name string, values []float64) table.Intervention {
	return func(t *table.Table) (map[string][]float64, error) {
		if !slices.Contains(t.Treatment(), name) {
			return nil, core.NewValidationError("intervention", fmt.Sprintf("%q is not a treatment", name))
		}
		return map[string][]float64{name: slices.Clone(values)}, nil
	}
}

func constant(t *table.Table, v float64) (map[string][]float64, error) {
	out := make(map[string][]float64)
	for _, name := range columns(t) {
		col := make([]float64, t.NRow())
		for i := range col {
			col[i] = v
		}
		out[name] = col
	}
	return out, nil
}

func mapTreatments(f func(float64) float64) table.Intervention {
	return func(t *table.Table) (map[string][]float64, error) {
		out := make(map[string][]float64)
		for _, name := range columns(t) {
			col, err := t.Column(name)
			if err != nil {
				return nil, err
			}
			for i, x := range col {
				col[i] = f(x)
			}
			out[name] = col
		}
		return out, nil
	}
}

// columns lists the treatments stored as data. Summary treatments follow
// their targets, including those already materialized by Summarize.
func columns(t *table.Table) []string {
	sums := t.Summaries()
	var out []string
	for _, name := range t.Treatment() {
		if _, isSummary := sums[name]; isSummary {
			continue
		}
		if t.HasColumn(name) {
			out = append(out, name)
		}
	}
	return out
}
