package table

import (
	"gocausal/domain/graph"
)

// Selection is the result of a structural query on a table. When every
// treatment/response pair yields the same variables, Table holds the single
// projected sub-table; otherwise ByPair holds one sub-table per pair.
type Selection struct {
	Table  *Table
	Pairs  []graph.Pair
	ByPair map[graph.Pair]*Table
}

// Collapsed reports whether all pairs shared one result.
func (s *Selection) Collapsed() bool { return s.Table != nil }

// For returns the sub-table of one pair, whether or not the result was
// collapsed.
func (s *Selection) For(p graph.Pair) (*Table, bool) {
	if s.Table != nil {
		return s.Table, true
	}
	t, ok := s.ByPair[p]
	return t, ok
}

// Confounders selects the common causes of each treatment/response pair.
func (t *Table) Confounders() (*Selection, error) { return t.query(graph.Confounders) }

// Mediators selects the variables on a causal path from treatment to response.
func (t *Table) Mediators() (*Selection, error) { return t.query(graph.Mediators) }

// Instruments selects the variables tied to treatment but not to response.
func (t *Table) Instruments() (*Selection, error) { return t.query(graph.Instruments) }

// Parents selects the direct causes of name.
func (t *Table) Parents(name string) (*Table, error) {
	return t.Select(t.selectable(graph.Parents(t.causes, name))...)
}

func (t *Table) query(q graph.Query) (*Selection, error) {
	ps := graph.PerPair(t.causes, t.treatment, t.response, q)
	if set, ok := ps.Collapsed(); ok {
		sub, err := t.Select(t.selectable(set)...)
		if err != nil {
			return nil, err
		}
		return &Selection{Table: sub, Pairs: ps.Pairs}, nil
	}

	sel := &Selection{Pairs: ps.Pairs, ByPair: make(map[graph.Pair]*Table, len(ps.Pairs))}
	for _, p := range ps.Pairs {
		sub, err := t.Select(t.selectable(ps.Sets[p])...)
		if err != nil {
			return nil, err
		}
		sel.ByPair[p] = sub
	}
	return sel, nil
}

// selectable drops names, such as arrays, that cannot be projected.
func (t *Table) selectable(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if t.isVariable(n) {
			out = append(out, n)
		}
	}
	return out
}
