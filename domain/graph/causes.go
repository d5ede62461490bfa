// Package graph holds the causal dependency graph of a dataset: a causes map
// from each variable to its direct parents, and the structural queries
// (confounders, mediators, instruments) derived from it.
package graph

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"gocausal/domain/core"

	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Causes maps a variable to the variables that directly cause it.
type Causes map[string][]string

// Clone returns a deep copy so callers can never alias a table's graph.
func (c Causes) Clone() Causes {
	if c == nil {
		return nil
	}
	out := make(Causes, len(c))
	for k, v := range c {
		out[k] = slices.Clone(v)
	}
	return out
}

// Keys returns the labelled variables in sorted order.
func (c Causes) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Default synthesizes the "all unlabeled are confounders" causes map: every
// name outside treatment and response is a parent of every treatment and of
// every response.
func Default(names, treatment, response []string) Causes {
	labelled := make(map[string]bool, len(treatment)+len(response))
	for _, n := range treatment {
		labelled[n] = true
	}
	for _, n := range response {
		labelled[n] = true
	}

	var common []string
	for _, n := range names {
		if !labelled[n] && !slices.Contains(common, n) {
			common = append(common, n)
		}
	}

	c := make(Causes, len(treatment)+len(response))
	for _, n := range treatment {
		c[n] = slices.Clone(common)
	}
	for _, n := range response {
		c[n] = slices.Clone(common)
	}
	return c
}

// Validate enforces the causes invariants: treatment and response are
// disjoint, both are keys of the map, no response causes a treatment, and
// the graph is acyclic.
func Validate(c Causes, treatment, response []string) error {
	for _, t := range treatment {
		if slices.Contains(response, t) {
			return core.NewValidationError("treatment/response", fmt.Sprintf("%q is both treatment and response", t))
		}
	}

	var missing []string
	for _, n := range append(slices.Clone(treatment), response...) {
		if _, ok := c[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return core.NewValidationError("causes", fmt.Sprintf("missing entries for [%s]", strings.Join(missing, ", ")))
	}

	for _, t := range treatment {
		for _, p := range c[t] {
			if slices.Contains(response, p) {
				return core.NewValidationError("causes", fmt.Sprintf("response %q cannot cause treatment %q", p, t))
			}
		}
	}

	return CheckAcyclic(c)
}

// IsAcyclic reports whether the causes map forms a DAG.
func IsAcyclic(c Causes) bool {
	return CheckAcyclic(c) == nil
}

// CheckAcyclic returns ErrCyclic naming the variables caught in a cycle, or
// nil when the map is a DAG.
func CheckAcyclic(c Causes) error {
	g := simple.NewDirectedGraph()
	ids := make(map[string]int64)
	names := make(map[int64]string)
	node := func(name string) gonumgraph.Node {
		id, ok := ids[name]
		if !ok {
			id = int64(len(ids))
			ids[name] = id
			names[id] = name
			g.AddNode(simple.Node(id))
		}
		return simple.Node(id)
	}

	for _, child := range c.Keys() {
		to := node(child)
		for _, parent := range c[child] {
			if parent == child {
				return fmt.Errorf("%w: %q causes itself", core.ErrCyclic, child)
			}
			from := node(parent)
			if !g.HasEdgeFromTo(from.ID(), to.ID()) {
				g.SetEdge(g.NewEdge(from, to))
			}
		}
	}

	if _, err := topo.Sort(g); err != nil {
		var cycles topo.Unorderable
		if !errors.As(err, &cycles) {
			return fmt.Errorf("%w: %v", core.ErrCyclic, err)
		}
		var members []string
		for _, component := range cycles {
			for _, n := range component {
				members = append(members, names[n.ID()])
			}
		}
		sort.Strings(members)
		return fmt.Errorf("%w: cycle through [%s]", core.ErrCyclic, strings.Join(members, ", "))
	}
	return nil
}
