package dist

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gocausal/domain/core"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/graphs/gen"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/mat"
)

// RandomGraph draws an Erdős–Rényi G(n, p) graph and returns its symmetric
// 0/1 adjacency matrix. A nil src uses the process-wide generator.
func RandomGraph(n int, p float64, src rand.Source) (*mat.Dense, error) {
	if n < 0 {
		return nil, core.NewShapeError("graph size %d is negative", n)
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return nil, core.NewValidationError("p", fmt.Sprintf("edge probability %v outside [0, 1]", p))
	}
	g := simple.NewUndirectedGraph()
	if err := gen.Gnp(g, n, p, src); err != nil {
		return nil, fmt.Errorf("random graph: %w", err)
	}
	return AdjacencyOf(g, n), nil
}

// AdjacencyOf returns the n×n 0/1 adjacency matrix of g. Nodes are assigned
// rows in ascending ID order; nodes beyond the first n are ignored.
func AdjacencyOf(g graph.Graph, n int) *mat.Dense {
	if n == 0 {
		return &mat.Dense{}
	}
	nodes := graph.NodesOf(g.Nodes())
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	row := make(map[int64]int, len(nodes))
	for i, u := range nodes {
		if i < n {
			row[u.ID()] = i
		}
	}

	adj := mat.NewDense(n, n, nil)
	for id, i := range row {
		to := g.From(id)
		for to.Next() {
			if j, ok := row[to.Node().ID()]; ok {
				adj.Set(i, j, 1)
			}
		}
	}
	return adj
}
