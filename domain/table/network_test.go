package table

import (
	"testing"

	"gocausal/domain/core"
	"gocausal/domain/graph"
	"gocausal/domain/summary"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestAdjacencyMatrix(t *testing.T) {
	adj, err := networkTable(t).AdjacencyMatrix()
	require.NoError(t, err)
	assert.True(t, mat.Equal(pathAdjacency(), adj))

	ident, err := basicTable(t).AdjacencyMatrix()
	require.NoError(t, err)
	assert.True(t, mat.Equal(mat.NewDiagDense(4, []float64{1, 1, 1, 1}), ident))
}

func TestDependencyMatrix(t *testing.T) {
	dep, err := networkTable(t).DependencyMatrix()
	require.NoError(t, err)

	want := mat.NewDense(4, 4, []float64{
		1, 1, 1, 0,
		1, 1, 1, 1,
		1, 1, 1, 1,
		0, 1, 1, 1,
	})
	assert.True(t, mat.Equal(want, dep), "got\n%v", mat.Formatted(dep))
}

func TestSummarize(t *testing.T) {
	tbl := networkTable(t)

	out, err := tbl.Summarize()
	require.NoError(t, err)

	assert.Equal(t, []string{"L", "A", "Y", "As", "deg"}, out.Names())
	as, _ := out.Column("As")
	assert.Equal(t, []float64{0, 2, 1, 1}, as)
	deg, _ := out.Column("deg")
	assert.Equal(t, []float64{1, 2, 2, 1}, deg)

	assert.Equal(t, []string{"A", "As"}, out.Treatment())
	assert.Equal(t, []string{"Y"}, out.Response())

	causes := out.Causes()
	assert.Equal(t, []string{"L"}, causes["As"], "summary inherits its target's parents")
	assert.Equal(t, []string{"A", "L", "As"}, causes["Y"], "summary joins its target's children")

	// receiver untouched
	assert.Equal(t, 3, tbl.NCol())
	assert.Equal(t, []string{"A"}, tbl.Treatment())
}

func TestSummarize_ExplicitCausesKept(t *testing.T) {
	tbl, err := New([]Column{
		{Name: "A", Values: []float64{1, 0, 1}},
		{Name: "Y", Values: []float64{0, 1, 2}},
	}, Options{
		Treatment: []string{"A"},
		Response:  []string{"Y"},
		Causes:    graph.Causes{"A": {}, "As": {}, "Y": {"A"}},
		Arrays: map[string]any{"G": mat.NewDense(3, 3, []float64{
			0, 1, 0,
			1, 0, 1,
			0, 1, 0,
		})},
		Summaries: map[string]summary.Summary{"As": summary.Sum("A", "G")},
	})
	require.NoError(t, err)

	out, err := tbl.Summarize()
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, out.Causes()["Y"])
	assert.Empty(t, out.Causes()["As"])
}

func TestSummarize_SummaryOfSummary(t *testing.T) {
	tbl, err := New([]Column{
		{Name: "X", Values: []float64{1, 2, 3}},
	}, Options{
		Arrays: map[string]any{"G": mat.NewDense(3, 3, []float64{
			0, 1, 0,
			1, 0, 1,
			0, 1, 0,
		})},
		Summaries: map[string]summary.Summary{
			"Xs":  summary.Sum("X", "G"),
			"Xss": summary.Sum("Xs", "G"),
		},
	})
	require.NoError(t, err)

	out, err := tbl.Summarize()
	require.NoError(t, err)
	xs, _ := out.Column("Xs")
	assert.Equal(t, []float64{2, 4, 2}, xs)
	xss, _ := out.Column("Xss")
	assert.Equal(t, []float64{4, 4, 4}, xss)
}

func TestSummarize_BadArray(t *testing.T) {
	tbl, err := New([]Column{
		{Name: "X", Values: []float64{1, 2, 3}},
	}, Options{
		Arrays:    map[string]any{"G": mat.NewDense(2, 2, nil)},
		Summaries: map[string]summary.Summary{"Xs": summary.Sum("X", "G")},
	})
	require.NoError(t, err)

	_, err = tbl.Summarize()
	assert.True(t, core.IsShapeError(err))
}

func TestSummarize_SummaryOnlyAsParent(t *testing.T) {
	tbl, err := New([]Column{
		{Name: "L", Values: []float64{1, 2, 3}},
		{Name: "A", Values: []float64{1, 0, 1}},
		{Name: "Y", Values: []float64{0, 1, 2}},
	}, Options{
		Treatment: []string{"A"},
		Response:  []string{"Y"},
		Causes:    graph.Causes{"A": {"L"}, "Y": {"A", "As", "L"}},
		Arrays: map[string]any{"G": mat.NewDense(3, 3, []float64{
			0, 1, 0,
			1, 0, 1,
			0, 1, 0,
		})},
		Summaries: map[string]summary.Summary{"As": summary.Sum("A", "G")},
	})
	require.NoError(t, err)

	out, err := tbl.Summarize()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "As"}, out.Treatment())
	assert.Equal(t, graph.Causes{
		"A":  {"L"},
		"As": {"L"},
		"Y":  {"A", "As", "L"},
	}, out.Causes(), "declared parents are not extended twice")
}
