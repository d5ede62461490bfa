package graph

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParents(t *testing.T) {
	c := exampleCauses()
	assert.Equal(t, []string{"L", "Z"}, Parents(c, "A"))
	assert.Empty(t, Parents(c, "L"))
}

func TestChildren(t *testing.T) {
	assert.Equal(t, []string{"M", "Y"}, Children(exampleCauses(), "A"))
}

func TestConfounders(t *testing.T) {
	c := exampleCauses()
	assert.Equal(t, []string{"L"}, Confounders(c, "A", "Y"))
	assert.Empty(t, Confounders(c, "M", "L"))
}

func TestMediators(t *testing.T) {
	assert.Equal(t, []string{"M"}, Mediators(exampleCauses(), "A", "Y"))
}

func TestInstruments(t *testing.T) {
	c := exampleCauses()
	// L confounds A and Y; M is a parent of Y; Z only touches A.
	assert.Equal(t, []string{"Z"}, Instruments(c, "A", "Y"))
}

// TestQueryProperties checks the structural identities for every pair of a
// small family of graphs.
func TestQueryProperties(t *testing.T) {
	graphs := []Causes{
		exampleCauses(),
		{"A": {"W"}, "Y": {"A", "W"}},
		{"A1": {"W"}, "A2": {"W", "A1", "V"}, "Y": {"A1", "A2", "W"}, "V": {"U"}},
		Default([]string{"W1", "W2", "A", "Y"}, []string{"A"}, []string{"Y"}),
	}

	for _, c := range graphs {
		var vars []string
		for k, ps := range c {
			vars = append(vars, k)
			vars = append(vars, ps...)
		}
		for _, x := range vars {
			for _, y := range vars {
				for _, z := range Confounders(c, x, y) {
					assert.Contains(t, c[x], z)
					assert.Contains(t, c[y], z)
				}
				for _, p := range c[x] {
					if slices.Contains(c[y], p) {
						assert.Contains(t, Confounders(c, x, y), p)
					}
				}
				for _, z := range Instruments(c, x, y) {
					assert.NotEqual(t, y, z)
					assert.NotContains(t, c[y], z)
				}
				for _, z := range Mediators(c, x, y) {
					assert.Contains(t, c[z], x)
					assert.Contains(t, c[y], z)
				}
			}
		}
	}
}

func TestPerPair_Collapse(t *testing.T) {
	c := Causes{"A1": {"W"}, "A2": {"W"}, "Y": {"A1", "A2", "W"}}
	ps := PerPair(c, []string{"A1", "A2"}, []string{"Y"}, Confounders)
	assert.Len(t, ps.Pairs, 2)

	set, ok := ps.Collapsed()
	assert.True(t, ok)
	assert.Equal(t, []string{"W"}, set)

	c["A2"] = []string{"W", "V"}
	c["Y"] = []string{"A1", "A2", "W", "V"}
	ps = PerPair(c, []string{"A1", "A2"}, []string{"Y"}, Confounders)
	_, ok = ps.Collapsed()
	assert.False(t, ok)
	assert.Equal(t, []string{"W", "V"}, ps.Sets[Pair{Treatment: "A2", Response: "Y"}])
}

func TestPerPair_Empty(t *testing.T) {
	ps := PerPair(Causes{}, nil, []string{"Y"}, Confounders)
	_, ok := ps.Collapsed()
	assert.False(t, ok)
}
