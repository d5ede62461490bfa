package graph

import (
	"slices"
	"sort"
)

// Parents returns the direct causes of x, or nil when x is unlabelled.
func Parents(c Causes, x string) []string {
	return slices.Clone(c[x])
}

// Children returns every variable that lists x as a direct cause.
func Children(c Causes, x string) []string {
	var out []string
	for _, k := range c.Keys() {
		if slices.Contains(c[k], x) {
			out = append(out, k)
		}
	}
	return out
}

// Confounders returns the variables causing both x and y.
func Confounders(c Causes, x, y string) []string {
	var out []string
	for _, p := range c[x] {
		if slices.Contains(c[y], p) && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

// Mediators returns the variables caused by x that also cause y.
func Mediators(c Causes, x, y string) []string {
	var out []string
	for _, z := range c[y] {
		if slices.Contains(c[z], x) && !slices.Contains(out, z) {
			out = append(out, z)
		}
	}
	return out
}

// Instruments returns the variables adjacent to x in the graph (parents or
// children) that are neither y nor a parent of y.
func Instruments(c Causes, x, y string) []string {
	var out []string
	candidates := append(slices.Clone(c[x]), Children(c, x)...)
	for _, z := range candidates {
		if z == y || z == x || slices.Contains(c[y], z) || slices.Contains(out, z) {
			continue
		}
		out = append(out, z)
	}
	return out
}

// Query is any of the pairwise structural queries above.
type Query func(c Causes, x, y string) []string

// Pair is one treatment/response combination.
type Pair struct {
	Treatment string
	Response  string
}

// PairSets holds a query evaluated for every treatment/response pair.
type PairSets struct {
	Pairs []Pair
	Sets  map[Pair][]string
}

// PerPair evaluates q for every treatment × response combination.
func PerPair(c Causes, treatment, response []string, q Query) PairSets {
	ps := PairSets{Sets: make(map[Pair][]string)}
	for _, t := range treatment {
		for _, r := range response {
			p := Pair{Treatment: t, Response: r}
			ps.Pairs = append(ps.Pairs, p)
			ps.Sets[p] = q(c, t, r)
		}
	}
	return ps
}

// Collapsed returns the shared result when every pair yields the same set
// (ignoring order). ok is false when the pairs disagree or there are none.
func (ps PairSets) Collapsed() (set []string, ok bool) {
	if len(ps.Pairs) == 0 {
		return nil, false
	}
	first := ps.Sets[ps.Pairs[0]]
	want := sortedCopy(first)
	for _, p := range ps.Pairs[1:] {
		if !slices.Equal(want, sortedCopy(ps.Sets[p])) {
			return nil, false
		}
	}
	return slices.Clone(first), true
}

func sortedCopy(s []string) []string {
	out := slices.Clone(s)
	sort.Strings(out)
	return out
}
