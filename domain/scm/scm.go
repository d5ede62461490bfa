// Package scm binds a data-generating process to causal labels. It samples
// causal tables and re-derives the exact conditional distribution of any
// step from a table, intervened or not.
package scm

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"gocausal/domain/core"
	"gocausal/domain/dgp"
	"gocausal/domain/graph"
	"gocausal/domain/table"
)

// Options are the causal labels of a model.
type Options struct {
	Treatment []string
	Response  []string
	// Causes defaults to graph.Default over the tabular steps when nil.
	Causes graph.Causes
	// ArrayNames lists Distribution steps whose draws are stored as
	// auxiliary arrays rather than data columns.
	ArrayNames []string
}

// SCM is a structural causal model. It is immutable and safe for
// concurrent read-only use; concurrent sampling needs one source per caller.
type SCM struct {
	dgp        *dgp.DGP
	treatment  []string
	response   []string
	causes     graph.Causes
	arrayNames []string
}

// New validates opts against the DGP's declared step names.
func New(d *dgp.DGP, opts Options) (*SCM, error) {
	if d == nil {
		return nil, core.NewValidationError("dgp", "nil data-generating process")
	}
	s := &SCM{
		dgp:        d,
		treatment:  slices.Clone(opts.Treatment),
		response:   slices.Clone(opts.Response),
		arrayNames: slices.Clone(opts.ArrayNames),
	}

	if err := s.checkDeclared("treatment", s.treatment); err != nil {
		return nil, err
	}
	if err := s.checkDeclared("response", s.response); err != nil {
		return nil, err
	}
	if err := s.checkDeclared("arrays", s.arrayNames); err != nil {
		return nil, err
	}

	if opts.Causes == nil {
		s.causes = graph.Default(s.tabular(), s.treatment, s.response)
	} else {
		s.causes = opts.Causes.Clone()
		var referenced []string
		for _, k := range s.causes.Keys() {
			referenced = append(referenced, k)
			referenced = append(referenced, s.causes[k]...)
		}
		if err := s.checkDeclared("causes", referenced); err != nil {
			return nil, err
		}
	}

	if err := graph.Validate(s.causes, s.treatment, s.response); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SCM) checkDeclared(set string, names []string) error {
	var unknown []string
	for _, n := range names {
		if !s.dgp.Has(n) && !slices.Contains(unknown, n) {
			unknown = append(unknown, n)
		}
	}
	if len(unknown) > 0 {
		return core.NewUnknownNamesError(set, unknown)
	}
	return nil
}

// tabular lists the steps that land in a table as variables.
func (s *SCM) tabular() []string {
	var out []string
	for _, st := range s.dgp.Steps() {
		if slices.Contains(s.arrayNames, st.Name) {
			continue
		}
		if st.Kind == dgp.Distribution || st.Kind == dgp.NetworkSummary {
			out = append(out, st.Name)
		}
	}
	return out
}

// Len returns the number of DGP steps.
func (s *SCM) Len() int { return s.dgp.Len() }

// DGP returns the underlying process.
func (s *SCM) DGP() *dgp.DGP { return s.dgp }

func (s *SCM) Treatment() []string  { return slices.Clone(s.treatment) }
func (s *SCM) Response() []string   { return slices.Clone(s.response) }
func (s *SCM) Causes() graph.Causes { return s.causes.Clone() }
func (s *SCM) ArrayNames() []string { return slices.Clone(s.arrayNames) }

// Rand draws an n-row causal table using the process-wide generator.
func (s *SCM) Rand(n int) (*table.Table, error) {
	return s.RandWithSource(n, nil)
}

// RandWithSource draws an n-row causal table from src.
func (s *SCM) RandWithSource(n int, src rand.Source) (*table.Table, error) {
	r, err := dgp.Rand(s.dgp, n, src)
	if err != nil {
		return nil, err
	}

	var cols []table.Column
	for _, c := range r.Columns {
		if slices.Contains(s.arrayNames, c.Name) {
			r.Arrays[c.Name] = c.Values
			continue
		}
		cols = append(cols, c)
	}

	t, err := table.New(cols, table.Options{
		Treatment: expandNames(s.treatment, r.Split),
		Response:  expandNames(s.response, r.Split),
		Causes:    expandCauses(s.causes, r.Split),
		Arrays:    r.Arrays,
		Summaries: r.Summaries,
	})
	if err != nil {
		return nil, fmt.Errorf("assemble table: %w", err)
	}
	return t, nil
}

// expandNames replaces every split joint step by its sub-columns.
func expandNames(names []string, split map[string][]string) []string {
	if names == nil {
		return nil
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if sub, ok := split[n]; ok {
			out = append(out, sub...)
			continue
		}
		out = append(out, n)
	}
	return out
}

func expandCauses(c graph.Causes, split map[string][]string) graph.Causes {
	if len(split) == 0 {
		return c.Clone()
	}
	out := make(graph.Causes, len(c))
	for k, parents := range c {
		for _, key := range expandNames([]string{k}, split) {
			out[key] = expandNames(parents, split)
		}
	}
	return out
}
