// Package dgp represents a data-generating process as an ordered list of
// typed steps and evaluates it sequentially into concrete data.
package dgp

import (
	"fmt"
	"slices"

	"gocausal/domain/core"
	"gocausal/domain/dist"
	"gocausal/domain/summary"
)

// Kind classifies what a step's generator returns.
type Kind int

const (
	// Distribution generators return a dist.Distribution, a length-n
	// []dist.Distribution or a dist.Joint.
	Distribution Kind = iota
	// Transform generators return any deterministic value.
	Transform
	// OpaqueRandom generators return a value drawn with fresh randomness
	// that cannot be reconstructed from data, such as a random graph.
	OpaqueRandom
	// NetworkSummary generators return a summary.Summary.
	NetworkSummary
)

func (k Kind) String() string {
	switch k {
	case Distribution:
		return "distribution"
	case Transform:
		return "transform"
	case OpaqueRandom:
		return "opaque_random"
	case NetworkSummary:
		return "network_summary"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Valid reports whether k is one of the four step kinds.
func (k Kind) Valid() bool {
	return k >= Distribution && k <= NetworkSummary
}

// Generator computes a step's value from everything bound before it.
type Generator func(env *Env) (any, error)

// Step is one named line of a data-generating process.
type Step struct {
	Name      string
	Kind      Kind
	Generator Generator
}

// DGP is an ordered, validated list of steps.
type DGP struct {
	steps []Step
	index map[string]int
}

// New validates and assembles steps. Names must be unique and every step
// needs a generator.
func New(steps ...Step) (*DGP, error) {
	d := &DGP{
		steps: make([]Step, 0, len(steps)),
		index: make(map[string]int, len(steps)),
	}
	for _, s := range steps {
		if _, err := core.ParseVariableName(s.Name); err != nil {
			return nil, err
		}
		if _, dup := d.index[s.Name]; dup {
			return nil, core.NewValidationError("steps", fmt.Sprintf("duplicate step name %q", s.Name))
		}
		if !s.Kind.Valid() {
			return nil, core.NewValidationError("steps", fmt.Sprintf("step %q has unknown kind %d", s.Name, int(s.Kind)))
		}
		if s.Generator == nil {
			return nil, core.NewValidationError("steps", fmt.Sprintf("step %q has no generator", s.Name))
		}
		d.index[s.Name] = len(d.steps)
		d.steps = append(d.steps, s)
	}
	return d, nil
}

// Len returns the number of steps.
func (d *DGP) Len() int { return len(d.steps) }

// Names returns the step names in declaration order.
func (d *DGP) Names() []string {
	out := make([]string, len(d.steps))
	for i, s := range d.steps {
		out[i] = s.Name
	}
	return out
}

// Steps returns a copy of the step list.
func (d *DGP) Steps() []Step { return slices.Clone(d.steps) }

// Index returns the position of the named step.
func (d *DGP) Index(name string) (int, bool) {
	i, ok := d.index[name]
	return i, ok
}

// Has reports whether name is a declared step.
func (d *DGP) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Step returns the named step.
func (d *DGP) Step(name string) (Step, error) {
	i, ok := d.index[name]
	if !ok {
		return Step{}, fmt.Errorf("%w: %q", core.ErrStepNotFound, name)
	}
	return d.steps[i], nil
}

// At returns the step at position i.
func (d *DGP) At(i int) Step { return d.steps[i] }

// Draw declares a Distribution step.
func Draw(name string, g Generator) Step {
	return Step{Name: name, Kind: Distribution, Generator: g}
}

// Fixed declares a Distribution step that ignores the environment and draws
// n iid values from d.
func Fixed(name string, d dist.Distribution) Step {
	return Draw(name, func(*Env) (any, error) { return d, nil })
}

// Each declares a Distribution step with one distribution per unit.
func Each(name string, f func(env *Env, i int) (dist.Distribution, error)) Step {
	return Draw(name, func(env *Env) (any, error) {
		out := make([]dist.Distribution, env.N())
		for i := range out {
			d, err := f(env, i)
			if err != nil {
				return nil, fmt.Errorf("unit %d: %w", i, err)
			}
			out[i] = d
		}
		return out, nil
	})
}

// Derive declares a Transform step.
func Derive(name string, g Generator) Step {
	return Step{Name: name, Kind: Transform, Generator: g}
}

// Opaque declares an OpaqueRandom step.
func Opaque(name string, g Generator) Step {
	return Step{Name: name, Kind: OpaqueRandom, Generator: g}
}

// Summarize declares a NetworkSummary step.
func Summarize(name string, s summary.Summary) Step {
	return Step{Name: name, Kind: NetworkSummary, Generator: func(*Env) (any, error) { return s, nil }}
}
