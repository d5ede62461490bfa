package testkit

import (
	"context"
	"fmt"
	"math"
	"sort"

	"gocausal/adapters/rng"
	"gocausal/domain/core"
	"gocausal/domain/dgp"
	"gocausal/domain/dist"
	"gocausal/domain/graph"
	"gocausal/domain/scm"
	"gocausal/domain/summary"
	"gocausal/domain/table"
	"gocausal/ports"

	"gonum.org/v1/gonum/stat/distuv"
)

// ModelConfig parameterizes the stock models
type ModelConfig struct {
	Effect          float64 `json:"effect"`           // treatment effect on the response
	EdgeProbability float64 `json:"edge_probability"` // G(n, p) density for network models
	Exposure        float64 `json:"exposure"`         // contagion treatment probability
}

// DefaultModelConfig returns sensible defaults for the stock models
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Effect:          1.0,
		EdgeProbability: 0.1,
		Exposure:        0.3,
	}
}

// Kit builds the stock structural causal models used by tests and the CLI
type Kit struct {
	config ModelConfig
	rng    ports.RNGPort
}

// NewKit creates a new kit
func NewKit(config ModelConfig) *Kit {
	return &Kit{config: config, rng: rng.NewPCGAdapter()}
}

// RNGAdapter returns the kit's RNG adapter
func (k *Kit) RNGAdapter() ports.RNGPort {
	return k.rng
}

type builder func(*Kit) (*scm.SCM, error)

var models = map[string]builder{
	"basic":      (*Kit).Basic,
	"confounded": (*Kit).Confounded,
	"network":    (*Kit).Network,
	"contagion":  (*Kit).Contagion,
}

// Models lists the stock model names
func (k *Kit) Models() []string {
	names := make([]string, 0, len(models))
	for n := range models {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Model builds a stock model by name
func (k *Kit) Model(name string) (*scm.SCM, error) {
	b, ok := models[name]
	if !ok {
		return nil, fmt.Errorf("%w: model %q (have %v)", core.ErrNotFound, name, k.Models())
	}
	return b(k)
}

// Sample draws n rows of a stock model from a seeded stream
func (k *Kit) Sample(ctx context.Context, name string, n int, seed uint64) (*scm.SCM, *table.Table, error) {
	m, err := k.Model(name)
	if err != nil {
		return nil, nil, err
	}
	src, err := k.rng.Stream(ctx, "sample/"+name, seed)
	if err != nil {
		return nil, nil, err
	}
	t, err := m.RandWithSource(n, src)
	if err != nil {
		return nil, nil, err
	}
	return m, t, nil
}

// Basic is W ~ Beta(2,4), A ~ Bernoulli(W), Y ~ Normal(effect*A + W, 1).
func (k *Kit) Basic() (*scm.SCM, error) {
	d, err := dgp.New(
		dgp.Fixed("W", distuv.Beta{Alpha: 2, Beta: 4}),
		dgp.Each("A", func(env *dgp.Env, i int) (dist.Distribution, error) {
			w, err := env.Column("W")
			if err != nil {
				return nil, err
			}
			return distuv.Bernoulli{P: w[i]}, nil
		}),
		dgp.Each("Y", func(env *dgp.Env, i int) (dist.Distribution, error) {
			c, err := columns(env, "W", "A")
			if err != nil {
				return nil, err
			}
			return distuv.Normal{Mu: k.config.Effect*c[1][i] + c[0][i], Sigma: 1}, nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return scm.New(d, scm.Options{
		Treatment: []string{"A"},
		Response:  []string{"Y"},
		Causes:    graph.Causes{"A": {"W"}, "Y": {"A", "W"}},
	})
}

// Confounded has a confounder L, an instrument Z and a mediator M.
func (k *Kit) Confounded() (*scm.SCM, error) {
	d, err := dgp.New(
		dgp.Fixed("L", distuv.UnitNormal),
		dgp.Fixed("Z", distuv.UnitNormal),
		dgp.Each("A", func(env *dgp.Env, i int) (dist.Distribution, error) {
			c, err := columns(env, "L", "Z")
			if err != nil {
				return nil, err
			}
			return distuv.Bernoulli{P: logistic(c[0][i] + c[1][i])}, nil
		}),
		dgp.Each("M", func(env *dgp.Env, i int) (dist.Distribution, error) {
			a, err := env.Column("A")
			if err != nil {
				return nil, err
			}
			return distuv.Normal{Mu: a[i], Sigma: 0.5}, nil
		}),
		dgp.Each("Y", func(env *dgp.Env, i int) (dist.Distribution, error) {
			c, err := columns(env, "A", "M", "L")
			if err != nil {
				return nil, err
			}
			return distuv.Normal{Mu: k.config.Effect*c[0][i] + c[1][i] + c[2][i], Sigma: 1}, nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return scm.New(d, scm.Options{
		Treatment: []string{"A"},
		Response:  []string{"Y"},
		Causes:    graph.Causes{"A": {"L", "Z"}, "M": {"A"}, "Y": {"A", "M", "L"}},
	})
}

// Network draws a random G(n, p) graph; each unit's response depends on the
// sum of its neighbours' continuous treatments.
func (k *Kit) Network() (*scm.SCM, error) {
	p := k.config.EdgeProbability
	d, err := dgp.New(
		dgp.Opaque("G", func(env *dgp.Env) (any, error) {
			return dist.RandomGraph(env.N(), p, env.Source())
		}),
		dgp.Fixed("L", distuv.UnitNormal),
		dgp.Each("A", func(env *dgp.Env, i int) (dist.Distribution, error) {
			l, err := env.Column("L")
			if err != nil {
				return nil, err
			}
			return distuv.Normal{Mu: l[i], Sigma: 1}, nil
		}),
		dgp.Summarize("As", summary.Sum("A", "G")),
		dgp.Each("Y", func(env *dgp.Env, i int) (dist.Distribution, error) {
			c, err := columns(env, "A", "As", "L")
			if err != nil {
				return nil, err
			}
			return distuv.Normal{Mu: k.config.Effect*c[0][i] + 0.5*c[1][i] + c[2][i], Sigma: 1}, nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return scm.New(d, scm.Options{
		Treatment: []string{"A"},
		Response:  []string{"Y"},
		Causes:    graph.Causes{"A": {"L"}, "As": {"A"}, "Y": {"A", "As", "L"}},
	})
}

// Contagion counts exposed neighbours: A ~ Bernoulli(exposure), As sums A
// over G, and Y is a Poisson count driven by A and As.
func (k *Kit) Contagion() (*scm.SCM, error) {
	p, q := k.config.EdgeProbability, k.config.Exposure
	d, err := dgp.New(
		dgp.Opaque("G", func(env *dgp.Env) (any, error) {
			return dist.RandomGraph(env.N(), p, env.Source())
		}),
		dgp.Fixed("A", distuv.Bernoulli{P: q}),
		dgp.Summarize("As", summary.Sum("A", "G")),
		dgp.Each("Y", func(env *dgp.Env, i int) (dist.Distribution, error) {
			c, err := columns(env, "A", "As")
			if err != nil {
				return nil, err
			}
			return distuv.Poisson{Lambda: math.Exp(0.2 + k.config.Effect*c[0][i] + 0.1*c[1][i])}, nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return scm.New(d, scm.Options{
		Treatment: []string{"A"},
		Response:  []string{"Y"},
		Causes:    graph.Causes{"A": {}, "As": {"A"}, "Y": {"A", "As"}},
	})
}

func columns(env *dgp.Env, names ...string) ([][]float64, error) {
	out := make([][]float64, len(names))
	for i, n := range names {
		col, err := env.Column(n)
		if err != nil {
			return nil, err
		}
		out[i] = col
	}
	return out, nil
}

func logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
