package testkit

import (
	"context"
	"testing"

	"gocausal/domain/core"
	"gocausal/domain/intervention"
	"gocausal/domain/summary"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKit_Models(t *testing.T) {
	kit := NewKit(DefaultModelConfig())
	assert.Equal(t, []string{"basic", "confounded", "contagion", "network"}, kit.Models())

	for _, name := range kit.Models() {
		m, err := kit.Model(name)
		require.NoError(t, err, name)
		assert.Equal(t, []string{"A"}, m.Treatment(), name)
		assert.Equal(t, []string{"Y"}, m.Response(), name)
	}

	_, err := kit.Model("nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestKit_SampleDeterministic(t *testing.T) {
	kit := NewKit(DefaultModelConfig())
	ctx := context.Background()

	for _, name := range kit.Models() {
		_, a, err := kit.Sample(ctx, name, 25, 42)
		require.NoError(t, err, name)
		_, b, err := kit.Sample(ctx, name, 25, 42)
		require.NoError(t, err, name)
		_, c, err := kit.Sample(ctx, name, 25, 43)
		require.NoError(t, err, name)

		assert.Equal(t, 25, a.NRow(), name)
		assert.Equal(t, a.Columns(), b.Columns(), name)
		assert.NotEqual(t, a.Columns(), c.Columns(), name)
	}
}

func TestKit_SampleCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewKit(DefaultModelConfig()).Sample(ctx, "basic", 10, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBasic_TrueMean(t *testing.T) {
	cfg := DefaultModelConfig()
	cfg.Effect = 2
	kit := NewKit(cfg)
	m, tbl, err := kit.Sample(context.Background(), "basic", 40, 3)
	require.NoError(t, err)

	w, err := tbl.Column("W")
	require.NoError(t, err)
	a, err := tbl.Column("A")
	require.NoError(t, err)
	mu, err := m.Conmean(tbl, "Y")
	require.NoError(t, err)
	for i := range mu {
		assert.InDelta(t, 2*a[i]+w[i], mu[i], 1e-12)
	}

	treated, err := tbl.Intervene(intervention.TreatAll)
	require.NoError(t, err)
	mu, err = m.Conmean(treated, "Y")
	require.NoError(t, err)
	for i := range mu {
		assert.InDelta(t, 2+w[i], mu[i], 1e-12)
	}

	p, err := m.Propensity(tbl, "A")
	require.NoError(t, err)
	for i := range p {
		want := w[i]
		if a[i] == 0 {
			want = 1 - w[i]
		}
		assert.InDelta(t, want, p[i], 1e-12)
	}
}

func TestConfounded_Structure(t *testing.T) {
	kit := NewKit(DefaultModelConfig())
	_, tbl, err := kit.Sample(context.Background(), "confounded", 20, 9)
	require.NoError(t, err)

	conf, err := tbl.Confounders()
	require.NoError(t, err)
	require.True(t, conf.Collapsed())
	assert.Equal(t, []string{"L"}, conf.Table.Names())

	med, err := tbl.Mediators()
	require.NoError(t, err)
	require.True(t, med.Collapsed())
	assert.Equal(t, []string{"M"}, med.Table.Names())

	ins, err := tbl.Instruments()
	require.NoError(t, err)
	require.True(t, ins.Collapsed())
	assert.Equal(t, []string{"Z"}, ins.Table.Names())
}

func TestNetwork_SummaryDensity(t *testing.T) {
	cfg := DefaultModelConfig()
	cfg.EdgeProbability = 0.3
	kit := NewKit(cfg)
	m, tbl, err := kit.Sample(context.Background(), "network", 30, 11)
	require.NoError(t, err)

	g, err := tbl.Matrix("G")
	require.NoError(t, err)
	l, err := tbl.Column("L")
	require.NoError(t, err)

	mu, err := m.Conmean(tbl, "As")
	require.NoError(t, err)
	v, err := m.Convar(tbl, "As")
	require.NoError(t, err)
	require.Len(t, mu, 30)

	for i := 0; i < 30; i++ {
		var want float64
		nb := summary.Neighbors(g, i)
		for _, j := range nb {
			want += l[j]
		}
		assert.InDelta(t, want, mu[i], 1e-9, "unit %d", i)
		assert.InDelta(t, float64(len(nb)), v[i], 1e-9, "unit %d", i)
	}
}

func TestContagion_BinomialExposure(t *testing.T) {
	cfg := DefaultModelConfig()
	cfg.EdgeProbability = 0.2
	kit := NewKit(cfg)
	m, tbl, err := kit.Sample(context.Background(), "contagion", 30, 5)
	require.NoError(t, err)

	g, err := tbl.Matrix("G")
	require.NoError(t, err)
	mu, err := m.Conmean(tbl, "As")
	require.NoError(t, err)

	for i := range mu {
		deg := float64(len(summary.Neighbors(g, i)))
		assert.InDelta(t, deg*cfg.Exposure, mu[i], 1e-9, "unit %d", i)
	}

	y, err := tbl.Column("Y")
	require.NoError(t, err)
	for _, v := range y {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}
