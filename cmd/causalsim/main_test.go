package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gocausal/domain/core"
	"gocausal/internal/errors"
	"gocausal/internal/profiling"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestModelsCmd(t *testing.T) {
	out, err := run(t, "models")
	require.NoError(t, err)
	for _, name := range []string{"basic", "confounded", "contagion", "network"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "W -> A -> Y")
}

func TestSampleCmd_Stdout(t *testing.T) {
	out, err := run(t, "sample", "--rows", "5", "--seed", "7")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "W,A,Y", lines[0])

	again, err := run(t, "sample", "--rows", "5", "--seed", "7")
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestSampleCmd_XLSXFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "net.xlsx")
	_, err := run(t, "sample", "--model", "network", "--rows", "8", "--output", path)
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSampleCmd_XLSXNeedsPath(t *testing.T) {
	_, err := run(t, "sample", "--format", "xlsx")
	require.Error(t, err)
	assert.Equal(t, 2, errors.ExitCode(err))
}

func TestSampleCmd_UnknownModel(t *testing.T) {
	_, err := run(t, "sample", "--model", "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, 3, errors.ExitCode(err))
}

func TestTruthCmd(t *testing.T) {
	out, err := run(t, "truth", "--model", "network", "--rows", "20", "--intervene", "shift:1")
	require.NoError(t, err)
	assert.Contains(t, out, "step")
	assert.Regexp(t, `G\s+opaque_random\s+-\s+-`, out)
	assert.Regexp(t, `As\s+network_summary\s+-?\d`, out)
	assert.Regexp(t, `Y\s+distribution\s+-?\d`, out)
}

func TestTruthCmd_BadIntervention(t *testing.T) {
	_, err := run(t, "truth", "--intervene", "shift")
	require.Error(t, err)
	assert.Equal(t, 2, errors.ExitCode(err))
}

func TestDescribeCmd(t *testing.T) {
	out, err := run(t, "describe", "--model", "contagion", "--rows", "15")
	require.NoError(t, err)

	var profiles []profiling.ColumnProfile
	require.NoError(t, json.Unmarshal([]byte(out), &profiles))
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.Name
		assert.Equal(t, 15, p.N)
	}
	assert.Equal(t, []string{"A", "Y", "As"}, names)
}

func TestReplicateCmd(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "replicate", "--rows", "6", "--count", "3", "--workers", "2", "--dir", dir)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 4)
	files, err := filepath.Glob(filepath.Join(dir, "replicate-*.csv"))
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestParseIntervention(t *testing.T) {
	tests := []struct {
		in      string
		wantNil bool
		wantErr bool
	}{
		{"none", true, false},
		{"", true, false},
		{"treat-all", false, false},
		{"Treat-None", false, false},
		{"set:0.5", false, false},
		{"shift:-1", false, false},
		{"scale:2", false, false},
		{"scale", false, true},
		{"shift:x", false, true},
		{"flip", false, true},
	}
	for _, tt := range tests {
		fn, err := parseIntervention(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.wantNil, fn == nil, tt.in)
	}
}
