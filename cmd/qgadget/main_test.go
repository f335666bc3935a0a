package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qgadget/circuit"
	"qgadget/qasm"
	"qgadget/subst"
	"qgadget/symbol"
)

const threeGadgets = `OPENQASM 2.0;
include "qelib1.inc";
qreg q[4];
cx q[0], q[1];
cx q[1], q[2];
cx q[2], q[3];
rz(pi*a) q[3];
cx q[2], q[3];
cx q[1], q[2];
cx q[0], q[1];
cx q[3], q[2];
cx q[2], q[1];
cx q[1], q[0];
rz(pi*b) q[0];
cx q[1], q[0];
cx q[2], q[1];
cx q[3], q[2];
cx q[0], q[1];
cx q[1], q[2];
cx q[2], q[3];
rz(pi/2) q[3];
cx q[2], q[3];
cx q[1], q[2];
cx q[0], q[1];
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestMergeCommand(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "in.qasm", threeGadgets)

	out, err := run(t, "merge", src)
	require.NoError(t, err)

	c, err := qasm.Parse(out, symbol.NewRegistry())
	require.NoError(t, err)
	assert.Equal(t, 7, c.Len())
	assert.Contains(t, out, "rz(pi*(a + b + 0.5)) q[3];")

	dst := filepath.Join(dir, "out.qasm")
	_, err = run(t, "merge", src, "-o", dst)
	require.NoError(t, err)
	written, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, out, string(written))
}

func TestBindCommand(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "in.qasm", threeGadgets)
	bindings := writeFile(t, dir, "b.yaml", "a: 0.25\nb: 0.25\n")

	out, err := run(t, "bind", src, "--bindings", bindings, "--merge")
	require.NoError(t, err)
	assert.Contains(t, out, "rz(pi) q[3];")

	c, err := qasm.Parse(out, symbol.NewRegistry())
	require.NoError(t, err)
	assert.Empty(t, c.Symbols())
	assert.Equal(t, 7, c.Len())
}

func TestBindCommandUnknownSymbol(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "in.qasm", threeGadgets)
	bindings := writeFile(t, dir, "b.yaml", "gamma: 1\n")

	_, err := run(t, "bind", src, "--bindings", bindings)
	require.Error(t, err)
	assert.True(t, errors.Is(err, subst.ErrUnknownSymbol))

	_, err = run(t, "bind", src)
	assert.Error(t, err, "bindings flag is required")
}

func TestStatsCommand(t *testing.T) {
	src := writeFile(t, t.TempDir(), "in.qasm", threeGadgets)

	out, err := run(t, "stats", src)
	require.NoError(t, err)
	assert.Contains(t, out, "gates            21        7")
	assert.Contains(t, out, "gadgets           3        1")
}

func TestReadCircuitErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, "merge", filepath.Join(dir, "missing.qasm"))
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.qasm", "qreg q[1];\ncx q[0], q[1];\n")
	_, err = run(t, "merge", bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, circuit.ErrInvalidQubitIndex))
}

func TestBadConfig(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "in.qasm", threeGadgets)
	cfg := writeFile(t, dir, "cfg.yaml", "merge:\n  placement: sideways\n")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfg, "merge", src})
	assert.ErrorContains(t, cmd.Execute(), "placement")
}
