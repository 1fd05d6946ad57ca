package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/docopt/docopt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, argv ...string) command {
	t.Helper()
	opts, err := docopt.ParseArgs(usage, argv, "")
	require.NoError(t, err)
	return parseCommand(opts)
}

func TestParseCommand(t *testing.T) {
	c := parse(t, "run", "-v", "--run=^proto", "a.yaml", "b.yaml")
	assert.True(t, c.Run)
	assert.True(t, c.Verbose)
	assert.Equal(t, "^proto", c.Pattern)
	assert.Equal(t, []string{"a.yaml", "b.yaml"}, c.Scenarios)
	assert.Empty(t, c.Config)

	c = parse(t, "repl", "--config=jscore.yaml")
	assert.True(t, c.Repl)
	assert.Equal(t, "jscore.yaml", c.Config)

	c = parse(t, "version")
	assert.True(t, c.Version)
	assert.False(t, c.Run)
}

func TestRunScenarios(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "s.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
name: passes
steps:
  - object: {name: o}
  - set: {target: o, key: x, value: 1}
  - get: {target: o, key: x, expect: 1}
---
name: fails
steps:
  - object: {name: o}
  - get: {target: o, key: x, expect: 1}
`), 0o644))

	failed, err := run(context.Background(), &command{Run: true, Scenarios: []string{file}})
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	failed, err = run(context.Background(), &command{Run: true, Pattern: "^passes$", Scenarios: []string{file}})
	require.NoError(t, err)
	assert.Zero(t, failed)

	_, err = run(context.Background(), &command{Run: true, Scenarios: []string{filepath.Join(dir, "missing.yaml")}})
	assert.Error(t, err)
}

func TestExitCodeFlushesProfile(t *testing.T) {
	dir := t.TempDir()
	prof := filepath.Join(dir, "cpu.prof")

	code := runMain([]string{"run", "--cpuprofile=" + prof, filepath.Join(dir, "missing.yaml")})
	assert.Equal(t, 64, code)

	data, err := os.ReadFile(prof)
	require.NoError(t, err)
	// A stopped profile is a gzip-compressed protobuf.
	require.GreaterOrEqual(t, len(data), 2)
	assert.Equal(t, []byte{0x1f, 0x8b}, data[:2])

	assert.Zero(t, runMain([]string{"version"}))
}
