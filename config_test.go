package jscore

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	c, err := ParseConfig([]byte(`
lenient_assignment: true
gc:
  threshold: 128
log:
  level: debug
`))
	require.NoError(t, err)
	assert.True(t, c.LenientAssignment)
	assert.Equal(t, 128, c.GC.Threshold)
	assert.Equal(t, slog.LevelDebug, c.LogLevel())

	r := New(c.Options()...)
	assert.True(t, r.Lenient())
}

func TestParseConfigEmpty(t *testing.T) {
	c, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, Config{}, c)
	assert.Equal(t, slog.LevelInfo, c.LogLevel())
}

func TestParseConfigErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown field":      "lenient: true\n",
		"negative threshold": "gc:\n  threshold: -1\n",
		"bad level":          "log:\n  level: loud\n",
		"bad type":           "gc:\n  threshold: many\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jscore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: WARN\n"), 0o644))
	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, c.LogLevel())

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
