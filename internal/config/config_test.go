package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8, cfg.Index.Capacity)
	assert.Equal(t, 24, cfg.Index.MaxLevel)
	assert.Equal(t, 5*time.Second, cfg.Eval.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spatia.yaml")
	src := `
index:
  capacity: 4
eval:
  timeout: 250ms
mesh:
  cells: 64
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Index.Capacity)
	assert.Equal(t, 24, cfg.Index.MaxLevel, "unset keys keep defaults")
	assert.Equal(t, 250*time.Millisecond, cfg.Eval.Timeout)
	assert.Equal(t, 64, cfg.Mesh.Cells)
	assert.Equal(t, Default().Mesh.WeldTolerance, cfg.Mesh.WeldTolerance)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"capacity", "index: {capacity: 0}", "index.capacity"},
		{"max level", "index: {maxLevel: -1}", "index.maxLevel"},
		{"timeout", "eval: {timeout: -1s}", "eval.timeout"},
		{"cells", "mesh: {cells: 0}", "mesh.cells"},
		{"weld", "mesh: {weldTolerance: -0.5}", "mesh.weldTolerance"},
		{"level", "log: {level: loud}", "log.level"},
		{"syntax", "index: [", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Index.Capacity = 0
	cfg.Mesh.Cells = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index.capacity")
	assert.Contains(t, err.Error(), "mesh.cells")
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("warn")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1), "debug disabled at warn")
	assert.True(t, logger.Core().Enabled(2), "error enabled at warn")

	_, err = NewLogger("chatty")
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	cfg := Default()
	assert.Len(t, cfg.EngineOptions(nil), 3)
	assert.Len(t, cfg.KernelOptions(nil), 3)
}
