package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tinynn/internal/config"
)

func newRuntimeFlags(t *testing.T, args ...string) (*flag.FlagSet, *string, *string, *string, *int) {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "")
	modelDir := fs.String("model", "", "")
	data := fs.String("data", "", "")
	workers := fs.Int("workers", 0, "")
	require.NoError(t, fs.Parse(args))
	return fs, cfgPath, modelDir, data, workers
}

func TestRuntimeConfig_WorkersFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pong.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 3\nmodel_dir: models\ndata: grid.csv\n"), 0o600))

	fs, cfgPath, modelDir, data, workers := newRuntimeFlags(t, "-config", path)
	cfg, err := runtimeConfig(fs, *cfgPath, *modelDir, *data, *workers)
	require.NoError(t, err)
	assert.Equal(t, "models", cfg.ModelDir)
	assert.Equal(t, "grid.csv", cfg.DataPath)
	assert.Equal(t, 3, cfg.Parallel().Workers())
}

func TestRuntimeConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pong.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 3\nmodel_dir: models\n"), 0o600))

	fs, cfgPath, modelDir, data, workers := newRuntimeFlags(t, "-config", path, "-workers", "1", "-model", "other")
	cfg, err := runtimeConfig(fs, *cfgPath, *modelDir, *data, *workers)
	require.NoError(t, err)
	assert.Equal(t, "other", cfg.ModelDir)
	assert.False(t, cfg.Parallel().Enabled)
}

func TestRuntimeConfig_Defaults(t *testing.T) {
	fs, cfgPath, modelDir, data, workers := newRuntimeFlags(t)
	cfg, err := runtimeConfig(fs, *cfgPath, *modelDir, *data, *workers)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestRuntimeConfig_RejectsNonPositiveWorkers(t *testing.T) {
	fs, cfgPath, modelDir, data, workers := newRuntimeFlags(t, "-workers", "0")
	_, err := runtimeConfig(fs, *cfgPath, *modelDir, *data, *workers)
	require.ErrorIs(t, err, config.ErrInvalid)
}
