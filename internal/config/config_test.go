package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Workspace.Dir)
	assert.Equal(t, "output", cfg.Workspace.OutputDir)
	assert.Equal(t, "classes.yaml", cfg.Classes)

	assert.InDelta(t, 7273.0, cfg.Calibration.ValidMin, 1e-9)
	assert.InDelta(t, 43636.0, cfg.Calibration.ValidMax, 1e-9)
	assert.InDelta(t, 0.0000275, cfg.Calibration.Scale, 1e-12)
	assert.InDelta(t, -0.2, cfg.Calibration.Offset, 1e-9)

	assert.Equal(t, 16, cfg.Trainer.MaxDepth)
	assert.Equal(t, 2, cfg.Trainer.MinSamplesSplit)
	assert.Equal(t, 1, cfg.Trainer.MinSamplesLeaf)

	assert.Equal(t, "id", cfg.Training.IDField)
	assert.Equal(t, "type", cfg.Training.TypeField)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "landcover.db", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LANDCOVER_STORE_DRIVER", "postgres")
	t.Setenv("LANDCOVER_LOG_LEVEL", "debug")
	t.Setenv("LANDCOVER_TRAINER_MAX_DEPTH", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 5, cfg.Trainer.MaxDepth)
}

func TestResolvePath(t *testing.T) {
	cfg := &Config{Workspace: WorkspaceConfig{Dir: "/data/scene"}}

	assert.Equal(t, filepath.Join("/data/scene", "bands/B4.TIF"), cfg.ResolvePath("bands/B4.TIF"))
	assert.Equal(t, "/abs/B4.TIF", cfg.ResolvePath("/abs/B4.TIF"))
	assert.Equal(t, "", cfg.ResolvePath(""))
}

func TestOutputPath(t *testing.T) {
	cfg := &Config{Workspace: WorkspaceConfig{Dir: "/data/scene", OutputDir: "output"}}
	assert.Equal(t, filepath.Join("/data/scene", "output", "map.png"), cfg.OutputPath("map.png"))

	cfg.Workspace.OutputDir = "/var/out"
	assert.Equal(t, filepath.Join("/var/out", "map.png"), cfg.OutputPath("map.png"))
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "json"}))

	err := InitLogger(LogConfig{Level: "shouting", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}
