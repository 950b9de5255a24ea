package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-world/internal/storage"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "world.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VOXEL_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, uint32(12345), cfg.Terrain.Seed)
	assert.Equal(t, storage.BackendBadger, cfg.Storage.Backend)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
terrain:
  seed: 42
  max_height: 200
storage:
  backend: memory
generation:
  radius: 2
metrics:
  port: 9100
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), cfg.Terrain.Seed)
	assert.Equal(t, 200, cfg.Terrain.MaxHeight)
	assert.Equal(t, 64, cfg.Terrain.SeaLevel, "незаданные поля берутся из дефолтов")
	assert.Equal(t, storage.BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, 2, cfg.Generation.Radius)
	assert.Equal(t, 8, cfg.Generation.UnloadRadius)
	assert.Equal(t, 9100, cfg.Metrics.GetPort())
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, "generation:\n  radius: 1\n")
	t.Setenv("VOXEL_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Generation.Radius)
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(writeConfig(t, "terrain:\n  max_height: 1000\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "generation:\n  radius: -1\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "terrain: [1, 2"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func TestMetricsPortFallback(t *testing.T) {
	m := MetricsConfig{}

	t.Setenv("VOXEL_METRICS_PORT", "")
	assert.Equal(t, 2112, m.GetPort())

	t.Setenv("VOXEL_METRICS_PORT", "9200")
	assert.Equal(t, 9200, m.GetPort())

	t.Setenv("VOXEL_METRICS_PORT", "not-a-port")
	assert.Equal(t, 2112, m.GetPort())
}
