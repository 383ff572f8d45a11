package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 2000, cfg.Particles.MaxCount)
	assert.Equal(t, 4.0, cfg.Particles.Radius)
	assert.Equal(t, 4, cfg.Particles.Substeps)
	assert.Equal(t, 20.0, cfg.Emitter.Radius)
	assert.Equal(t, 0.5, cfg.Spawn.Variance)
	assert.Equal(t, 10.0, cfg.Spawn.Velocity.X)
	assert.Equal(t, uint8(230), cfg.Spawn.BirthColor.R)
	assert.Equal(t, uint8(0), cfg.Spawn.DeathColor.A)
	assert.True(t, cfg.Forces.GravityEnabled)
}

func TestZeroWorldUsesScreen(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	b := cfg.Derived.Boundary
	assert.Equal(t, 0.0, b.Left)
	assert.Equal(t, 0.0, b.Top)
	assert.Equal(t, 800.0, b.Right)
	assert.Equal(t, 450.0, b.Bottom)
	assert.Equal(t, float32(800), cfg.Derived.ScreenW32)
}

func TestOverrideMergesWithDefaults(t *testing.T) {
	path := writeConfig(t, `
particles:
  max_count: 500
world:
  left: -100
  right: 100
  top: -50
  bottom: 50
spawn:
  lifetime: 3
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Particles.MaxCount)
	assert.Equal(t, 4.0, cfg.Particles.Radius, "unset fields keep their defaults")
	assert.Equal(t, 3.0, cfg.Spawn.Lifetime)
	assert.Equal(t, 10.0, cfg.Spawn.BirthMass)

	b := cfg.Derived.Boundary
	assert.Equal(t, -100.0, b.Left)
	assert.Equal(t, 50.0, b.Bottom)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero capacity", "particles:\n  max_count: 0\n"},
		{"negative radius", "particles:\n  radius: -1\n"},
		{"zero substeps", "particles:\n  substeps: 0\n"},
		{"zero birth mass", "spawn:\n  birth_mass: 0\n"},
		{"zero headless dt", "headless:\n  dt: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "particles: [unterminated\n"))
	assert.Error(t, err)
}

func TestInitAndCfg(t *testing.T) {
	require.NoError(t, Init(""))
	assert.Equal(t, 2000, Cfg().Particles.MaxCount)

	assert.Error(t, Init(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.NotNil(t, Cfg(), "failed Init keeps the previous config")
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Particles.MaxCount = 1234
	cfg.Spawn.Velocity.Y = -7

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1234, back.Particles.MaxCount)
	assert.Equal(t, -7.0, back.Spawn.Velocity.Y)
	assert.Equal(t, cfg.Spawn.BirthColor, back.Spawn.BirthColor)
}
