// Package config provides configuration loading and access for the sandbox.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zackthomas1/particle-game/components"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all sandbox configuration parameters.
type Config struct {
	Screen    ScreenConfig          `yaml:"screen"`
	World     WorldConfig           `yaml:"world"`
	Particles ParticlesConfig       `yaml:"particles"`
	Emitter   EmitterConfig         `yaml:"emitter"`
	Spawn     components.SpawnProps `yaml:"spawn"`
	Forces    ForcesConfig          `yaml:"forces"`
	Headless  HeadlessConfig        `yaml:"headless"`
	Telemetry TelemetryConfig       `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds the boundary box particles are confined to.
// A zero-area box defaults to the screen rectangle.
type WorldConfig struct {
	Left   float64 `yaml:"left"`
	Right  float64 `yaml:"right"`
	Top    float64 `yaml:"top"`
	Bottom float64 `yaml:"bottom"`
}

// ParticlesConfig holds particle pool and solver parameters.
type ParticlesConfig struct {
	MaxCount int     `yaml:"max_count"` // pool capacity and spatial hash bucket count
	Radius   float64 `yaml:"radius"`
	Substeps int     `yaml:"substeps"`
}

// EmitterConfig holds emission parameters.
type EmitterConfig struct {
	Radius float64 `yaml:"radius"` // emission disc radius
	Rate   float64 `yaml:"rate"`   // particles per second while emitting
}

// ForcesConfig holds the initial force field.
type ForcesConfig struct {
	Gravity        float64 `yaml:"gravity"`         // downward acceleration
	GravityEnabled bool    `yaml:"gravity_enabled"` // add gravity at startup
	Drag           float64 `yaml:"drag"`            // viscous drag coefficient (0 = none)
	PointStrength  float64 `yaml:"point_strength"`  // strength of user-placed attractors
}

// HeadlessConfig holds parameters for runs without a window.
type HeadlessConfig struct {
	DT          float64 `yaml:"dt"`           // fixed frame time
	SpawnerRate float64 `yaml:"spawner_rate"` // rate of the automatic spawner
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Boundary  components.Boundary // effective world box
	ScreenW32 float32             // Screen.Width as float32
	ScreenH32 float32             // Screen.Height as float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects values the simulation cannot run with.
func (c *Config) validate() error {
	if c.Particles.MaxCount <= 0 {
		return fmt.Errorf("particles.max_count must be positive, got %d", c.Particles.MaxCount)
	}
	if c.Particles.Radius <= 0 {
		return fmt.Errorf("particles.radius must be positive, got %g", c.Particles.Radius)
	}
	if c.Particles.Substeps <= 0 {
		return fmt.Errorf("particles.substeps must be positive, got %d", c.Particles.Substeps)
	}
	if c.Spawn.BirthMass <= 0 || c.Spawn.DeathMass <= 0 {
		return fmt.Errorf("spawn masses must be positive, got birth %g death %g", c.Spawn.BirthMass, c.Spawn.DeathMass)
	}
	if c.Headless.DT <= 0 {
		return fmt.Errorf("headless.dt must be positive, got %g", c.Headless.DT)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	box := components.Boundary{
		Left:   c.World.Left,
		Right:  c.World.Right,
		Top:    c.World.Top,
		Bottom: c.World.Bottom,
	}
	if !box.Valid() {
		box = components.Boundary{Right: float64(c.Screen.Width), Bottom: float64(c.Screen.Height)}
	}
	c.Derived.Boundary = box
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
