// Package config provides configuration loading and access for the engine.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all engine configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Simulation SimulationConfig `yaml:"simulation"`
	Demo       DemoConfig       `yaml:"demo"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the demo.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SimulationConfig holds the particle group parameters.
type SimulationConfig struct {
	DT               float64 `yaml:"dt"`                 // Fixed timestep fallback (seconds)
	Seed             uint32  `yaml:"seed"`               // Group RNG seed
	MaxParticleCount int     `yaml:"max_particle_count"` // Declared slot capacity (0 = unbounded)
}

// DemoConfig holds the demo scene parameters.
type DemoConfig struct {
	FountainParticles int     `yaml:"fountain_particles"` // Slot count of the central fountain
	MoverCount        int     `yaml:"mover_count"`        // Orbiting mover entities
	MoverSpeed        float64 `yaml:"mover_speed"`        // World units per second
	PoolSize          int     `yaml:"pool_size"`          // Pre-allocated burst emitters
	BurstParticles    int     `yaml:"burst_particles"`    // Slot count per burst emitter
	WorldRadius       float64 `yaml:"world_radius"`       // Mover orbit radius
}

// TelemetryConfig holds stats collection settings.
type TelemetryConfig struct {
	StatsWindow   float64 `yaml:"stats_window"`   // Window size in simulated seconds
	PerfLogEvery  int     `yaml:"perf_log_every"` // Log perf breakdown every N ticks (0 = off)
	RollingWindow int     `yaml:"rolling_window"` // Perf collector rolling window in ticks
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32      float32
	ScreenW32 float32
	ScreenH32 float32
}

var global *Config

// Init loads the configuration and installs it globally.
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
	// Start with embedded defaults
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

	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.Simulation.DT <= 0 {
		c.Simulation.DT = 1.0 / 60.0
	}
	c.Derived.DT32 = float32(c.Simulation.DT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
}
