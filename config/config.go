// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Behavior selects how creatures choose a movement direction.
type Behavior string

const (
	BehaviorRandom Behavior = "random" // uniform cardinal direction every step
	BehaviorGreedy Behavior = "greedy" // step toward the nearest visible food
)

// Config holds all simulation configuration parameters.
type Config struct {
	Seed   *int64       `yaml:"seed"`
	World  WorldConfig  `yaml:"world"`
	Agents AgentConfig  `yaml:"agents"`
	Engine EngineConfig `yaml:"engine"`
	Output OutputConfig `yaml:"output"`
}

// WorldConfig holds grid dimensions and food parameters.
type WorldConfig struct {
	Width            int `yaml:"width"`
	Height           int `yaml:"height"`
	CellSize         int `yaml:"cell_size"` // Pixels per cell, rendering only
	InitialFood      int `yaml:"initial_food"`
	FoodSpawnPerStep int `yaml:"food_spawn_per_step"`
	MaxFood          int `yaml:"max_food"`
}

// AgentConfig holds creature parameters shared by the whole population.
type AgentConfig struct {
	Count       int      `yaml:"count"`
	StartEnergy float64  `yaml:"start_energy"`
	MoveCost    float64  `yaml:"move_cost"`  // Deducted per cell traversed
	EatEnergy   float64  `yaml:"eat_energy"` // Gained per food cell consumed
	Speed       int      `yaml:"speed"`      // Cells moved per step
	Vision      int      `yaml:"vision"`     // Manhattan search radius
	Behavior    Behavior `yaml:"behavior"`
}

// EngineConfig holds stepping, frame rate and logging cadence.
type EngineConfig struct {
	DT                   float64 `yaml:"dt"`
	MaxFPS               int     `yaml:"max_fps"`
	LogEverySteps        int     `yaml:"log_every_steps"`
	ScreenshotEverySteps int     `yaml:"screenshot_every_steps"`
}

// OutputConfig holds run output locations.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	SQLite string `yaml:"sqlite"`
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

// Defaults returns the embedded default configuration.
func Defaults() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		panic(fmt.Sprintf("config: parsing embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The result is validated.
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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	return errors.Join(c.World.Validate(), c.Agents.Validate(), c.Engine.Validate())
}

// Validate checks grid dimensions and food quantities.
func (w WorldConfig) Validate() error {
	var errs []error
	if w.Width <= 0 {
		errs = append(errs, invalid("world.width must be > 0, got %d", w.Width))
	}
	if w.Height <= 0 {
		errs = append(errs, invalid("world.height must be > 0, got %d", w.Height))
	}
	if w.CellSize <= 0 {
		errs = append(errs, invalid("world.cell_size must be > 0, got %d", w.CellSize))
	}
	if w.InitialFood < 0 {
		errs = append(errs, invalid("world.initial_food must be >= 0, got %d", w.InitialFood))
	}
	if w.FoodSpawnPerStep < 0 {
		errs = append(errs, invalid("world.food_spawn_per_step must be >= 0, got %d", w.FoodSpawnPerStep))
	}
	if w.MaxFood < w.InitialFood {
		errs = append(errs, invalid("world.max_food (%d) must be >= world.initial_food (%d)", w.MaxFood, w.InitialFood))
	}
	return errors.Join(errs...)
}

// Validate checks creature parameters.
func (a AgentConfig) Validate() error {
	var errs []error
	if a.Count < 0 {
		errs = append(errs, invalid("agents.count must be >= 0, got %d", a.Count))
	}
	if a.Speed < 0 {
		errs = append(errs, invalid("agents.speed must be >= 0, got %d", a.Speed))
	}
	if a.Vision < 0 {
		errs = append(errs, invalid("agents.vision must be >= 0, got %d", a.Vision))
	}
	switch a.Behavior {
	case BehaviorRandom, BehaviorGreedy:
	default:
		errs = append(errs, invalid("agents.behavior must be %q or %q, got %q", BehaviorRandom, BehaviorGreedy, a.Behavior))
	}
	return errors.Join(errs...)
}

// Validate checks stepping and cadence parameters.
func (e EngineConfig) Validate() error {
	var errs []error
	if e.DT <= 0 {
		errs = append(errs, invalid("engine.dt must be > 0, got %g", e.DT))
	}
	if e.MaxFPS < 0 {
		errs = append(errs, invalid("engine.max_fps must be >= 0, got %d", e.MaxFPS))
	}
	if e.LogEverySteps < 1 {
		errs = append(errs, invalid("engine.log_every_steps must be >= 1, got %d", e.LogEverySteps))
	}
	if e.ScreenshotEverySteps < 0 {
		errs = append(errs, invalid("engine.screenshot_every_steps must be >= 0, got %d", e.ScreenshotEverySteps))
	}
	return errors.Join(errs...)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
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
