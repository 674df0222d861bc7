// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// EnvPrefix prefixes every environment override, e.g. ECOSIM_SIM_SEED.
const EnvPrefix = "ECOSIM_"

// Config holds all simulation configuration parameters.
type Config struct {
	Sim         SimConfig         `yaml:"sim"`
	Limits      LimitsConfig      `yaml:"limits"`
	Observer    ObserverConfig    `yaml:"observer"`
	Tour        []TourStop        `yaml:"tour"`
	Regions     []RegionConfig    `yaml:"regions"`
	Species     []SpeciesConfig   `yaml:"species"`
	Populations PopulationsConfig `yaml:"populations"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Log         LogConfig         `yaml:"log"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SimConfig holds the run loop parameters.
type SimConfig struct {
	DT       float64 `yaml:"dt" env:"DT"`               // days per tick
	MaxDays  float64 `yaml:"max_days" env:"MAX_DAYS"`   // stop after this much simulated time (0 = forever)
	Seed     uint64  `yaml:"seed" env:"SEED"`           // offsets every spawn stream
	LogEvery int     `yaml:"log_every" env:"LOG_EVERY"` // ticks between progress logs
}

// LimitsConfig holds spawn ceilings.
type LimitsConfig struct {
	MaxSpawnPerCall    int `yaml:"max_spawn_per_call" env:"MAX_SPAWN_PER_CALL"`
	ConversionSpawnCap int `yaml:"conversion_spawn_cap" env:"CONVERSION_SPAWN_CAP"`
}

// ObserverConfig places the observer that drives region fidelity.
type ObserverConfig struct {
	Region uint32 `yaml:"region" env:"REGION"` // 0 = no observer, everything stays aggregate
	Radius int    `yaml:"radius" env:"RADIUS"` // hops around Region kept in individual mode
}

// TourStop moves the observer to Region once simulated time reaches Day.
type TourStop struct {
	Day    float64 `yaml:"day"`
	Region uint32  `yaml:"region"`
}

// RegionConfig defines one node of the region graph.
type RegionConfig struct {
	ID           uint32   `yaml:"id"`
	Name         string   `yaml:"name"`
	FoodCapacity float64  `yaml:"food_capacity"`
	Temperature  float64  `yaml:"temperature"`
	Neighbors    []uint32 `yaml:"neighbors"`
}

// DistConfig is a normal distribution for one genetic trait.
type DistConfig struct {
	Mean float64 `yaml:"mean"`
	Std  float64 `yaml:"std"`
}

// GeneticsConfig holds per-trait distributions.
type GeneticsConfig struct {
	LimbLength DistConfig `yaml:"limb_length"`
	BodyMass   DistConfig `yaml:"body_mass"`
	SizeScale  DistConfig `yaml:"size_scale"`
	Strength   DistConfig `yaml:"strength"`
	Agility    DistConfig `yaml:"agility"`
	Endurance  DistConfig `yaml:"endurance"`
	Intellect  DistConfig `yaml:"intellect"`
}

// SpeciesConfig defines one species template.
type SpeciesConfig struct {
	ID              uint32  `yaml:"id"`
	Name            string  `yaml:"name"`
	BirthRate       float64 `yaml:"birth_rate"`
	DeathRate       float64 `yaml:"death_rate"`
	FoodRequirement float64 `yaml:"food_requirement"`

	Prey           []uint32 `yaml:"prey"`
	HuntEfficiency float64  `yaml:"hunt_efficiency"`

	Genetics GeneticsConfig `yaml:"genetics"`
	Special  []string       `yaml:"special"` // trait names, e.g. [wings]

	MaturityAge          float64 `yaml:"maturity_age"`
	Lifespan             float64 `yaml:"lifespan"`
	OptimalTemperature   float64 `yaml:"optimal_temperature"`
	TemperatureTolerance float64 `yaml:"temperature_tolerance"`
}

// PopulationsConfig seeds the initial aggregate populations.
type PopulationsConfig struct {
	Rules []PopulationRule `yaml:"rules"`
}

// PopulationRule seeds one species in every region not excluded, with
// Base + PerRegion*regionID individuals.
type PopulationRule struct {
	Species   uint32   `yaml:"species"`
	Base      uint32   `yaml:"base"`
	PerRegion uint32   `yaml:"per_region"`
	Exclude   []uint32 `yaml:"exclude"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window" env:"STATS_WINDOW"` // simulated days per window
	OutputDir           string  `yaml:"output_dir" env:"OUTPUT_DIR"`     // empty = no files
	SQLite              bool    `yaml:"sqlite" env:"SQLITE"`
	Journal             bool    `yaml:"journal" env:"JOURNAL"`
	PerfCollectorWindow int     `yaml:"perf_collector_window" env:"PERF_COLLECTOR_WINDOW"`
}

// LogConfig holds logging parameters.
type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"` // debug, info, warn, error
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	LogLevel    slog.Level // Log.Level parsed
	WindowTicks int        // Telemetry.StatsWindow / Sim.DT, at least 1
	MaxTicks    int        // Sim.MaxDays / Sim.DT, 0 = unbounded
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

// Load loads configuration from a YAML file, merging with embedded defaults,
// then applies ECOSIM_* environment overrides.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
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

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the scalar sections. The
// region, species, population and tour tables are file-only.
func (c *Config) applyEnv() error {
	sections := []struct {
		prefix string
		target any
	}{
		{"SIM_", &c.Sim},
		{"LIMITS_", &c.Limits},
		{"OBSERVER_", &c.Observer},
		{"TELEMETRY_", &c.Telemetry},
		{"LOG_", &c.Log},
	}
	for _, s := range sections {
		if err := env.ParseWithOptions(s.target, env.Options{Prefix: EnvPrefix + s.prefix}); err != nil {
			return fmt.Errorf("parse env: %w", err)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	if c.Sim.DT <= 0 {
		return fmt.Errorf("sim.dt must be positive, got %v", c.Sim.DT)
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	c.Derived.LogLevel = lvl

	c.Derived.WindowTicks = max(1, int(math.Round(c.Telemetry.StatsWindow/c.Sim.DT)))
	c.Derived.MaxTicks = 0
	if c.Sim.MaxDays > 0 {
		c.Derived.MaxTicks = int(math.Ceil(c.Sim.MaxDays / c.Sim.DT))
	}
	if c.Sim.LogEvery <= 0 {
		c.Sim.LogEvery = 10
	}
	return nil
}

// Recompute refreshes Derived after fields were changed in place, e.g. by
// command-line overrides.
func (c *Config) Recompute() error {
	return c.computeDerived()
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
