package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"autonomy/behavior"
	"autonomy/control"
	"autonomy/grid_world"
	"autonomy/localization"
	"autonomy/perception"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Kind is the config envelope kind this package reads.
const Kind = "simulation"

var (
	ErrUnknownKind   = errors.New("unknown config kind")
	ErrInvalidConfig = errors.New("invalid simulation config")
)

// OuterConfig is the envelope of every config file: a kind selector and an opaque definition
// decoded by whoever owns that kind.
type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// Config describes the simulated room, the robot and its collaborators.
// viper folds keys to lower case, so keys under def are snake_case.
type Config struct {
	// Grid is the room map, one string per row; see grid_world.FromRows.
	Grid    []string          `yaml:"grid"`
	Start   grid_world.Cell   `yaml:"start"`
	Station grid_world.Cell   `yaml:"station"`
	Targets []grid_world.Cell `yaml:"targets"`
	Seed    int64             `yaml:"seed"`

	// TickPeriod is a time.ParseDuration string.
	TickPeriod string `yaml:"tick_period"`
	// MaxTicks stops the run after this many ticks; zero runs until cancelled.
	MaxTicks int `yaml:"max_ticks"`
	// MaxExpansions bounds each plan call; zero is unbounded.
	MaxExpansions int `yaml:"max_expansions"`

	DrainPerStep        float64 `yaml:"drain_per_step"`
	ChargePerTick       float64 `yaml:"charge_per_tick"`
	InitialBattery      float64 `yaml:"initial_battery"`
	ObstacleProbability float64 `yaml:"obstacle_probability"`

	Sensor localization.SensorModel `yaml:"sensor"`
	Motion localization.MotionModel `yaml:"motion"`
	PID    control.Gains            `yaml:"pid"`
	Plant  control.PlantConfig      `yaml:"plant"`

	// Deadline bounds the whole run, e.g. {duration: 30s}.
	Deadline map[string]string `yaml:"deadline"`
}

// DefaultConfig is the 10x10 room with the charging station in the corner.
func DefaultConfig() *Config {
	return &Config{
		Grid:                append([]string(nil), grid_world.SimMap...),
		Start:               grid_world.Cell{},
		Station:             grid_world.Cell{},
		Targets:             append([]grid_world.Cell(nil), behavior.DefaultTargets...),
		Seed:                1,
		TickPeriod:          "200ms",
		MaxTicks:            200,
		DrainPerStep:        2,
		ChargePerTick:       10,
		InitialBattery:      100,
		ObstacleProbability: perception.DefaultObstacleProbability,
		Sensor:              localization.DefaultSensor,
		Motion:              localization.DefaultMotion,
		PID:                 control.Gains{Kp: 2, Ki: 0, Kd: 1},
		Plant:               control.DefaultPlant,
	}
}

// FromYaml reads a {kind, def} config file. Fields missing from def keep their defaults.
func FromYaml(path string) (*Config, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	var err error
	if err = vp.ReadInConfig(); err != nil {
		return nil, err
	}

	outerConfig := &OuterConfig{}
	if err = vp.Unmarshal(outerConfig); err != nil {
		return nil, err
	}
	if outerConfig.Kind != Kind {
		return nil, fmt.Errorf("%q: %w", outerConfig.Kind, ErrUnknownKind)
	}

	var spec []byte
	if spec, err = yaml.Marshal(outerConfig.Def); err != nil {
		return nil, err
	}

	innerConfig := DefaultConfig()
	if err = yaml.Unmarshal(spec, innerConfig); err != nil {
		return nil, err
	}
	if err = innerConfig.Validate(); err != nil {
		return nil, err
	}
	return innerConfig, nil
}

// Validate checks the parts of the config that would otherwise only fail mid-run.
func (cfg *Config) Validate() error {
	grid, err := grid_world.FromRows(cfg.Grid)
	if err != nil {
		return err
	}
	for name, c := range map[string]grid_world.Cell{"start": cfg.Start, "station": cfg.Station} {
		if !grid.InBounds(c) {
			return fmt.Errorf("%s %v: %w", name, c, grid_world.ErrOutOfBounds)
		}
	}
	for _, t := range cfg.Targets {
		if !grid.InBounds(t) {
			return fmt.Errorf("target %v: %w", t, grid_world.ErrOutOfBounds)
		}
	}
	if _, err = cfg.Period(); err != nil {
		return err
	}
	if cfg.DrainPerStep < 0 || cfg.ChargePerTick < 0 {
		return fmt.Errorf("battery rates must not be negative: %w", ErrInvalidConfig)
	}
	if cfg.ObstacleProbability < 0 || cfg.ObstacleProbability > 1 {
		return fmt.Errorf("obstacle probability %v: %w", cfg.ObstacleProbability, ErrInvalidConfig)
	}
	return nil
}

// Period is the parsed tick period.
func (cfg *Config) Period() (time.Duration, error) {
	period, err := time.ParseDuration(cfg.TickPeriod)
	if err != nil {
		return 0, err
	}
	if period <= 0 {
		return 0, fmt.Errorf("tick period %v: %w", period, ErrInvalidConfig)
	}
	return period, nil
}

// WithDeadline returns a context extended by the run deadline, if one is specified.
func (cfg *Config) WithDeadline(
	ctx context.Context,
) (context.Context, context.CancelFunc, error) {
	if val, ok := cfg.Deadline["duration"]; ok {
		duration, err := time.ParseDuration(val)
		if err != nil {
			return nil, nil, err
		}
		innerCtx, cancel := context.WithTimeout(ctx, duration)
		return innerCtx, cancel, nil
	}
	defaultCtx, cancel := context.WithCancel(ctx)
	return defaultCtx, cancel, nil
}
