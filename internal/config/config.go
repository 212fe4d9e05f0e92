package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"nadico/internal/deontic"
	"nadico/internal/generalizer"
	"nadico/internal/memory"
)

// Config holds all nadico configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Deontic range shared by every generalizer
	Range RangeConfig `yaml:"range"`

	// Generalization and ADIC derivation
	Generalizer GeneralizerConfig `yaml:"generalizer"`

	// Action memory
	Memory MemoryConfig `yaml:"memory"`

	// Norm report store
	Store StoreConfig `yaml:"store"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// RangeConfig configures the deontic range.
type RangeConfig struct {
	Type                           string   `yaml:"type"` // DISCRETE, STATIC_MIN_MAX, EXPANDING_MIN_MAX, SITUATIONAL_MIN_MAX, HISTORY_MIN_MAX
	HistoryLength                  int      `yaml:"history_length"`
	StaticLower                    *float64 `yaml:"static_lower,omitempty"`
	StaticUpper                    *float64 `yaml:"static_upper,omitempty"`
	ToleranceAroundExtremes        float64  `yaml:"tolerance_around_extremes"`
	MaximumMovementInDeonticCenter float64  `yaml:"maximum_movement_in_deontic_center"`
	Mapper                         string   `yaml:"mapper"` // symmetric, zero_based, discrete
}

// GeneralizerConfig configures generalization.
type GeneralizerConfig struct {
	Aggregation                     string `yaml:"aggregation"` // sum, mean, opportunistic
	RemoveNonAttributeAimProperties bool   `yaml:"remove_non_attribute_aim_properties"`
	RequireDifferingAttributes      bool   `yaml:"require_differing_attributes"`
	MaxLevel                        int    `yaml:"max_level"` // highest higher-order level derived, 0 disables
}

// MemoryConfig configures the action memory.
type MemoryConfig struct {
	Capacity    int    `yaml:"capacity"`
	Aggregation string `yaml:"aggregation"` // count, sum, mean
}

// StoreConfig configures the SQLite report store.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

var validRangeTypes = []deontic.RangeType{
	deontic.Discrete,
	deontic.StaticMinMax,
	deontic.ExpandingMinMax,
	deontic.SituationalMinMax,
	deontic.HistoryMinMax,
}

var validMappers = []deontic.MapperKind{
	deontic.SymmetricMapperKind,
	deontic.ZeroBasedMapperKind,
	deontic.DiscreteMapperKind,
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	lower, upper := 0.0, 0.0
	return &Config{
		Name:    "nadico",
		Version: "0.3.0",

		Range: RangeConfig{
			Type:                           string(deontic.HistoryMinMax),
			HistoryLength:                  100,
			StaticLower:                    &lower,
			StaticUpper:                    &upper,
			ToleranceAroundExtremes:        0.05,
			MaximumMovementInDeonticCenter: 1.0,
			Mapper:                         string(deontic.ZeroBasedMapperKind),
		},

		Generalizer: GeneralizerConfig{
			Aggregation: string(generalizer.StrategySum),
		},

		Memory: MemoryConfig{
			Capacity:    50,
			Aggregation: "sum",
		},

		Store: StoreConfig{
			DatabasePath: ".nadico/norms.db",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("NADICO_RANGE_TYPE"); v != "" {
		c.Range.Type = strings.ToUpper(v)
	}
	if v := os.Getenv("NADICO_MAPPER"); v != "" {
		c.Range.Mapper = strings.ToLower(v)
	}
	if v := os.Getenv("NADICO_HISTORY_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Range.HistoryLength = n
		}
	}
	if v := os.Getenv("NADICO_AGGREGATION"); v != "" {
		c.Generalizer.Aggregation = strings.ToLower(v)
	}

	// Database path from environment
	if path := os.Getenv("NADICO_DB"); path != "" {
		c.Store.DatabasePath = path
	}
	if level := os.Getenv("NADICO_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
		c.Logging.DebugMode = true
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validType := false
	for _, t := range validRangeTypes {
		if deontic.RangeType(c.Range.Type) == t {
			validType = true
			break
		}
	}
	if !validType {
		return fmt.Errorf("%w: invalid range type: %s (valid: %v)", deontic.ErrConfiguration, c.Range.Type, validRangeTypes)
	}
	if deontic.RangeType(c.Range.Type) == deontic.StaticMinMax && (c.Range.StaticLower == nil || c.Range.StaticUpper == nil) {
		return fmt.Errorf("%w: static range requires static_lower and static_upper", deontic.ErrConfiguration)
	}
	if deontic.RangeType(c.Range.Type) == deontic.HistoryMinMax && c.Range.HistoryLength < 1 {
		return fmt.Errorf("%w: history_length must be positive, got %d", deontic.ErrConfiguration, c.Range.HistoryLength)
	}
	if c.Range.ToleranceAroundExtremes < 0 || c.Range.ToleranceAroundExtremes >= 0.5 {
		return fmt.Errorf("%w: tolerance_around_extremes must be in [0, 0.5), got %v", deontic.ErrConfiguration, c.Range.ToleranceAroundExtremes)
	}

	validMapper := c.Range.Mapper == ""
	for _, m := range validMappers {
		if deontic.MapperKind(c.Range.Mapper) == m {
			validMapper = true
			break
		}
	}
	if !validMapper {
		return fmt.Errorf("%w: invalid mapper: %s (valid: %v)", deontic.ErrConfiguration, c.Range.Mapper, validMappers)
	}

	if _, err := generalizer.ParseStrategy(c.Generalizer.Aggregation); err != nil {
		return err
	}
	if c.Generalizer.MaxLevel < 0 {
		return fmt.Errorf("%w: max_level must not be negative", deontic.ErrConfiguration)
	}
	if c.Memory.Capacity < 1 {
		return fmt.Errorf("%w: memory capacity must be positive, got %d", deontic.ErrConfiguration, c.Memory.Capacity)
	}
	if _, err := memory.ParseAggregation(c.Memory.Aggregation); err != nil {
		return err
	}
	return c.Logging.validate()
}

// RangeConfig converts the range section for deontic.NewRange.
func (c *Config) RangeConfig() deontic.RangeConfig {
	return deontic.RangeConfig{
		Type:          deontic.RangeType(c.Range.Type),
		HistoryLength: c.Range.HistoryLength,
		StaticLower:   c.Range.StaticLower,
		StaticUpper:   c.Range.StaticUpper,
		Tolerance:     c.Range.ToleranceAroundExtremes,
		MaxMovement:   c.Range.MaximumMovementInDeonticCenter,
		Mapper:        deontic.MapperKind(c.Range.Mapper),
	}
}

// GeneralizerOptions converts the generalizer section into options for
// generalizer.New.
func (c *Config) GeneralizerOptions() ([]generalizer.Option, error) {
	strategy, err := generalizer.ParseStrategy(c.Generalizer.Aggregation)
	if err != nil {
		return nil, err
	}
	return []generalizer.Option{
		generalizer.WithStrategy(strategy),
		generalizer.WithRemoveNonAttributeAimProperties(c.Generalizer.RemoveNonAttributeAimProperties),
	}, nil
}
