package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"nadico/internal/deontic"
	"nadico/internal/nadico"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"NADICO_RANGE_TYPE", "NADICO_MAPPER", "NADICO_HISTORY_LENGTH", "NADICO_AGGREGATION", "NADICO_DB", "NADICO_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "nadico" {
		t.Errorf("expected Name=nadico, got %s", cfg.Name)
	}
	if cfg.Range.Type != string(deontic.HistoryMinMax) {
		t.Errorf("expected range type HISTORY_MIN_MAX, got %s", cfg.Range.Type)
	}
	if cfg.Range.HistoryLength != 100 {
		t.Errorf("expected HistoryLength=100, got %d", cfg.Range.HistoryLength)
	}
	if cfg.Memory.Capacity != 50 {
		t.Errorf("expected Capacity=50, got %d", cfg.Memory.Capacity)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "nested", "nadico.yaml")

	cfg := DefaultConfig()
	cfg.Range.Type = string(deontic.StaticMinMax)
	lower, upper := -3.0, 3.0
	cfg.Range.StaticLower = &lower
	cfg.Range.StaticUpper = &upper
	cfg.Range.Mapper = string(deontic.SymmetricMapperKind)
	cfg.Generalizer.Aggregation = "opportunistic"
	cfg.Generalizer.MaxLevel = 2

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Range.Type != string(deontic.StaticMinMax) {
		t.Errorf("expected STATIC_MIN_MAX, got %s", loaded.Range.Type)
	}
	if loaded.Range.StaticUpper == nil || *loaded.Range.StaticUpper != 3 {
		t.Errorf("expected static_upper=3, got %v", loaded.Range.StaticUpper)
	}
	if loaded.Generalizer.Aggregation != "opportunistic" {
		t.Errorf("expected opportunistic, got %s", loaded.Generalizer.Aggregation)
	}
	if loaded.Generalizer.MaxLevel != 2 {
		t.Errorf("expected MaxLevel=2, got %d", loaded.Generalizer.MaxLevel)
	}
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Memory.Capacity != 50 {
		t.Errorf("expected defaults, got capacity %d", cfg.Memory.Capacity)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "nadico.yaml")
	if err := os.WriteFile(path, []byte("memory:\n  capacity: 7\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Memory.Capacity != 7 {
		t.Errorf("expected capacity 7, got %d", cfg.Memory.Capacity)
	}
	if cfg.Range.Mapper != string(deontic.ZeroBasedMapperKind) {
		t.Errorf("expected default mapper, got %s", cfg.Range.Mapper)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nadico.yaml")
	if err := os.WriteFile(path, []byte("range: [unterminated"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown range type", func(c *Config) { c.Range.Type = "SLIDING" }},
		{"static without bounds", func(c *Config) {
			c.Range.Type = string(deontic.StaticMinMax)
			c.Range.StaticLower = nil
		}},
		{"history length zero", func(c *Config) { c.Range.HistoryLength = 0 }},
		{"tolerance too large", func(c *Config) { c.Range.ToleranceAroundExtremes = 0.5 }},
		{"unknown mapper", func(c *Config) { c.Range.Mapper = "logistic" }},
		{"negative max level", func(c *Config) { c.Generalizer.MaxLevel = -1 }},
		{"zero capacity", func(c *Config) { c.Memory.Capacity = 0 }},
		{"unknown logging level", func(c *Config) { c.Logging.Level = "chatty" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Range.Mapper = "logistic"
	if err := cfg.Validate(); !errors.Is(err, deontic.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Generalizer.Aggregation = "median"
	if err := cfg.Validate(); !errors.Is(err, nadico.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown aggregation, got %v", err)
	}
}

func TestConfig_RangeConfig(t *testing.T) {
	cfg := DefaultConfig()
	rc := cfg.RangeConfig()
	if rc.Type != deontic.HistoryMinMax {
		t.Errorf("expected HISTORY_MIN_MAX, got %s", rc.Type)
	}
	if rc.Mapper != deontic.ZeroBasedMapperKind {
		t.Errorf("expected zero_based, got %s", rc.Mapper)
	}
	if rc.Tolerance != 0.05 || rc.MaxMovement != 1.0 {
		t.Errorf("unexpected tolerance/movement %v/%v", rc.Tolerance, rc.MaxMovement)
	}
	if _, err := deontic.NewRange("a", "c", rc); err != nil {
		t.Errorf("NewRange rejected default config: %v", err)
	}
}

func TestConfig_GeneralizerOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Generalizer.Aggregation = "mean"
	opts, err := cfg.GeneralizerOptions()
	if err != nil {
		t.Fatalf("GeneralizerOptions: %v", err)
	}
	if len(opts) != 2 {
		t.Errorf("expected 2 options, got %d", len(opts))
	}

	cfg.Generalizer.Aggregation = "mode"
	if _, err := cfg.GeneralizerOptions(); err == nil {
		t.Error("expected error for unknown aggregation")
	}
}

func TestLoggingConfig_IsCategoryEnabled(t *testing.T) {
	c := LoggingConfig{}
	if c.IsCategoryEnabled("memory") {
		t.Error("categories must be off without debug mode")
	}
	c.DebugMode = true
	if !c.IsCategoryEnabled("memory") {
		t.Error("unspecified category should default to enabled")
	}
	c.Categories = map[string]bool{"memory": false}
	if c.IsCategoryEnabled("memory") {
		t.Error("explicitly disabled category reported enabled")
	}
	if !c.IsCategoryEnabled("range") {
		t.Error("unlisted category should stay enabled")
	}

	opts := c.Options()
	if opts.Categories["memory"] {
		t.Error("Options should carry the disabled category")
	}
	if !opts.Categories["generalizer"] {
		t.Error("Options should enable unlisted categories")
	}
}
