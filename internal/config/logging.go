package config

import (
	"fmt"
	"strings"

	"nadico/internal/logging"
)

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level" json:"level,omitempty"`           // debug, info, warn, error
	Format     string          `yaml:"format" json:"format,omitempty"`         // json, console
	File       string          `yaml:"file" json:"file,omitempty"`             // stderr when empty
	DebugMode  bool            `yaml:"debug_mode" json:"debug_mode,omitempty"` // Master toggle - false = no logging
	Categories map[string]bool `yaml:"categories" json:"categories,omitempty"` // Per-category toggles
}

// IsCategoryEnabled returns whether logging is enabled for a category.
// Returns false if debug_mode is false.
// Returns true if debug_mode is true and category is enabled (or not specified).
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if !c.DebugMode {
		return false
	}
	if c.Categories == nil {
		return true // All enabled by default in debug mode
	}
	enabled, exists := c.Categories[category]
	if !exists {
		return true // Enable by default if not specified
	}
	return enabled
}

// Options converts the section for logging.Configure. With debug mode off
// every category is disabled.
func (c *LoggingConfig) Options() logging.Options {
	enabled := make(map[string]bool, len(logging.AllCategories))
	for _, cat := range logging.AllCategories {
		enabled[string(cat)] = c.IsCategoryEnabled(string(cat))
	}
	return logging.Options{
		Level:      c.Level,
		Format:     c.Format,
		File:       c.File,
		Categories: enabled,
	}
}

func (c *LoggingConfig) validate() error {
	switch strings.ToLower(c.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid logging level: %s", c.Level)
	}
	switch strings.ToLower(c.Format) {
	case "", "console", "text", "json":
	default:
		return fmt.Errorf("invalid logging format: %s", c.Format)
	}
	return nil
}
