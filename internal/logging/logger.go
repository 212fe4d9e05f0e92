// Package logging provides categorized logging for the nADICO engine.
// Each subsystem logs through its own category so hosts can silence or
// raise the verbosity of individual parts of the pipeline. Output goes
// through zap; until Configure or SetBase is called every logger is a no-op.
package logging

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	// Engine categories
	CategoryGeneralizer Category = "generalizer" // Level-0 and higher-order generalization, ADIC derivation
	CategoryRange       Category = "range"       // Deontic range updates
	CategoryMapper      Category = "mapper"      // Value mapper classification
	CategoryExpression  Category = "expression"  // Expression construction and type transitions
	CategoryMemory      Category = "memory"      // Action memory queries

	// Host categories
	CategoryStore    Category = "store"    // SQLite norm store
	CategoryScenario Category = "scenario" // Observation file decoding
	CategoryCLI      Category = "cli"      // Command line front end
)

// AllCategories lists every category in declaration order.
var AllCategories = []Category{
	CategoryGeneralizer,
	CategoryRange,
	CategoryMapper,
	CategoryExpression,
	CategoryMemory,
	CategoryStore,
	CategoryScenario,
	CategoryCLI,
}

// Options mirrors config.LoggingConfig to avoid an import cycle.
type Options struct {
	Level      string          // debug, info, warn, error
	Format     string          // json, console
	File       string          // optional output path, stderr when empty
	Categories map[string]bool // per-category toggles, all enabled when nil
}

// Logger writes printf-style messages for one category.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu         sync.RWMutex
	base       = zap.NewNop()
	categories map[string]bool
	loggers    = make(map[Category]*Logger)
)

// Configure builds a zap logger from opts and installs it.
func Configure(opts Options) error {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Sampling = nil
	switch strings.ToLower(opts.Format) {
	case "", "console", "text":
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	case "json":
		cfg.Encoding = "json"
	default:
		return fmt.Errorf("logging: unknown format %q", opts.Format)
	}
	if opts.File != "" {
		cfg.OutputPaths = []string{opts.File}
	}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("logging: build logger: %w", err)
	}
	install(l, opts.Categories)
	return nil
}

// SetBase installs an already built zap logger, e.g. the CLI's logger or
// an observer core in tests. A nil logger silences all output.
func SetBase(l *zap.Logger, enabled map[string]bool) {
	if l == nil {
		l = zap.NewNop()
	}
	install(l, enabled)
}

func install(l *zap.Logger, enabled map[string]bool) {
	mu.Lock()
	defer mu.Unlock()
	base = l
	categories = enabled
	loggers = make(map[Category]*Logger)
}

func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("logging: unknown level %q", level)
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return categoryEnabled(category)
}

func categoryEnabled(category Category) bool {
	if categories == nil {
		return true // All enabled by default
	}
	enabled, exists := categories[string(category)]
	if !exists {
		return true // Enable by default if not specified
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Disabled categories get a no-op logger.
func Get(category Category) *Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	z := zap.NewNop()
	if categoryEnabled(category) {
		z = base.Named(string(category))
	}
	l := &Logger{category: category, sugar: z.Sugar()}
	loggers[category] = l
	return l
}

// Sync flushes the underlying zap logger.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	return base.Sync()
}

func (l *Logger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// Category returns the logger's category.
func (l *Logger) Category() Category { return l.category }

// WithContext returns a logger that attaches ctx as structured fields.
// Keys are added in sorted order.
func (l *Logger) WithContext(ctx map[string]interface{}) *Logger {
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kv := make([]interface{}, 0, 2*len(keys))
	for _, k := range keys {
		kv = append(kv, k, ctx[k])
	}
	return &Logger{category: l.category, sugar: l.sugar.With(kv...)}
}

// Convenience functions for common categories

func Generalizer(format string, args ...interface{}) {
	Get(CategoryGeneralizer).Info(format, args...)
}

func GeneralizerDebug(format string, args ...interface{}) {
	Get(CategoryGeneralizer).Debug(format, args...)
}

func GeneralizerWarn(format string, args ...interface{}) {
	Get(CategoryGeneralizer).Warn(format, args...)
}

func Range(format string, args ...interface{}) {
	Get(CategoryRange).Info(format, args...)
}

func RangeDebug(format string, args ...interface{}) {
	Get(CategoryRange).Debug(format, args...)
}

func ExpressionDebug(format string, args ...interface{}) {
	Get(CategoryExpression).Debug(format, args...)
}

func Memory(format string, args ...interface{}) {
	Get(CategoryMemory).Info(format, args...)
}

func MemoryDebug(format string, args ...interface{}) {
	Get(CategoryMemory).Debug(format, args...)
}

func Store(format string, args ...interface{}) {
	Get(CategoryStore).Info(format, args...)
}

func StoreDebug(format string, args ...interface{}) {
	Get(CategoryStore).Debug(format, args...)
}

func Scenario(format string, args ...interface{}) {
	Get(CategoryScenario).Info(format, args...)
}

func ScenarioWarn(format string, args ...interface{}) {
	Get(CategoryScenario).Warn(format, args...)
}

func CLI(format string, args ...interface{}) {
	Get(CategoryCLI).Info(format, args...)
}

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
