// Package logging provides category-keyed structured logging for policyscope.
// Each pipeline stage logs through its own named zap logger so a single
// submission can be followed from form decode to rendered page.
package logging

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category identifies a pipeline subsystem.
type Category string

const (
	CategoryBoot       Category = "boot"       // Startup and configuration
	CategoryServer     Category = "server"     // HTTP presentation layer
	CategorySimulation Category = "simulation" // Microsimulation engine calls
	CategoryGraph      Category = "graph"      // Trace graph parsing
	CategoryExplain    Category = "explain"    // Explanation service calls
)

var (
	mu      sync.RWMutex
	root    *zap.Logger
	loggers = make(map[Category]*zap.SugaredLogger)
	// wrapped carries one extra frame of caller skip so the package-level
	// convenience functions annotate their caller, not themselves.
	wrapped = make(map[Category]*zap.SugaredLogger)
)

// Initialize builds the process-wide logger. level is one of
// debug/info/warn/error; format is "json" or "console". Subsequent calls
// replace the root logger and drop cached category loggers.
func Initialize(level, format string) error {
	cfg := zap.NewProductionConfig()
	if format != "json" {
		cfg = zap.NewDevelopmentConfig()
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	mu.Lock()
	root = logger
	loggers = make(map[Category]*zap.SugaredLogger)
	wrapped = make(map[Category]*zap.SugaredLogger)
	mu.Unlock()
	return nil
}

// Get returns the sugared logger for a category, annotated with the
// caller's own file and line. Before Initialize it returns a no-op
// logger so library code never nil-checks.
func Get(category Category) *zap.SugaredLogger {
	return lookup(category, 0)
}

// get serves the convenience functions below, which add one stack frame
// between the log site and zap.
func get(category Category) *zap.SugaredLogger {
	return lookup(category, 1)
}

func lookup(category Category, skip int) *zap.SugaredLogger {
	mu.RLock()
	cache := loggers
	if skip > 0 {
		cache = wrapped
	}
	if l, ok := cache[category]; ok {
		mu.RUnlock()
		return l
	}
	r := root
	mu.RUnlock()

	if r == nil {
		return zap.NewNop().Sugar()
	}

	mu.Lock()
	defer mu.Unlock()
	cache = loggers
	if skip > 0 {
		cache = wrapped
	}
	if l, ok := cache[category]; ok {
		return l
	}
	l := r.Named(string(category)).WithOptions(zap.AddCallerSkip(skip)).Sugar()
	cache[category] = l
	return l
}

// Sync flushes buffered log entries. Call at shutdown.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if root != nil {
		_ = root.Sync()
	}
}

// Convenience functions, one set per category.

func Boot(format string, args ...interface{}) {
	get(CategoryBoot).Infof(format, args...)
}

func BootError(format string, args ...interface{}) {
	get(CategoryBoot).Errorf(format, args...)
}

func Server(format string, args ...interface{}) {
	get(CategoryServer).Infof(format, args...)
}

func ServerDebug(format string, args ...interface{}) {
	get(CategoryServer).Debugf(format, args...)
}

func ServerError(format string, args ...interface{}) {
	get(CategoryServer).Errorf(format, args...)
}

func Simulation(format string, args ...interface{}) {
	get(CategorySimulation).Infof(format, args...)
}

func SimulationDebug(format string, args ...interface{}) {
	get(CategorySimulation).Debugf(format, args...)
}

func SimulationError(format string, args ...interface{}) {
	get(CategorySimulation).Errorf(format, args...)
}

func Graph(format string, args ...interface{}) {
	get(CategoryGraph).Infof(format, args...)
}

func GraphDebug(format string, args ...interface{}) {
	get(CategoryGraph).Debugf(format, args...)
}

func Explain(format string, args ...interface{}) {
	get(CategoryExplain).Infof(format, args...)
}

func ExplainDebug(format string, args ...interface{}) {
	get(CategoryExplain).Debugf(format, args...)
}

func ExplainError(format string, args ...interface{}) {
	get(CategoryExplain).Errorf(format, args...)
}
