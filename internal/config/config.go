// Package config loads spatia settings shared by the IDE shell and the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/chazu/spatia/pkg/engine"
	"github.com/chazu/spatia/pkg/kernel/sdfx"
	"github.com/chazu/spatia/pkg/octree"
)

// Config is the root of a spatia YAML file. Zero sections fall back to
// Default when loaded.
type Config struct {
	Index IndexConfig `yaml:"index"`
	Eval  EvalConfig  `yaml:"eval"`
	Mesh  MeshConfig  `yaml:"mesh"`
	Log   LogConfig   `yaml:"log"`
}

// IndexConfig holds octree defaults for sketches that do not set them.
type IndexConfig struct {
	Capacity int `yaml:"capacity"`
	MaxLevel int `yaml:"maxLevel"`
}

// EvalConfig controls sketch evaluation.
type EvalConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// MeshConfig controls tessellation.
type MeshConfig struct {
	Cells         int     `yaml:"cells"`
	WeldTolerance float64 `yaml:"weldTolerance"`
}

// LogConfig selects the logger level: debug, info, warn or error.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Index: IndexConfig{
			Capacity: octree.DefaultCapacity,
			MaxLevel: octree.DefaultMaxLevel,
		},
		Eval: EvalConfig{Timeout: engine.EvalTimeout},
		Mesh: MeshConfig{
			Cells:         sdfx.DefaultMeshCells,
			WeldTolerance: sdfx.DefaultWeldTolerance,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a YAML file over Default. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.Index.Capacity < 1 {
		errs = append(errs, fmt.Errorf("index.capacity must be >= 1, got %d", c.Index.Capacity))
	}
	if c.Index.MaxLevel < 0 {
		errs = append(errs, fmt.Errorf("index.maxLevel must be >= 0, got %d", c.Index.MaxLevel))
	}
	if c.Eval.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("eval.timeout must be positive, got %s", c.Eval.Timeout))
	}
	if c.Mesh.Cells < 1 {
		errs = append(errs, fmt.Errorf("mesh.cells must be >= 1, got %d", c.Mesh.Cells))
	}
	if c.Mesh.WeldTolerance < 0 {
		errs = append(errs, fmt.Errorf("mesh.weldTolerance must be >= 0, got %g", c.Mesh.WeldTolerance))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// NewLogger builds a console logger writing to stderr at the given level.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("config: log level: %w", err)
	}
	return zap.Config{
		Level:    zap.NewAtomicLevelAt(lvl),
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		},
		DisableStacktrace: true,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}.Build()
}

// EngineOptions returns the engine options implied by c.
func (c Config) EngineOptions(logger *zap.Logger) []engine.Option {
	return []engine.Option{
		engine.WithTimeout(c.Eval.Timeout),
		engine.WithIndexDefaults(c.Index.Capacity, c.Index.MaxLevel),
		engine.WithLogger(logger),
	}
}

// KernelOptions returns the sdfx kernel options implied by c.
func (c Config) KernelOptions(logger *zap.Logger) []sdfx.Option {
	return []sdfx.Option{
		sdfx.WithCells(c.Mesh.Cells),
		sdfx.WithWeldTolerance(c.Mesh.WeldTolerance),
		sdfx.WithLogger(logger),
	}
}
