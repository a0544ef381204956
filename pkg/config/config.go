package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/edp1096/toy-mna/pkg/analysis"
	"github.com/edp1096/toy-mna/pkg/matrix"
	"github.com/edp1096/toy-mna/pkg/solver"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config is the spice.yaml options file.
type Config struct {
	Solver  SolverConfig  `yaml:"solver"`
	Logging LoggingConfig `yaml:"logging"`
	Output  OutputConfig  `yaml:"output"`
}

type SolverConfig struct {
	Backend              string  `yaml:"backend"`               // sparse, dense
	Threshold            float64 `yaml:"threshold"`             // Newton step convergence limit
	DivergenceTolerance  int     `yaml:"divergence_tolerance"`  // non-shrinking steps tolerated
	MaxIterations        int     `yaml:"max_iterations"`        // per Newton attempt
	ContinuationSteps    int     `yaml:"continuation_steps"`    // ramp increments of the first attempt
	ContinuationAttempts int     `yaml:"continuation_attempts"` // ramps before giving up
	ContinuationGrowth   int     `yaml:"continuation_growth"`   // step multiplier between ramps
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

type OutputConfig struct {
	Plot string `yaml:"plot"` // image path, empty disables
}

func DefaultConfig() *Config {
	opts := solver.DefaultOptions()
	return &Config{
		Solver: SolverConfig{
			Backend:              matrix.BackendSparse,
			Threshold:            opts.Threshold,
			DivergenceTolerance:  opts.DivergenceTolerance,
			MaxIterations:        opts.MaxIterations,
			ContinuationSteps:    opts.ContinuationSteps,
			ContinuationAttempts: opts.ContinuationAttempts,
			ContinuationGrowth:   opts.ContinuationGrowth,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
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

func (c *Config) applyEnvOverrides() {
	if backend := os.Getenv("SPICE_BACKEND"); backend != "" {
		c.Solver.Backend = backend
	}
	if level := os.Getenv("SPICE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

func (c *Config) Validate() error {
	var problems []string

	if _, err := matrix.NewProvider(c.Solver.Backend); err != nil {
		problems = append(problems, err.Error())
	}
	s := c.Solver
	if s.Threshold <= 0 {
		problems = append(problems, fmt.Sprintf("solver.threshold must be positive, got %g", s.Threshold))
	}
	for name, v := range map[string]int{
		"solver.divergence_tolerance":  s.DivergenceTolerance,
		"solver.max_iterations":        s.MaxIterations,
		"solver.continuation_steps":    s.ContinuationSteps,
		"solver.continuation_attempts": s.ContinuationAttempts,
	} {
		if v <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be positive, got %d", name, v))
		}
	}
	if s.ContinuationGrowth < 2 {
		problems = append(problems, fmt.Sprintf("solver.continuation_growth must be at least 2, got %d", s.ContinuationGrowth))
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		problems = append(problems, fmt.Sprintf("logging.level: %v", err))
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		problems = append(problems, fmt.Sprintf("logging.format must be console or json, got %q", c.Logging.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) SolverOptions() solver.Options {
	return solver.Options{
		Threshold:            c.Solver.Threshold,
		DivergenceTolerance:  c.Solver.DivergenceTolerance,
		MaxIterations:        c.Solver.MaxIterations,
		ContinuationSteps:    c.Solver.ContinuationSteps,
		ContinuationAttempts: c.Solver.ContinuationAttempts,
		ContinuationGrowth:   c.Solver.ContinuationGrowth,
	}
}

// Settings builds the analysis settings for this configuration.
func (c *Config) Settings(logger *zap.Logger) (analysis.Settings, error) {
	p, err := matrix.NewProvider(c.Solver.Backend)
	if err != nil {
		return analysis.Settings{}, err
	}
	return analysis.Settings{Provider: p, Solver: c.SolverOptions(), Logger: logger}, nil
}

// NewLogger builds a zap logger. verbose forces debug level.
func (c *Config) NewLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Logging.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("logging.level: %w", err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
