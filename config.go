package kdego

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/kdego/kde"
	"github.com/hupe1980/kdego/kernel"
	"github.com/hupe1980/kdego/metric"
)

// Config is the file form of the estimator options.
//
// Example:
//
//	kernel: epanechnikov
//	bandwidth: 0.25
//	metric: euclidean
//	tree: ball
//	mode: dual
//	rel_error: 0.01
//	monte_carlo:
//	  enabled: true
//	  success_probability: 0.9
type Config struct {
	Kernel    string  `json:"kernel" yaml:"kernel"`
	Bandwidth float64 `json:"bandwidth" yaml:"bandwidth"`
	Metric    string  `json:"metric" yaml:"metric"`
	Tree      string  `json:"tree" yaml:"tree"`
	Mode      string  `json:"mode" yaml:"mode"`
	LeafSize  int     `json:"leaf_size" yaml:"leaf_size"`

	RelError    float64 `json:"rel_error" yaml:"rel_error"`
	AbsError    float64 `json:"abs_error" yaml:"abs_error"`
	IncludeSelf bool    `json:"include_self" yaml:"include_self"`
	Normalize   bool    `json:"normalize" yaml:"normalize"`
	Seed        uint64  `json:"seed" yaml:"seed"`

	MonteCarlo MonteCarloConfig `json:"monte_carlo" yaml:"monte_carlo"`

	Workers        int `json:"workers" yaml:"workers"`
	TasksPerWorker int `json:"tasks_per_worker" yaml:"tasks_per_worker"`

	// LogLevel is one of debug, info, warn, error. Empty disables logging.
	LogLevel string `json:"log_level" yaml:"log_level"`
}

// MonteCarloConfig is the file form of kde.MonteCarloConfig. Zero values
// take the kde defaults.
type MonteCarloConfig struct {
	Enabled            bool    `json:"enabled" yaml:"enabled"`
	SuccessProbability float64 `json:"success_probability" yaml:"success_probability"`
	InitialSampleSize  int     `json:"initial_sample_size" yaml:"initial_sample_size"`
	EntryCoef          float64 `json:"entry_coef" yaml:"entry_coef"`
	BreakCoef          float64 `json:"break_coef" yaml:"break_coef"`
}

// DefaultConfig returns the configuration New uses without options.
func DefaultConfig() Config {
	mc := kde.DefaultMonteCarloConfig()
	return Config{
		Kernel:    "gaussian",
		Bandwidth: 1,
		Metric:    "euclidean",
		Tree:      "kd",
		Mode:      "dual",
		RelError:  kde.DefaultConfig().RelError,
		MonteCarlo: MonteCarloConfig{
			SuccessProbability: mc.SuccessProbability,
			InitialSampleSize:  mc.InitialSampleSize,
			EntryCoef:          mc.EntryCoef,
			BreakCoef:          mc.BreakCoef,
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig. A missing file yields the
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Options converts the configuration into estimator options. Name lookups
// fail here; numeric ranges are checked by New.
func (c Config) Options() ([]Option, error) {
	k, err := kernel.New(strings.ToLower(c.Kernel), c.Bandwidth)
	if err != nil {
		return nil, err
	}
	mt, err := metric.ParseType(strings.ToLower(c.Metric))
	if err != nil {
		return nil, err
	}
	m, err := metric.Provider(mt)
	if err != nil {
		return nil, err
	}
	tt, err := ParseTreeType(strings.ToLower(c.Tree))
	if err != nil {
		return nil, err
	}
	mode, err := ParseMode(strings.ToLower(c.Mode))
	if err != nil {
		return nil, err
	}

	mc := kde.DefaultMonteCarloConfig()
	mc.Enabled = c.MonteCarlo.Enabled
	if c.MonteCarlo.SuccessProbability != 0 {
		mc.SuccessProbability = c.MonteCarlo.SuccessProbability
	}
	if c.MonteCarlo.InitialSampleSize != 0 {
		mc.InitialSampleSize = c.MonteCarlo.InitialSampleSize
	}
	if c.MonteCarlo.EntryCoef != 0 {
		mc.EntryCoef = c.MonteCarlo.EntryCoef
	}
	if c.MonteCarlo.BreakCoef != 0 {
		mc.BreakCoef = c.MonteCarlo.BreakCoef
	}

	opts := []Option{
		WithKernel(k),
		WithMetric(m),
		WithTree(tt),
		WithMode(mode),
		WithLeafSize(c.LeafSize),
		WithRelError(c.RelError),
		WithAbsError(c.AbsError),
		WithIncludeSelf(c.IncludeSelf),
		WithNormalize(c.Normalize),
		WithSeed(c.Seed),
		WithMonteCarlo(mc),
		WithWorkers(c.Workers),
		WithTasksPerWorker(c.TasksPerWorker),
	}

	if c.LogLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		opts = append(opts, WithLogLevel(level))
	}
	return opts, nil
}
