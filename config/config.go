package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultEpochs      = 2000
	DefaultTestEvery   = 100
	DefaultLR          = 1e-3
	DefaultHistorySize = 10
	DefaultLineSearch  = 20
	DefaultColloc      = 1000
	DefaultDataPoints  = 200
	DefaultICPoints    = 100
	DefaultBoundary    = 100
	DefaultOrder       = 2
)

type Config struct {
	Mode      string  `yaml:"mode"` // "discovery" or "pinns"
	Epochs    int     `yaml:"epochs"`
	TestEvery int     `yaml:"test_every"`
	DType     string  `yaml:"dtype"` // "float32" or "float64"
	Seed      int64   `yaml:"seed"`

	Solution SolutionConfig  `yaml:"solution"`
	PDE      PDEConfig       `yaml:"pde"`
	Opt      OptimizerConfig `yaml:"optimizer"`
	Domain   DomainConfig    `yaml:"domain"`
	Points   PointsConfig    `yaml:"points"`
}

// SolutionConfig sizes the solution network's hidden layers.
type SolutionConfig struct {
	Hidden []int `yaml:"hidden"`
}

// PDEConfig sizes the PDE network's hidden layers and sets the highest
// derivative order enforced at the periodic boundary.
type PDEConfig struct {
	Hidden []int `yaml:"hidden"`
	Order  int   `yaml:"order"`
}

type OptimizerConfig struct {
	Name        string  `yaml:"name"` // "sgd", "adam" or "lbfgs"
	LR          float64 `yaml:"lr"`
	Momentum    float64 `yaml:"momentum"`
	HistorySize int     `yaml:"history_size"`
	LineSearch  int     `yaml:"line_search"`
}

type DomainConfig struct {
	T0    float64   `yaml:"t0"`
	T1    float64   `yaml:"t1"`
	XLow  []float64 `yaml:"x_low"`
	XHigh []float64 `yaml:"x_high"`
}

type PointsConfig struct {
	Collocation int `yaml:"collocation"`
	Data        int `yaml:"data"`
	Initial     int `yaml:"initial"`
	Boundary    int `yaml:"boundary"`
}

func DefaultConfig() *Config {
	return &Config{
		Mode:      "pinns",
		Epochs:    DefaultEpochs,
		TestEvery: DefaultTestEvery,
		DType:     "float64",
		Seed:      1,
		Solution:  SolutionConfig{Hidden: []int{32, 32}},
		PDE:       PDEConfig{Hidden: []int{16}, Order: DefaultOrder},
		Opt: OptimizerConfig{
			Name:        "adam",
			LR:          DefaultLR,
			HistorySize: DefaultHistorySize,
			LineSearch:  DefaultLineSearch,
		},
		Domain: DomainConfig{
			T0:    0,
			T1:    1,
			XLow:  []float64{-1},
			XHigh: []float64{1},
		},
		Points: PointsConfig{
			Collocation: DefaultColloc,
			Data:        DefaultDataPoints,
			Initial:     DefaultICPoints,
			Boundary:    DefaultBoundary,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch c.Mode {
	case "discovery", "pinns":
	default:
		return fmt.Errorf("config: unknown mode %q", c.Mode)
	}
	switch c.DType {
	case "float32", "float64":
	default:
		return fmt.Errorf("config: unknown dtype %q", c.DType)
	}
	switch c.Opt.Name {
	case "sgd", "adam", "lbfgs":
	default:
		return fmt.Errorf("config: unknown optimizer %q", c.Opt.Name)
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("config: epochs must be positive, got %d", c.Epochs)
	}
	if c.TestEvery <= 0 {
		return fmt.Errorf("config: test_every must be positive, got %d", c.TestEvery)
	}
	if len(c.Domain.XLow) != len(c.Domain.XHigh) {
		return fmt.Errorf("config: %d spatial lower bounds but %d upper bounds",
			len(c.Domain.XLow), len(c.Domain.XHigh))
	}
	return nil
}
