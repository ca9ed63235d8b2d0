package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultModel        = "sine-decay"
	DefaultSolver       = "rk4"
	DefaultT0           = 0.0
	DefaultT1           = 1.0
	DefaultGridPoints   = 100
	DefaultEpochs       = 200
	DefaultLearningRate = 0.05
)

type Config struct {
	Model      string      `yaml:"model"`
	Solver     string      `yaml:"solver"`
	T0         float64     `yaml:"t0"`
	T1         float64     `yaml:"t1"`
	GridPoints int         `yaml:"grid_points"`
	InitState  []float64   `yaml:"init_state,omitempty"`
	StateShape []int       `yaml:"state_shape,omitempty"`
	Seed       int64       `yaml:"seed"`
	Compile    bool        `yaml:"compile"`
	Train      TrainConfig `yaml:"train"`
}

type TrainConfig struct {
	Optimizer    string  `yaml:"optimizer"`
	LearningRate float64 `yaml:"learning_rate"`
	Momentum     float64 `yaml:"momentum"`
	Epochs       int     `yaml:"epochs"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      DefaultModel,
		Solver:     DefaultSolver,
		T0:         DefaultT0,
		T1:         DefaultT1,
		GridPoints: DefaultGridPoints,
		Train: TrainConfig{
			Optimizer:    "adam",
			LearningRate: DefaultLearningRate,
			Epochs:       DefaultEpochs,
		},
	}
}

// Load reads a yaml file over the defaults, so partial files only
// override what they mention.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
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
