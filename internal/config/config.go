// Package config loads training settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/tinynn/internal/parallel"
)

// Optimizer names.
const (
	OptimizerSGD  = "sgd"
	OptimizerAdam = "adam"
)

// Loss names.
const (
	LossMSE = "mse"
	LossBCE = "bce"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Training holds everything needed to train and run the pong agent.
type Training struct {
	Epochs       int     `yaml:"epochs"`
	BatchSize    int     `yaml:"batch_size"`
	LearningRate float64 `yaml:"learning_rate"`
	Optimizer    string  `yaml:"optimizer"`
	Loss         string  `yaml:"loss"`
	Hidden       int     `yaml:"hidden"`
	Seed         int64   `yaml:"seed"`
	Workers      int     `yaml:"workers"`
	LogEvery     int     `yaml:"log_every"`
	DataPath     string  `yaml:"data"`
	ModelDir     string  `yaml:"model_dir"`
}

// Default returns the settings the pong recipe was tuned with.
func Default() Training {
	return Training{
		Epochs:       2000,
		BatchSize:    0,
		LearningRate: 0.001,
		Optimizer:    OptimizerAdam,
		Loss:         LossBCE,
		Hidden:       16,
		Seed:         42,
		Workers:      runtime.NumCPU(),
		LogEvery:     100,
		DataPath:     "pong_data.csv",
		ModelDir:     ".",
	}
}

// Load reads a YAML document from path on top of Default.
func Load(path string) (Training, error) {
	f, err := os.Open(path)
	if err != nil {
		return Training{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Training{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses YAML from r on top of Default and validates the result.
// Unknown keys are rejected.
func Decode(r io.Reader) (Training, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Training{}, err
	}

	cfg := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Training{}, fmt.Errorf("decode config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Training{}, err
	}
	return cfg, nil
}

// Validate checks ranges and names.
func (t Training) Validate() error {
	switch {
	case t.Epochs <= 0:
		return fmt.Errorf("%w: epochs must be positive, got %d", ErrInvalid, t.Epochs)
	case t.BatchSize < 0:
		return fmt.Errorf("%w: batch_size must not be negative, got %d", ErrInvalid, t.BatchSize)
	case t.LearningRate <= 0:
		return fmt.Errorf("%w: learning_rate must be positive, got %g", ErrInvalid, t.LearningRate)
	case t.Hidden <= 0:
		return fmt.Errorf("%w: hidden must be positive, got %d", ErrInvalid, t.Hidden)
	case t.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalid, t.Workers)
	case t.LogEvery <= 0:
		return fmt.Errorf("%w: log_every must be positive, got %d", ErrInvalid, t.LogEvery)
	}

	switch t.Optimizer {
	case OptimizerSGD, OptimizerAdam:
	default:
		return fmt.Errorf("%w: unknown optimizer %q", ErrInvalid, t.Optimizer)
	}
	switch t.Loss {
	case LossMSE, LossBCE:
	default:
		return fmt.Errorf("%w: unknown loss %q", ErrInvalid, t.Loss)
	}
	return nil
}

// Parallel returns the worker settings for episode evaluation and batch
// inference. A single worker disables parallelism.
func (t Training) Parallel() parallel.Config {
	cfg := parallel.DefaultConfig()
	cfg.Enabled = t.Workers > 1
	cfg.NumWorkers = t.Workers
	return cfg
}

// Encode writes t as YAML.
func (t Training) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return err
	}
	return enc.Close()
}
