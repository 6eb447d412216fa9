// Package config defines the configuration surface of the optimizer and its
// LLM providers, with YAML file loading and environment overrides.
package config

import (
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/XiaoConstantine/evoprompt-go/pkg/errors"
)

// Config is the root configuration.
type Config struct {
	Optimizer OptimizerConfig `yaml:"optimizer" envPrefix:"EVOPROMPT_"`
	Provider  ProviderConfig  `yaml:"provider" envPrefix:"EVOPROMPT_PROVIDER_"`
	Evaluator EvaluatorConfig `yaml:"evaluator" envPrefix:"EVOPROMPT_EVALUATOR_"`
	LogLevel  string          `yaml:"log_level" env:"EVOPROMPT_LOG_LEVEL" validate:"omitempty,oneof=DEBUG INFO WARN ERROR"`
}

// OptimizerConfig holds the genetic-algorithm parameters.
type OptimizerConfig struct {
	// PopulationSize is the number of candidates generated per generation.
	PopulationSize int `yaml:"population_size" env:"POPULATION_SIZE" validate:"min=2"`

	// NumIterations is the maximum number of generations after generation 0.
	NumIterations int `yaml:"num_iterations" env:"NUM_ITERATIONS" validate:"min=0"`

	// NumElites is the number of top candidates carried over unevaluated.
	NumElites int `yaml:"num_elites" env:"NUM_ELITES" validate:"min=0"`

	// TournamentSize is the selection tournament size.
	TournamentSize int `yaml:"tournament_size" env:"TOURNAMENT_SIZE" validate:"min=2"`

	// Threshold is the best-fitness bar for early termination.
	Threshold float64 `yaml:"threshold" env:"THRESHOLD" validate:"min=0,max=1"`

	// NumSamples is the self-consistency sample count per evaluation.
	NumSamples int `yaml:"num_samples" env:"NUM_SAMPLES" validate:"min=1"`

	// Concurrency bounds the fan-out width for evaluation and breeding.
	// Zero means unbounded.
	Concurrency int `yaml:"concurrency" env:"CONCURRENCY" validate:"min=0"`
}

// ProviderConfig identifies and configures the LLM backend.
type ProviderConfig struct {
	Name        string  `yaml:"name" env:"NAME" validate:"required,oneof=anthropic openai"`
	Model       string  `yaml:"model" env:"MODEL"`
	APIKey      string  `yaml:"api_key" env:"API_KEY"`
	BaseURL     string  `yaml:"base_url" env:"BASE_URL" validate:"omitempty,url"`
	MaxTokens   int     `yaml:"max_tokens" env:"MAX_TOKENS" validate:"min=1"`
	Temperature float64 `yaml:"temperature" env:"TEMPERATURE" validate:"min=0,max=2"`

	// RequestsPerMinute enables client-side rate limiting when positive.
	RequestsPerMinute int `yaml:"requests_per_minute" env:"REQUESTS_PER_MINUTE" validate:"min=0"`
}

// EvaluatorConfig selects the fitness evaluator. When Command is empty the
// LLM-backed evaluator is used; otherwise the command is run as an external
// process for each candidate.
type EvaluatorConfig struct {
	Command string   `yaml:"command" env:"COMMAND"`
	Args    []string `yaml:"args" env:"ARGS" envSeparator:" "`
}

// Load reads a YAML config file, applies environment overrides and validates
// the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WithFields(
				errors.Wrap(err, errors.InvalidConfiguration, "failed to read config file"),
				errors.Fields{"path": path})
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.WithFields(
				errors.Wrap(err, errors.InvalidConfiguration, "failed to parse config file"),
				errors.Fields{"path": path})
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, errors.InvalidConfiguration, "failed to apply environment overrides")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
