package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/evoprompt-go/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5, cfg.Optimizer.PopulationSize)
	assert.Equal(t, 2, cfg.Optimizer.NumElites)
	assert.Equal(t, 3, cfg.Optimizer.TournamentSize)
	assert.Equal(t, 1.0, cfg.Optimizer.Threshold)
}

func TestValidateCrossFieldRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "elites not below population",
			mutate: func(c *Config) { c.Optimizer.NumElites = 5 },
			errMsg: "num_elites must be smaller than population_size",
		},
		{
			name:   "tournament larger than population",
			mutate: func(c *Config) { c.Optimizer.TournamentSize = 9 },
			errMsg: "tournament_size cannot exceed population_size",
		},
		{
			name:   "threshold above one",
			mutate: func(c *Config) { c.Optimizer.Threshold = 1.5 },
			errMsg: "Threshold",
		},
		{
			name:   "zero samples",
			mutate: func(c *Config) { c.Optimizer.NumSamples = 0 },
			errMsg: "NumSamples",
		},
		{
			name:   "unknown provider",
			mutate: func(c *Config) { c.Provider.Name = "bedrock" },
			errMsg: "Name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, errors.InvalidConfiguration, errors.CodeOf(err))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
optimizer:
  population_size: 8
  num_iterations: 3
  num_elites: 1
provider:
  name: openai
  model: gpt-4o
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Optimizer.PopulationSize)
	assert.Equal(t, 3, cfg.Optimizer.NumIterations)
	assert.Equal(t, "openai", cfg.Provider.Name)
	assert.Equal(t, "gpt-4o", cfg.Provider.Model)
	// Untouched fields keep their defaults.
	assert.Equal(t, 5, cfg.Optimizer.NumSamples)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("EVOPROMPT_POPULATION_SIZE", "7")
	t.Setenv("EVOPROMPT_PROVIDER_MODEL", "claude-haiku-4-5")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Optimizer.PopulationSize)
	assert.Equal(t, "claude-haiku-4-5", cfg.Provider.Model)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
	assert.Equal(t, errors.InvalidConfiguration, errors.CodeOf(err))
}
