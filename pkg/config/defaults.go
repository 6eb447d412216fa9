package config

// Default returns a configuration with the stock genetic-algorithm
// parameters: 5 candidates per generation, 5 generations, 2 elites,
// tournament size 3, 5 self-consistency samples.
func Default() *Config {
	return &Config{
		Optimizer: OptimizerConfig{
			PopulationSize: 5,
			NumIterations:  5,
			NumElites:      2,
			TournamentSize: 3,
			Threshold:      1.0,
			NumSamples:     5,
			Concurrency:    0,
		},
		Provider: ProviderConfig{
			Name:        "anthropic",
			Model:       "claude-sonnet-4-5",
			MaxTokens:   2048,
			Temperature: 1.0,
		},
		LogLevel: "INFO",
	}
}
