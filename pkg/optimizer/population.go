package optimizer

import (
	"context"

	"github.com/XiaoConstantine/evoprompt-go/pkg/core"
	"github.com/XiaoConstantine/evoprompt-go/pkg/errors"
)

// initPopulation builds the generation-0 population: the unmodified seed
// prompt followed by size LLM-generated variants. Keeping the seed in the
// population guarantees the original prompt always remains eligible for
// survival, so the result holds size+1 candidates.
func initPopulation(ctx context.Context, llm core.LLM, seed, goal string, size int) (core.Population, core.TokenUsage, error) {
	variants, usage, err := llm.GenerateVariants(ctx, seed, goal, size)
	if err != nil {
		return nil, usage, err
	}
	if len(variants) == 0 {
		return nil, usage, errors.New(errors.InvalidResponse, "backend returned no usable prompt variants")
	}

	population := make(core.Population, 0, len(variants)+1)
	population = append(population, core.NewCandidate(seed))
	for _, variant := range variants {
		population = append(population, core.NewCandidate(variant))
	}
	return population, usage, nil
}
