package optimizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/evoprompt-go/pkg/errors"
)

func TestInitPopulationKeepsSeedFirst(t *testing.T) {
	stub := &stubLLM{
		variants: []string{"variant one", "variant two", "variant three"},
		scoreFn:  func(string) float64 { return 5 },
	}

	population, usage, err := initPopulation(context.Background(), stub, "seed prompt", "goal", 3)
	require.NoError(t, err)

	require.Len(t, population, 4)
	assert.Equal(t, "seed prompt", population[0].Prompt)
	assert.Equal(t, []string{"seed prompt", "variant one", "variant two", "variant three"}, population.Prompts())
	for _, candidate := range population {
		assert.False(t, candidate.Scored())
	}
	assert.Equal(t, stubUsage, usage)
}

func TestInitPopulationRejectsEmptyVariants(t *testing.T) {
	stub := &stubLLM{scoreFn: func(string) float64 { return 5 }}

	_, _, err := initPopulation(context.Background(), stub, "seed prompt", "goal", 3)
	require.Error(t, err)
	assert.Equal(t, errors.InvalidResponse, errors.CodeOf(err))
}

func TestCrossoverProducesUnscoredChild(t *testing.T) {
	stub := &stubLLM{
		scoreFn: func(string) float64 { return 5 },
		mergeFn: func(a, b string) string { return "merged: " + a + " | " + b },
	}

	parentA := scoredCandidate("keep {input} intact", 0.8)
	parentB := scoredCandidate("summarize {input} briefly", 0.6)

	child, usage, err := crossover(context.Background(), stub, parentA, parentB, "seed", "goal")
	require.NoError(t, err)

	assert.Equal(t, "merged: keep {input} intact | summarize {input} briefly", child.Prompt)
	assert.False(t, child.Scored())
	assert.Equal(t, stubUsage, usage)
	assert.Equal(t, 1, stub.mergeCalls)
}
