package optimizer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/evoprompt-go/pkg/core"
	"github.com/XiaoConstantine/evoprompt-go/pkg/errors"
)

func scoredCandidate(prompt string, fitness float64) *core.Candidate {
	c := core.NewCandidate(prompt)
	c.SetFitness(fitness, "")
	return c
}

func TestSelectParentPicksTournamentWinner(t *testing.T) {
	population := core.Population{
		scoredCandidate("a", 0.1),
		scoredCandidate("b", 0.9),
		scoredCandidate("c", 0.5),
	}

	// A full-population tournament always yields the global maximum,
	// whatever permutation the source produces.
	for seed := int64(0); seed < 10; seed++ {
		winner, err := selectParent(population, 3, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		assert.Equal(t, "b", winner.Prompt)
	}
}

func TestSelectParentTreatsUnscoredAsZero(t *testing.T) {
	population := core.Population{
		core.NewCandidate("unscored"),
		scoredCandidate("scored", 0.2),
	}

	winner, err := selectParent(population, 2, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, "scored", winner.Prompt)
}

func TestSelectParentRejectsSmallPopulation(t *testing.T) {
	population := core.Population{scoredCandidate("only", 0.5)}

	_, err := selectParent(population, 3, rand.New(rand.NewSource(1)))
	require.Error(t, err)
	assert.Equal(t, errors.InvalidConfiguration, errors.CodeOf(err))
}
