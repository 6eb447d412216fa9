package optimizer

import (
	"math/rand"

	"github.com/XiaoConstantine/evoprompt-go/pkg/core"
	"github.com/XiaoConstantine/evoprompt-go/pkg/errors"
)

// selectParent picks a breeding parent by tournament selection: tournamentSize
// distinct members drawn uniformly at random without replacement, highest
// fitness wins. Ties go to the earliest drawn member. An unscored candidate
// compares as fitness 0; the loop only selects from fully scored populations,
// so this fallback matters only for comparison, never as an assigned score.
func selectParent(population core.Population, tournamentSize int, rng *rand.Rand) (*core.Candidate, error) {
	if len(population) < tournamentSize {
		return nil, errors.WithFields(
			errors.New(errors.InvalidConfiguration, "population smaller than tournament"),
			errors.Fields{
				"population_size": len(population),
				"tournament_size": tournamentSize,
			})
	}

	var best *core.Candidate
	for _, idx := range rng.Perm(len(population))[:tournamentSize] {
		candidate := population[idx]
		if best == nil || candidate.FitnessOrZero() > best.FitnessOrZero() {
			best = candidate
		}
	}
	return best, nil
}
