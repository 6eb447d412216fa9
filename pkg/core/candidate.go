package core

import "sort"

// Candidate represents a single prompt under optimization. Fitness and
// Reflection are set exactly once, by evaluation; a candidate whose Fitness
// is non-nil is an elite and is never re-scored.
type Candidate struct {
	Prompt     string   `json:"prompt"`
	Fitness    *float64 `json:"fitness,omitempty"`
	Reflection string   `json:"reflection,omitempty"`
}

// NewCandidate creates an unscored candidate from a prompt.
func NewCandidate(prompt string) *Candidate {
	return &Candidate{Prompt: prompt}
}

// Scored reports whether the candidate already has a fitness value.
func (c *Candidate) Scored() bool {
	return c.Fitness != nil
}

// FitnessOrZero returns the fitness, treating an unscored candidate as 0.
// The zero fallback is only meaningful for comparison during selection.
func (c *Candidate) FitnessOrZero() float64 {
	if c.Fitness == nil {
		return 0
	}
	return *c.Fitness
}

// SetFitness records the evaluation result.
func (c *Candidate) SetFitness(fitness float64, reflection string) {
	f := fitness
	c.Fitness = &f
	c.Reflection = reflection
}

// Population is an ordered collection of candidates forming one generation.
type Population []*Candidate

// SortByFitness orders the population best-first. Unscored candidates sink
// to the end.
func (p Population) SortByFitness() {
	sort.SliceStable(p, func(i, j int) bool {
		return p[i].FitnessOrZero() > p[j].FitnessOrZero()
	})
}

// Best returns the top candidate, or nil for an empty population.
func (p Population) Best() *Candidate {
	if len(p) == 0 {
		return nil
	}
	return p[0]
}

// Prompts returns the prompt strings in population order.
func (p Population) Prompts() []string {
	prompts := make([]string, len(p))
	for i, c := range p {
		prompts[i] = c.Prompt
	}
	return prompts
}
