package optimizer

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/XiaoConstantine/evoprompt-go/pkg/core"
	"github.com/XiaoConstantine/evoprompt-go/pkg/errors"
)

// FitnessEvaluator scores one candidate against a reference, writing fitness
// and reflection into the candidate. Implementations must honor the elite
// shortcut: a candidate that is already scored is returned unchanged with
// zero token cost.
type FitnessEvaluator interface {
	Evaluate(ctx context.Context, candidate, reference *core.Candidate, goal string) (core.TokenUsage, error)
}

// LLMEvaluator judges candidates with the language model itself, using
// self-consistency: numSamples independent judgments whose scores are
// averaged. The first sample by submission order supplies the reflection,
// regardless of completion order.
type LLMEvaluator struct {
	llm        core.LLM
	numSamples int
}

// NewLLMEvaluator creates an evaluator drawing numSamples judgments per
// candidate.
func NewLLMEvaluator(llm core.LLM, numSamples int) *LLMEvaluator {
	return &LLMEvaluator{llm: llm, numSamples: numSamples}
}

func (e *LLMEvaluator) Evaluate(ctx context.Context, candidate, reference *core.Candidate, goal string) (core.TokenUsage, error) {
	// Elite, already evaluated in a previous generation.
	if candidate.Scored() {
		return core.TokenUsage{}, nil
	}

	judgments := make([]core.Judgment, e.numSamples)

	var (
		mu       sync.Mutex
		usage    core.TokenUsage
		firstErr error
	)

	p := pool.New()
	for i := 0; i < e.numSamples; i++ {
		i := i
		p.Go(func() {
			judgment, du, err := e.llm.ScoreCandidate(ctx, candidate.Prompt, reference.Prompt, goal)

			mu.Lock()
			defer mu.Unlock()
			usage = usage.Add(du)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			judgments[i] = judgment
		})
	}
	p.Wait()

	if firstErr != nil {
		return usage, errors.WithFields(firstErr, errors.Fields{"samples": e.numSamples})
	}

	total := 0.0
	for _, judgment := range judgments {
		total += judgment.Score
	}
	fitness := total / float64(e.numSamples) / 10

	// The first judgment is treated as the canonical explanation. This is a
	// deliberate tie-break inherited from the evaluation contract, not the
	// best-scoring sample.
	candidate.SetFitness(fitness, judgments[0].Justification)

	return usage, nil
}
