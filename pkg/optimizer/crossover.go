package optimizer

import (
	"context"

	"github.com/XiaoConstantine/evoprompt-go/pkg/core"
)

// crossover merges two parent prompts into a new, unscored child candidate.
// The seed prompt and improvement goal accompany the parents so the backend
// can preserve required input variables and formatting markers. Parents are
// never modified.
func crossover(ctx context.Context, llm core.LLM, parentA, parentB *core.Candidate, seed, goal string) (*core.Candidate, core.TokenUsage, error) {
	merged, usage, err := llm.MergePrompts(ctx, parentA.Prompt, parentB.Prompt, seed, goal)
	if err != nil {
		return nil, usage, err
	}
	return core.NewCandidate(merged), usage, nil
}
