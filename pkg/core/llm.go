package core

import "context"

// Judgment is one self-consistency scoring sample for a candidate prompt.
// Score is on the 1-10 scale used by the evaluation rubric.
type Judgment struct {
	Justification string  `json:"evaluation"`
	Score         float64 `json:"score"`
}

// LLM is the language model capability the optimizer consumes. Adapters are
// responsible for structured output, transport, retries and rate limiting;
// the optimizer only sequences calls and folds token usage.
type LLM interface {
	// GenerateVariants produces count alternative phrasings of the seed
	// prompt, guided by the improvement goal.
	GenerateVariants(ctx context.Context, seed, goal string, count int) ([]string, TokenUsage, error)

	// ScoreCandidate judges one candidate prompt for the improvement goal.
	// Called once per self-consistency sample. The reference is the seed
	// prompt the run started from; adapters may use it as an anchor.
	ScoreCandidate(ctx context.Context, prompt, reference, goal string) (Judgment, TokenUsage, error)

	// MergePrompts combines two parent prompts into a single child prompt,
	// preserving input-variable placeholders and formatting markers.
	MergePrompts(ctx context.Context, promptA, promptB, seed, goal string) (string, TokenUsage, error)

	// InferTask derives a task description from a prompt. Used when the
	// caller supplies no improvement goal.
	InferTask(ctx context.Context, prompt string) (string, TokenUsage, error)

	// ProviderName identifies the backing provider (e.g. "anthropic").
	ProviderName() string

	// ModelID identifies the concrete model.
	ModelID() string
}
