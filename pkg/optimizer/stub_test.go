package optimizer

import (
	"context"
	"sync"

	"github.com/XiaoConstantine/evoprompt-go/pkg/core"
)

// stubLLM is a deterministic in-memory backend for loop tests. Per-call
// token usage is fixed at one input and one output token so ledger
// accumulation is easy to assert.
type stubLLM struct {
	mu sync.Mutex

	variants []string
	task     string

	// scoreFn maps a prompt to a 1-10 judgment score.
	scoreFn func(prompt string) float64
	// mergeFn combines two parent prompts; defaults to concatenation.
	mergeFn func(a, b string) string

	variantsErr error
	scoreErr    error
	mergeErr    error

	variantCalls int
	scoreCalls   int
	mergeCalls   int
	taskCalls    int

	// goals records the goal argument of every scoring call.
	goals []string

	// onScore, when set, runs at the start of every scoring call.
	onScore func()
}

var stubUsage = core.TokenUsage{InputTokens: 1, OutputTokens: 1}

func (s *stubLLM) GenerateVariants(ctx context.Context, seed, goal string, count int) ([]string, core.TokenUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.variantCalls++
	if s.variantsErr != nil {
		return nil, core.TokenUsage{}, s.variantsErr
	}
	return s.variants, stubUsage, nil
}

func (s *stubLLM) ScoreCandidate(ctx context.Context, prompt, reference, goal string) (core.Judgment, core.TokenUsage, error) {
	s.mu.Lock()
	s.scoreCalls++
	s.goals = append(s.goals, goal)
	onScore := s.onScore
	s.mu.Unlock()

	if onScore != nil {
		onScore()
	}
	if s.scoreErr != nil {
		return core.Judgment{}, core.TokenUsage{}, s.scoreErr
	}
	return core.Judgment{
		Justification: "judged " + prompt,
		Score:         s.scoreFn(prompt),
	}, stubUsage, nil
}

func (s *stubLLM) MergePrompts(ctx context.Context, promptA, promptB, seed, goal string) (string, core.TokenUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mergeCalls++
	if s.mergeErr != nil {
		return "", core.TokenUsage{}, s.mergeErr
	}
	if s.mergeFn != nil {
		return s.mergeFn(promptA, promptB), stubUsage, nil
	}
	return promptA + " " + promptB, stubUsage, nil
}

func (s *stubLLM) InferTask(ctx context.Context, prompt string) (string, core.TokenUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskCalls++
	return s.task, stubUsage, nil
}

func (s *stubLLM) ProviderName() string { return "stub" }
func (s *stubLLM) ModelID() string      { return "stub-model" }
