package core

import "fmt"

// TokenUsage accumulates input and output token counts across LLM calls.
// Addition is commutative and associative, so usage deltas from concurrent
// work can be folded in any order.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Add returns the sum of two usage ledgers.
func (u TokenUsage) Add(other TokenUsage) TokenUsage {
	return TokenUsage{
		InputTokens:  u.InputTokens + other.InputTokens,
		OutputTokens: u.OutputTokens + other.OutputTokens,
	}
}

// Total returns the combined token count.
func (u TokenUsage) Total() int {
	return u.InputTokens + u.OutputTokens
}

func (u TokenUsage) String() string {
	return fmt.Sprintf("in=%d out=%d", u.InputTokens, u.OutputTokens)
}
