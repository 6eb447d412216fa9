package core

import "time"

// Phase identifies where within a generation the optimizer currently is.
type Phase string

const (
	PhaseInitializing Phase = "initializing"
	PhaseEvaluating   Phase = "evaluating"
	PhaseSelecting    Phase = "selecting"
	PhaseBreeding     Phase = "breeding"
	PhaseComplete     Phase = "complete"
)

// ProgressStep is a snapshot of optimizer state published after each unit of
// work. One logical step exists per generation index; the optimizer updates
// it in place until FinishedAt is set, then freezes it. The terminal step
// (Terminal == true) is published exactly once and never updated again.
type ProgressStep struct {
	Generation       int          `json:"generation"`
	Phase            Phase        `json:"phase"`
	Fraction         float64      `json:"fraction"` // Monotone within a generation, in [0,1]
	BestPrompt       string       `json:"best_prompt"`
	BestScore        *float64     `json:"best_score,omitempty"`
	Usage            TokenUsage   `json:"usage"`
	PromptsEvaluated int          `json:"prompts_evaluated"`
	StartedAt        time.Time    `json:"started_at"`
	FinishedAt       *time.Time   `json:"finished_at,omitempty"`
	Terminal         bool         `json:"terminal"`
}

// Finish stamps the step's completion time. A finished step is frozen; the
// optimizer never updates it again.
func (s *ProgressStep) Finish() {
	now := time.Now()
	s.FinishedAt = &now
}

// ProgressSink consumes progress snapshots. Implementations must tolerate
// repeated updates for the same generation index; only the terminal step is
// final. Publish is always called from the optimizer's control goroutine,
// never concurrently.
type ProgressSink interface {
	Publish(step ProgressStep)
}

// SinkFunc adapts a function to the ProgressSink interface.
type SinkFunc func(step ProgressStep)

func (f SinkFunc) Publish(step ProgressStep) {
	f(step)
}

// MultiSink fans a snapshot out to several sinks in order.
type MultiSink []ProgressSink

func (m MultiSink) Publish(step ProgressStep) {
	for _, sink := range m {
		sink.Publish(step)
	}
}
