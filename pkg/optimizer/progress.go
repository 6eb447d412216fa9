package optimizer

import (
	"time"

	"github.com/XiaoConstantine/evoprompt-go/pkg/core"
)

// progressTracker owns the mutable progress record for each generation and
// hands immutable snapshots to the sinks. It runs entirely on the control
// goroutine.
type progressTracker struct {
	sink  core.ProgressSink
	steps map[int]*core.ProgressStep
}

func newProgressTracker(sink core.ProgressSink) *progressTracker {
	return &progressTracker{
		sink:  sink,
		steps: make(map[int]*core.ProgressStep),
	}
}

// update looks up the step for a generation, creating it on first touch,
// applies mutate, and publishes a snapshot. Finished and terminal steps are
// frozen and silently skipped.
func (t *progressTracker) update(generation int, mutate func(*core.ProgressStep)) {
	step, ok := t.steps[generation]
	if !ok {
		step = &core.ProgressStep{
			Generation: generation,
			StartedAt:  time.Now(),
		}
		t.steps[generation] = step
	}
	if step.FinishedAt != nil || step.Terminal {
		return
	}

	mutate(step)

	if t.sink != nil {
		t.sink.Publish(*step)
	}
}

// terminal publishes the final step of a run, exactly once.
func (t *progressTracker) terminal(generation int, best *core.Candidate, usage core.TokenUsage, evaluated int) {
	t.update(generation, func(s *core.ProgressStep) {
		s.Phase = core.PhaseComplete
		s.Fraction = 1
		s.BestPrompt = best.Prompt
		s.BestScore = best.Fitness
		s.Usage = usage
		s.PromptsEvaluated = evaluated
		s.Terminal = true
		s.Finish()
	})
}
