package optimizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/evoprompt-go/pkg/core"
	"github.com/XiaoConstantine/evoprompt-go/pkg/errors"
)

func TestProcessEvaluatorParsesScore(t *testing.T) {
	evaluator := NewProcessEvaluator("sh", "-c", "echo 0.75")
	candidate := core.NewCandidate("prompt under test")

	usage, err := evaluator.Evaluate(context.Background(), candidate, core.NewCandidate("reference"), "goal")
	require.NoError(t, err)

	assert.Equal(t, core.TokenUsage{}, usage)
	require.True(t, candidate.Scored())
	assert.InDelta(t, 0.75, candidate.FitnessOrZero(), 1e-9)
	assert.Empty(t, candidate.Reflection)
}

func TestProcessEvaluatorUsesLastNonEmptyLine(t *testing.T) {
	evaluator := NewProcessEvaluator("sh", "-c", `printf 'loading model\n0.42\n\n'`)
	candidate := core.NewCandidate("prompt under test")

	_, err := evaluator.Evaluate(context.Background(), candidate, core.NewCandidate("reference"), "goal")
	require.NoError(t, err)
	assert.InDelta(t, 0.42, candidate.FitnessOrZero(), 1e-9)
}

func TestProcessEvaluatorLenientFailures(t *testing.T) {
	cases := []struct {
		name   string
		script string
	}{
		{"nonzero exit", "exit 3"},
		{"unparsable output", "echo not-a-number"},
		{"empty output", "true"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			evaluator := NewProcessEvaluator("sh", "-c", tc.script)
			candidate := core.NewCandidate("prompt under test")

			_, err := evaluator.Evaluate(context.Background(), candidate, core.NewCandidate("reference"), "goal")
			require.NoError(t, err, "external evaluator failures must not abort the run")
			require.True(t, candidate.Scored())
			assert.Zero(t, candidate.FitnessOrZero())
		})
	}
}

func TestProcessEvaluatorClampsScore(t *testing.T) {
	evaluator := NewProcessEvaluator("sh", "-c", "echo 3.5")
	candidate := core.NewCandidate("prompt under test")

	_, err := evaluator.Evaluate(context.Background(), candidate, core.NewCandidate("reference"), "goal")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, candidate.FitnessOrZero(), 1e-9)
}

func TestProcessEvaluatorEliteShortcut(t *testing.T) {
	evaluator := NewProcessEvaluator("sh", "-c", "echo 0.9")
	candidate := core.NewCandidate("already judged")
	candidate.SetFitness(0.3, "kept")

	_, err := evaluator.Evaluate(context.Background(), candidate, core.NewCandidate("reference"), "goal")
	require.NoError(t, err)
	assert.InDelta(t, 0.3, candidate.FitnessOrZero(), 1e-9)
}

func TestProcessEvaluatorCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	evaluator := NewProcessEvaluator("sh", "-c", "echo 0.5")
	candidate := core.NewCandidate("prompt under test")

	_, err := evaluator.Evaluate(ctx, candidate, core.NewCandidate("reference"), "goal")
	require.Error(t, err)
	assert.Equal(t, errors.Canceled, errors.CodeOf(err))
	assert.False(t, candidate.Scored())
}

func TestParseFitness(t *testing.T) {
	cases := []struct {
		output string
		want   float64
		ok     bool
	}{
		{"0.5\n", 0.5, true},
		{"header\n0.25", 0.25, true},
		{"1\n\n\n", 1, true},
		{"", 0, false},
		{"score: 0.5", 0, false},
	}

	for _, tc := range cases {
		got, ok := parseFitness(tc.output)
		assert.Equal(t, tc.ok, ok, "output %q", tc.output)
		if tc.ok {
			assert.InDelta(t, tc.want, got, 1e-9, "output %q", tc.output)
		}
	}
}
