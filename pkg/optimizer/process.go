package optimizer

import (
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/XiaoConstantine/evoprompt-go/pkg/core"
	"github.com/XiaoConstantine/evoprompt-go/pkg/errors"
	"github.com/XiaoConstantine/evoprompt-go/pkg/logging"
)

// ProcessEvaluator scores candidates by running an external executable with
// the candidate prompt on standard input. The last non-empty line of standard
// output is parsed as the fitness value.
//
// The contract is deliberately lenient: a nonzero exit code or unparsable
// output yields fitness 0.0 rather than aborting the run, since this path
// bypasses the LLM entirely. Only context cancellation is fatal.
type ProcessEvaluator struct {
	command string
	args    []string
}

// NewProcessEvaluator creates an evaluator invoking command with args for
// each candidate.
func NewProcessEvaluator(command string, args ...string) *ProcessEvaluator {
	return &ProcessEvaluator{command: command, args: args}
}

func (e *ProcessEvaluator) Evaluate(ctx context.Context, candidate, reference *core.Candidate, goal string) (core.TokenUsage, error) {
	if candidate.Scored() {
		return core.TokenUsage{}, nil
	}

	logger := logging.GetLogger()

	cmd := exec.CommandContext(ctx, e.command, e.args...)
	cmd.Stdin = strings.NewReader(candidate.Prompt)

	output, err := cmd.Output()
	if ctxErr := errors.CheckContext(ctx, "external evaluation"); ctxErr != nil {
		return core.TokenUsage{}, ctxErr
	}
	if err != nil {
		logger.Warn(ctx, "external evaluator failed, treating fitness as 0: %v", err)
		candidate.SetFitness(0, "")
		return core.TokenUsage{}, nil
	}

	fitness, ok := parseFitness(string(output))
	if !ok {
		logger.Warn(ctx, "external evaluator produced no parsable score, treating fitness as 0")
		fitness = 0
	}
	candidate.SetFitness(clamp01(fitness), "")

	return core.TokenUsage{}, nil
}

// parseFitness extracts the last non-empty line of output as a float.
func parseFitness(output string) (float64, bool) {
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		value, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return 0, false
		}
		return value, true
	}
	return 0, false
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
