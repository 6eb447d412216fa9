package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/XiaoConstantine/evoprompt-go/pkg/core"
)

const progressBarWidth = 24

// consoleSink renders each generation as a single line that is rewritten in
// place as the generation advances and committed with a newline when it
// finishes.
type consoleSink struct {
	w io.Writer
}

func newConsoleSink(w io.Writer) *consoleSink {
	return &consoleSink{w: w}
}

func (s *consoleSink) Publish(step core.ProgressStep) {
	if step.Terminal {
		score := 0.0
		if step.BestScore != nil {
			score = *step.BestScore
		}
		fmt.Fprintf(s.w, "\rDone. best score %.3f, %d prompts evaluated, %d tokens%s\n",
			score, step.PromptsEvaluated, step.Usage.Total(), clearToEOL)
		return
	}

	line := fmt.Sprintf("gen %d %s %3.0f%%  %s",
		step.Generation, renderBar(step.Fraction), step.Fraction*100, step.Phase)
	if step.BestScore != nil {
		line += fmt.Sprintf("  best %.3f", *step.BestScore)
	}

	fmt.Fprintf(s.w, "\r%s%s", line, clearToEOL)
	if step.FinishedAt != nil {
		fmt.Fprintln(s.w)
	}
}

const clearToEOL = "\x1b[K"

func renderBar(fraction float64) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction * progressBarWidth)
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", progressBarWidth-filled) + "]"
}
