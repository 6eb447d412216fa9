// Package evoprompt evolves natural-language prompts with a genetic
// algorithm whose fitness function and variation operators are LLM calls.
//
// A run starts from a seed prompt and an improvement goal. Generation 0 is
// the seed plus model-generated variants; every candidate is scored by
// averaging several independent LLM judgments against the seed, or by an
// external evaluator process. Each following generation keeps the best
// candidates as elites and refills the population with children bred by
// asking the model to merge two tournament-selected parents. The loop stops
// when the best score reaches a threshold or the generation budget is spent.
//
// Key packages:
//
//   - pkg/core: candidates, populations, token accounting, progress steps
//     and the LLM port the optimizer consumes.
//
//   - pkg/optimizer: the generational loop with concurrent fan-out of
//     evaluation and breeding calls, plus the LLM and external-process
//     fitness evaluators.
//
//   - pkg/llms: Anthropic and OpenAI adapters with structured JSON output
//     and optional client-side rate limiting.
//
//   - pkg/config: YAML configuration with environment overrides and
//     cross-field validation.
//
//   - pkg/history: a SQLite archive of past runs.
//
// The evoprompt command under cmd/evoprompt ties these together into a CLI.
package evoprompt
