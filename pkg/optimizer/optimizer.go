// Package optimizer implements genetic optimization of natural-language
// prompts. The fitness function and the variation operators are LLM calls:
// candidates are scored by self-consistent LLM judgment and bred by asking
// the model to merge two parent prompts.
//
// The loop runs on a single control goroutine that exclusively owns the
// population, the token ledger and the best-candidate pointer. Only the
// I/O-bound backend calls fan out; their results are folded back in
// completion order so progress can be reported as soon as possible.
package optimizer

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/XiaoConstantine/evoprompt-go/pkg/config"
	"github.com/XiaoConstantine/evoprompt-go/pkg/core"
	"github.com/XiaoConstantine/evoprompt-go/pkg/errors"
	"github.com/XiaoConstantine/evoprompt-go/pkg/logging"
)

// Fraction milestones within a generation. Generation 0 spends its first
// quarter on population initialization; later generations spend their first
// quarter evaluating and the rest breeding. Each generation's fraction is
// monotone and reaches 1.
const (
	startFraction       = 0.125
	initializedFraction = 0.25
	evalPhaseShare      = 0.25
)

// Optimizer drives the generational loop.
type Optimizer struct {
	llm       core.LLM
	evaluator FitnessEvaluator
	cfg       config.OptimizerConfig
	sinks     core.MultiSink
	rng       *rand.Rand
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithEvaluator substitutes the fitness evaluator, e.g. a ProcessEvaluator.
func WithEvaluator(evaluator FitnessEvaluator) Option {
	return func(o *Optimizer) {
		o.evaluator = evaluator
	}
}

// WithSink registers an additional progress sink.
func WithSink(sink core.ProgressSink) Option {
	return func(o *Optimizer) {
		o.sinks = append(o.sinks, sink)
	}
}

// WithRand fixes the random source used for tournament selection.
func WithRand(rng *rand.Rand) Option {
	return func(o *Optimizer) {
		o.rng = rng
	}
}

// New creates an optimizer. Invalid parameter combinations are rejected here,
// before any backend call is made.
func New(llm core.LLM, cfg config.OptimizerConfig, opts ...Option) (*Optimizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &Optimizer{
		llm: llm,
		cfg: cfg,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.evaluator == nil {
		o.evaluator = NewLLMEvaluator(llm, cfg.NumSamples)
	}
	return o, nil
}

// Result summarizes a completed run.
type Result struct {
	BestPrompt       string
	BestScore        float64
	Generations      int
	PromptsEvaluated int
	Usage            core.TokenUsage
}

// taskResult carries one completed fan-out unit back to the control
// goroutine, tagged with its submission index.
type taskResult[T any] struct {
	index int
	value T
	usage core.TokenUsage
	err   error
}

// evalOutcome marks whether an evaluation actually scored the candidate or
// hit the elite shortcut.
type evalOutcome struct {
	scored bool
}

// Run executes the optimization loop until the iteration budget is exhausted,
// the best fitness reaches the threshold, the backend fails, or ctx is
// canceled. Cancellation is honored between any two progress emissions;
// results of in-flight calls that complete afterwards are discarded.
func (o *Optimizer) Run(ctx context.Context, seed, goal string) (*Result, error) {
	logger := logging.GetLogger()
	ctx = logging.WithModelID(ctx, o.llm.ModelID())

	var usage core.TokenUsage
	evaluated := 0

	if strings.TrimSpace(goal) == "" {
		inferred, du, err := o.llm.InferTask(ctx, seed)
		usage = usage.Add(du)
		if err != nil {
			return nil, err
		}
		goal = inferred
		logger.Info(ctx, "inferred task description: %s", inferred)
	}

	best := core.NewCandidate(seed)
	reference := best
	tracker := newProgressTracker(o.sinks)

	tracker.update(0, func(s *core.ProgressStep) {
		s.Phase = core.PhaseInitializing
		s.Fraction = startFraction
		s.BestPrompt = best.Prompt
		s.Usage = usage
	})

	logger.Info(ctx, "initializing population: size=%d", o.cfg.PopulationSize)
	population, du, err := initPopulation(ctx, o.llm, seed, goal, o.cfg.PopulationSize)
	usage = usage.Add(du)
	if err != nil {
		return nil, err
	}

	tracker.update(0, func(s *core.ProgressStep) {
		s.Fraction = initializedFraction
		s.Usage = usage
	})

	// Generation 0: score the initial population. The running best is
	// re-bound by prompt equality so it picks up the seed's fitness once
	// the seed's copy in the population has been scored.
	fold := func(generation int, cand *core.Candidate, completed, total int, base float64) {
		if cand.Prompt == best.Prompt {
			best = cand
			reference = cand
		}
		tracker.update(generation, func(s *core.ProgressStep) {
			s.Phase = core.PhaseEvaluating
			s.Fraction = base + (1-base)*float64(completed)/float64(total)
			s.BestPrompt = best.Prompt
			s.BestScore = best.Fitness
			s.Usage = usage
			s.PromptsEvaluated = evaluated
			if generation == 0 && completed == total {
				s.Finish()
			}
		})
	}

	results := o.fanOutEvaluate(ctx, population, reference, goal)
	completed := 0
	for res := range results {
		if err := errors.CheckContext(ctx, "optimization"); err != nil {
			return nil, err
		}
		usage = usage.Add(res.usage)
		if res.err != nil {
			return nil, res.err
		}
		completed++
		if res.value.scored {
			evaluated++
		}
		fold(0, population[res.index], completed, len(population), initializedFraction)
	}

	// Generation 0 has no breeding, but its scored population still decides
	// the starting best so a zero-iteration run reports the top scorer
	// rather than the seed.
	population.SortByFitness()
	if gen0Best := population.Best(); !best.Scored() || gen0Best.FitnessOrZero() > best.FitnessOrZero() {
		best = gen0Best
		logger.Info(ctx, "new best candidate: score=%.3f", best.FitnessOrZero())
	}

	generations := 0

	for gen := 1; gen <= o.cfg.NumIterations; gen++ {
		generations = gen
		logger.Info(ctx, "generation %d/%d", gen, o.cfg.NumIterations)

		tracker.update(gen, func(s *core.ProgressStep) {
			s.Phase = core.PhaseEvaluating
			s.BestPrompt = best.Prompt
			s.BestScore = best.Fitness
			s.Usage = usage
			s.PromptsEvaluated = evaluated
		})

		// Evaluating: candidates carried over from the previous generation
		// hit the elite shortcut and complete at zero cost.
		results := o.fanOutEvaluate(ctx, population, reference, goal)
		completed := 0
		for res := range results {
			if err := errors.CheckContext(ctx, "optimization"); err != nil {
				return nil, err
			}
			usage = usage.Add(res.usage)
			if res.err != nil {
				return nil, res.err
			}
			completed++
			if res.value.scored {
				evaluated++
			}
			frac := evalPhaseShare * float64(completed) / float64(len(population))
			tracker.update(gen, func(s *core.ProgressStep) {
				s.Fraction = frac
				s.Usage = usage
				s.PromptsEvaluated = evaluated
			})
		}

		// Selecting: sort best-first, cut elites, update the running best.
		population.SortByFitness()
		generationBest := population.Best()
		if !best.Scored() || generationBest.FitnessOrZero() > best.FitnessOrZero() {
			best = generationBest
			logger.Info(ctx, "new best candidate: score=%.3f", best.FitnessOrZero())
		}

		tracker.update(gen, func(s *core.ProgressStep) {
			s.Phase = core.PhaseSelecting
			s.Fraction = evalPhaseShare
			s.BestPrompt = best.Prompt
			s.BestScore = best.Fitness
		})

		if best.Scored() && best.FitnessOrZero() >= o.cfg.Threshold {
			logger.Info(ctx, "threshold reached at generation %d: score=%.3f", gen, best.FitnessOrZero())
			tracker.update(gen, func(s *core.ProgressStep) {
				s.Fraction = 1
				s.Finish()
			})
			break
		}

		// Breeding: refill the population with tournament-selected
		// crossover children alongside the carried-over elites. Parents are
		// drawn on the control goroutine; only the merge calls fan out.
		numChildren := o.cfg.PopulationSize - o.cfg.NumElites
		type parents struct{ a, b *core.Candidate }
		mates := make([]parents, numChildren)
		for i := range mates {
			a, err := selectParent(population, o.cfg.TournamentSize, o.rng)
			if err != nil {
				return nil, err
			}
			b, err := selectParent(population, o.cfg.TournamentSize, o.rng)
			if err != nil {
				return nil, err
			}
			mates[i] = parents{a: a, b: b}
		}

		children := make([]*core.Candidate, numChildren)
		breedResults := fanOut(ctx, o.cfg.Concurrency, numChildren, func(ctx context.Context, i int) (*core.Candidate, core.TokenUsage, error) {
			return crossover(ctx, o.llm, mates[i].a, mates[i].b, seed, goal)
		})
		completed = 0
		for res := range breedResults {
			if err := errors.CheckContext(ctx, "optimization"); err != nil {
				return nil, err
			}
			usage = usage.Add(res.usage)
			if res.err != nil {
				return nil, res.err
			}
			children[res.index] = res.value
			completed++
			frac := evalPhaseShare + (1-evalPhaseShare)*float64(completed)/float64(numChildren)
			final := completed == numChildren
			tracker.update(gen, func(s *core.ProgressStep) {
				s.Phase = core.PhaseBreeding
				s.Fraction = frac
				s.Usage = usage
				if final {
					s.Finish()
				}
			})
		}

		next := make(core.Population, 0, o.cfg.PopulationSize)
		next = append(next, population[:o.cfg.NumElites]...)
		next = append(next, children...)
		population = next

		logger.TokenTotals(ctx, usage.InputTokens, usage.OutputTokens)
	}

	tracker.terminal(generations+1, best, usage, evaluated)
	logger.TokenTotals(ctx, usage.InputTokens, usage.OutputTokens)
	logger.Info(ctx, "optimization complete: generations=%d best_score=%.3f tokens=%d",
		generations, best.FitnessOrZero(), usage.Total())

	return &Result{
		BestPrompt:       best.Prompt,
		BestScore:        best.FitnessOrZero(),
		Generations:      generations,
		PromptsEvaluated: evaluated,
		Usage:            usage,
	}, nil
}

// fanOutEvaluate submits one evaluation task per candidate and returns a
// channel of results in completion order.
func (o *Optimizer) fanOutEvaluate(ctx context.Context, population core.Population, reference *core.Candidate, goal string) <-chan taskResult[evalOutcome] {
	return fanOut(ctx, o.cfg.Concurrency, len(population), func(ctx context.Context, i int) (evalOutcome, core.TokenUsage, error) {
		candidate := population[i]
		fresh := !candidate.Scored()
		usage, err := o.evaluator.Evaluate(ctx, candidate, reference, goal)
		return evalOutcome{scored: fresh && err == nil}, usage, err
	})
}

// fanOut runs fn for each index in [0, n) on a goroutine pool, streaming
// results as they complete. The result channel is buffered to n so workers
// never block even when the consumer stops early; it is closed once all
// workers finish.
func fanOut[T any](ctx context.Context, concurrency, n int, fn func(context.Context, int) (T, core.TokenUsage, error)) <-chan taskResult[T] {
	results := make(chan taskResult[T], n)

	p := pool.New()
	if concurrency > 0 {
		p = p.WithMaxGoroutines(concurrency)
	}
	for i := 0; i < n; i++ {
		i := i
		p.Go(func() {
			value, usage, err := fn(ctx, i)
			results <- taskResult[T]{index: i, value: value, usage: usage, err: err}
		})
	}

	go func() {
		p.Wait()
		close(results)
	}()

	return results
}
