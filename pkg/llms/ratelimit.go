package llms

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/XiaoConstantine/evoprompt-go/pkg/core"
	errs "github.com/XiaoConstantine/evoprompt-go/pkg/errors"
)

// rateLimitedLLM decorates an LLM with client-side rate limiting. All four
// operations share a single limiter.
type rateLimitedLLM struct {
	inner   core.LLM
	limiter *rate.Limiter
}

// WithRateLimit wraps an LLM so calls are spaced to at most requestsPerMinute.
func WithRateLimit(inner core.LLM, requestsPerMinute int) core.LLM {
	interval := time.Minute / time.Duration(requestsPerMinute)
	return &rateLimitedLLM{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

func (r *rateLimitedLLM) wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return errs.Wrap(err, errs.Canceled, "rate limiter wait interrupted")
	}
	return nil
}

func (r *rateLimitedLLM) GenerateVariants(ctx context.Context, seed, goal string, count int) ([]string, core.TokenUsage, error) {
	if err := r.wait(ctx); err != nil {
		return nil, core.TokenUsage{}, err
	}
	return r.inner.GenerateVariants(ctx, seed, goal, count)
}

func (r *rateLimitedLLM) ScoreCandidate(ctx context.Context, prompt, reference, goal string) (core.Judgment, core.TokenUsage, error) {
	if err := r.wait(ctx); err != nil {
		return core.Judgment{}, core.TokenUsage{}, err
	}
	return r.inner.ScoreCandidate(ctx, prompt, reference, goal)
}

func (r *rateLimitedLLM) MergePrompts(ctx context.Context, promptA, promptB, seed, goal string) (string, core.TokenUsage, error) {
	if err := r.wait(ctx); err != nil {
		return "", core.TokenUsage{}, err
	}
	return r.inner.MergePrompts(ctx, promptA, promptB, seed, goal)
}

func (r *rateLimitedLLM) InferTask(ctx context.Context, prompt string) (string, core.TokenUsage, error) {
	if err := r.wait(ctx); err != nil {
		return "", core.TokenUsage{}, err
	}
	return r.inner.InferTask(ctx, prompt)
}

func (r *rateLimitedLLM) ProviderName() string {
	return r.inner.ProviderName()
}

func (r *rateLimitedLLM) ModelID() string {
	return r.inner.ModelID()
}
