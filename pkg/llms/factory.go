// Package llms contains provider adapters implementing the core.LLM port.
package llms

import (
	"github.com/XiaoConstantine/evoprompt-go/pkg/config"
	"github.com/XiaoConstantine/evoprompt-go/pkg/core"
	errs "github.com/XiaoConstantine/evoprompt-go/pkg/errors"
)

// New creates an LLM from provider configuration, applying the rate-limit
// decorator when requested.
func New(cfg config.ProviderConfig) (core.LLM, error) {
	var (
		llm core.LLM
		err error
	)

	switch cfg.Name {
	case "anthropic":
		llm, err = NewAnthropicLLM(cfg)
	case "openai":
		llm, err = NewOpenAILLM(cfg)
	default:
		return nil, errs.WithFields(
			errs.New(errs.InvalidConfiguration, "unsupported provider"),
			errs.Fields{"provider": cfg.Name})
	}
	if err != nil {
		return nil, err
	}

	if cfg.RequestsPerMinute > 0 {
		llm = WithRateLimit(llm, cfg.RequestsPerMinute)
	}
	return llm, nil
}
