package llms

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/XiaoConstantine/evoprompt-go/pkg/config"
	"github.com/XiaoConstantine/evoprompt-go/pkg/core"
	errs "github.com/XiaoConstantine/evoprompt-go/pkg/errors"
	"github.com/XiaoConstantine/evoprompt-go/pkg/logging"
)

// AnthropicLLM implements the core.LLM interface for Anthropic's models.
// Anthropic has no server-side structured-output mode for plain messages, so
// each operation appends a JSON-only instruction to the system prompt and the
// response is decoded leniently.
type AnthropicLLM struct {
	client      *anthropic.Client
	model       anthropic.Model
	maxTokens   int
	temperature float64
}

const jsonOnlyInstruction = "\n\nRespond with a single JSON object matching this schema, and nothing else:\n%s"

// NewAnthropicLLM creates a new AnthropicLLM instance from provider
// configuration.
func NewAnthropicLLM(cfg config.ProviderConfig) (*AnthropicLLM, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, errs.New(errs.InvalidInput, "API key is required")
	}

	if !isValidAnthropicModel(cfg.Model) {
		return nil, errs.WithFields(
			errs.New(errs.InvalidInput, "unsupported Anthropic model"),
			errs.Fields{"model": cfg.Model})
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(clientOpts...)

	return &AnthropicLLM{
		client:      &client,
		model:       anthropic.Model(cfg.Model),
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// isValidAnthropicModel checks if the model is a valid Anthropic model.
func isValidAnthropicModel(model string) bool {
	validPrefixes := []string{
		"claude-3",
		"claude-4",
		"claude-haiku",
		"claude-sonnet",
		"claude-opus",
	}

	for _, prefix := range validPrefixes {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

func (a *AnthropicLLM) ProviderName() string {
	return "anthropic"
}

func (a *AnthropicLLM) ModelID() string {
	return string(a.model)
}

// generateStructured issues one message request and decodes the JSON reply
// into target.
func (a *AnthropicLLM) generateStructured(ctx context.Context, system, user, schema string, target interface{}) (core.TokenUsage, error) {
	logger := logging.GetLogger()

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model: a.model,
		System: []anthropic.TextBlockParam{
			{Text: system + fmt.Sprintf(jsonOnlyInstruction, schema)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(user),
			),
		},
		MaxTokens:   int64(a.maxTokens),
		Temperature: anthropic.Float(a.temperature),
	})

	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			logger.Error(ctx, "Anthropic API error: status code %d", apiErr.StatusCode)
		}
		return core.TokenUsage{}, errs.WithFields(
			errs.Wrap(err, errs.LLMGenerationFailed, "failed to generate response"),
			errs.Fields{
				"model":      string(a.model),
				"max_tokens": a.maxTokens,
			})
	}

	if message == nil || len(message.Content) == 0 {
		return core.TokenUsage{}, errs.New(errs.LLMGenerationFailed, "received empty content from Anthropic API")
	}

	var responseText string
	if block := message.Content[0]; block.Type == "text" {
		responseText = block.Text
	}

	usage := core.TokenUsage{
		InputTokens:  int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}

	logger.Debug(ctx, "Anthropic response: %d input tokens, %d output tokens",
		message.Usage.InputTokens, message.Usage.OutputTokens)

	if err := decodeJSON(responseText, target); err != nil {
		return usage, err
	}
	return usage, nil
}

func (a *AnthropicLLM) GenerateVariants(ctx context.Context, seed, goal string, count int) ([]string, core.TokenUsage, error) {
	var out variantsResponse
	usage, err := a.generateStructured(ctx,
		variantsSystemPrompt(count, goal),
		variantsUserPrompt(seed, count),
		mustMarshalSchema(variantsSchema),
		&out)
	if err != nil {
		return nil, usage, err
	}
	if len(out.Prompts) == 0 {
		return nil, usage, errs.New(errs.InvalidResponse, "backend returned no prompt variants")
	}
	return out.Prompts, usage, nil
}

func (a *AnthropicLLM) ScoreCandidate(ctx context.Context, prompt, reference, goal string) (core.Judgment, core.TokenUsage, error) {
	var out evaluationResponse
	usage, err := a.generateStructured(ctx,
		scoreSystemPrompt(goal),
		scoreUserPrompt(prompt),
		mustMarshalSchema(evaluationSchema),
		&out)
	if err != nil {
		return core.Judgment{}, usage, err
	}
	return out.judgment(), usage, nil
}

func (a *AnthropicLLM) MergePrompts(ctx context.Context, promptA, promptB, seed, goal string) (string, core.TokenUsage, error) {
	var out crossoverResponse
	usage, err := a.generateStructured(ctx,
		mergeSystemPrompt(goal),
		mergeUserPrompt(promptA, promptB),
		mustMarshalSchema(crossoverSchema),
		&out)
	if err != nil {
		return "", usage, err
	}
	if out.Prompt == "" {
		return "", usage, errs.New(errs.InvalidResponse, "backend returned an empty merged prompt")
	}
	return out.Prompt, usage, nil
}

func (a *AnthropicLLM) InferTask(ctx context.Context, prompt string) (string, core.TokenUsage, error) {
	var out taskResponse
	usage, err := a.generateStructured(ctx,
		inferTaskSystem,
		inferTaskUserPrompt(prompt),
		mustMarshalSchema(taskSchema),
		&out)
	if err != nil {
		return "", usage, err
	}
	return out.Task, usage, nil
}
