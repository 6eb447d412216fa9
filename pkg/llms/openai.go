package llms

import (
	"context"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/XiaoConstantine/evoprompt-go/pkg/config"
	"github.com/XiaoConstantine/evoprompt-go/pkg/core"
	errs "github.com/XiaoConstantine/evoprompt-go/pkg/errors"
	"github.com/XiaoConstantine/evoprompt-go/pkg/logging"
)

// OpenAILLM implements the core.LLM interface for OpenAI models using
// strict JSON-schema constrained responses.
type OpenAILLM struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
}

// NewOpenAILLM creates a new OpenAILLM instance from provider configuration.
func NewOpenAILLM(cfg config.ProviderConfig) (*OpenAILLM, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, errs.New(errs.InvalidInput, "API key is required")
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}

	return &OpenAILLM{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

func (o *OpenAILLM) ProviderName() string {
	return "openai"
}

func (o *OpenAILLM) ModelID() string {
	return o.model
}

// generateStructured issues one chat completion with a strict JSON schema
// response format and decodes the reply into target.
func (o *OpenAILLM) generateStructured(ctx context.Context, system, user, schemaName string, schema *openaiSchema, target interface{}) (core.TokenUsage, error) {
	logger := logging.GetLogger()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   o.maxTokens,
		Temperature: float32(o.temperature),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schemaName,
				Schema: schema,
				Strict: true,
			},
		},
	})

	if err != nil {
		return core.TokenUsage{}, errs.WithFields(
			errs.Wrap(err, errs.LLMGenerationFailed, "failed to generate response"),
			errs.Fields{"model": o.model})
	}

	if len(resp.Choices) == 0 {
		return core.TokenUsage{}, errs.New(errs.LLMGenerationFailed, "received no choices from OpenAI API")
	}

	usage := core.TokenUsage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}

	logger.Debug(ctx, "OpenAI response: %d input tokens, %d output tokens",
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := decodeJSON(content, target); err != nil {
		return usage, err
	}
	return usage, nil
}

func (o *OpenAILLM) GenerateVariants(ctx context.Context, seed, goal string, count int) ([]string, core.TokenUsage, error) {
	var out variantsResponse
	usage, err := o.generateStructured(ctx,
		variantsSystemPrompt(count, goal),
		variantsUserPrompt(seed, count),
		"better_prompts", wrapSchema(variantsSchema),
		&out)
	if err != nil {
		return nil, usage, err
	}
	if len(out.Prompts) == 0 {
		return nil, usage, errs.New(errs.InvalidResponse, "backend returned no prompt variants")
	}
	return out.Prompts, usage, nil
}

func (o *OpenAILLM) ScoreCandidate(ctx context.Context, prompt, reference, goal string) (core.Judgment, core.TokenUsage, error) {
	var out evaluationResponse
	usage, err := o.generateStructured(ctx,
		scoreSystemPrompt(goal),
		scoreUserPrompt(prompt),
		"evaluation", wrapSchema(evaluationSchema),
		&out)
	if err != nil {
		return core.Judgment{}, usage, err
	}
	return out.judgment(), usage, nil
}

func (o *OpenAILLM) MergePrompts(ctx context.Context, promptA, promptB, seed, goal string) (string, core.TokenUsage, error) {
	var out crossoverResponse
	usage, err := o.generateStructured(ctx,
		mergeSystemPrompt(goal),
		mergeUserPrompt(promptA, promptB),
		"prompt_crossover_response", wrapSchema(crossoverSchema),
		&out)
	if err != nil {
		return "", usage, err
	}
	if out.Prompt == "" {
		return "", usage, errs.New(errs.InvalidResponse, "backend returned an empty merged prompt")
	}
	return out.Prompt, usage, nil
}

func (o *OpenAILLM) InferTask(ctx context.Context, prompt string) (string, core.TokenUsage, error) {
	var out taskResponse
	usage, err := o.generateStructured(ctx,
		inferTaskSystem,
		inferTaskUserPrompt(prompt),
		"task_description", wrapSchema(taskSchema),
		&out)
	if err != nil {
		return "", usage, err
	}
	return out.Task, usage, nil
}
