package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/codelie14/zillasec/internal/common"
)

// ProviderType represents the AI provider type
type ProviderType string

const (
	// ProviderGemini uses Google Gemini API
	ProviderGemini ProviderType = "gemini"
	// ProviderClaude uses Anthropic Claude API
	ProviderClaude ProviderType = "claude"
	// ProviderOpenRouter uses an OpenAI-compatible chat completions endpoint
	ProviderOpenRouter ProviderType = "openrouter"
)

// APIKeys carries provider credentials resolved once at startup
type APIKeys struct {
	Gemini     string
	Claude     string
	OpenRouter string
}

// ContentRequest is a provider-agnostic single-turn request
type ContentRequest struct {
	SystemInstruction string
	UserContent       string
	Model             string
	Temperature       float32
	MaxTokens         int
}

// ContentResponse is a provider-agnostic reply
type ContentResponse struct {
	Text     string
	Provider ProviderType
	Model    string
}

// ProviderFactory creates provider clients on first use and routes requests to them.
// Every call is a single attempt; SDK-level retries are disabled.
type ProviderFactory struct {
	config *common.Config
	keys   APIKeys
	logger arbor.ILogger

	geminiClient     *genai.Client
	claudeClient     *anthropic.Client
	openRouterClient *openai.Client
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(config *common.Config, keys APIKeys, logger arbor.ILogger) *ProviderFactory {
	return &ProviderFactory{
		config: config,
		keys:   keys,
		logger: logger,
	}
}

// DetectProvider determines the provider from a model string.
// An explicit "claude/", "gemini/" or "openrouter/" prefix wins, then claude-* and gemini-* names.
// Anything else, including an empty model, uses the configured default provider.
func (f *ProviderFactory) DetectProvider(model string) ProviderType {
	m := strings.ToLower(model)
	switch {
	case strings.HasPrefix(m, "claude/"), strings.HasPrefix(m, "claude-"):
		return ProviderClaude
	case strings.HasPrefix(m, "gemini/"), strings.HasPrefix(m, "gemini-"):
		return ProviderGemini
	case strings.HasPrefix(m, "openrouter/"):
		return ProviderOpenRouter
	}
	return ProviderType(f.config.LLM.DefaultProvider)
}

// NormalizeModel removes a provider prefix from model
func (f *ProviderFactory) NormalizeModel(model string) string {
	for _, prefix := range []string{"claude/", "gemini/", "openrouter/"} {
		if strings.HasPrefix(strings.ToLower(model), prefix) {
			return model[len(prefix):]
		}
	}
	return model
}

// DefaultModel returns the configured model for a provider
func (f *ProviderFactory) DefaultModel(provider ProviderType) string {
	switch provider {
	case ProviderClaude:
		return f.config.Claude.Model
	case ProviderGemini:
		return f.config.Gemini.Model
	default:
		return f.config.OpenRouter.Model
	}
}

// GenerateContent sends the request to the provider selected by its model
func (f *ProviderFactory) GenerateContent(ctx context.Context, request *ContentRequest) (*ContentResponse, error) {
	provider := f.DetectProvider(request.Model)
	model := f.NormalizeModel(request.Model)
	if model == "" {
		model = f.DefaultModel(provider)
	}

	f.logger.Debug().
		Str("provider", string(provider)).
		Str("model", model).
		Int("prompt_chars", len(request.SystemInstruction)+len(request.UserContent)).
		Msg("Generating content with provider")

	switch provider {
	case ProviderClaude:
		return f.generateWithClaude(ctx, request, model)
	case ProviderGemini:
		return f.generateWithGemini(ctx, request, model)
	case ProviderOpenRouter:
		return f.generateWithOpenRouter(ctx, request, model)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func (f *ProviderFactory) getClaudeClient() (*anthropic.Client, error) {
	if f.claudeClient != nil {
		return f.claudeClient, nil
	}
	if f.keys.Claude == "" {
		return nil, fmt.Errorf("anthropic API key is not configured")
	}
	client := anthropic.NewClient(
		anthropicoption.WithAPIKey(f.keys.Claude),
		anthropicoption.WithMaxRetries(0),
	)
	f.claudeClient = &client
	return f.claudeClient, nil
}

func (f *ProviderFactory) getGeminiClient(ctx context.Context) (*genai.Client, error) {
	if f.geminiClient != nil {
		return f.geminiClient, nil
	}
	if f.keys.Gemini == "" {
		return nil, fmt.Errorf("gemini API key is not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  f.keys.Gemini,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	f.geminiClient = client
	return client, nil
}

func (f *ProviderFactory) getOpenRouterClient() (*openai.Client, error) {
	if f.openRouterClient != nil {
		return f.openRouterClient, nil
	}
	if f.keys.OpenRouter == "" {
		return nil, fmt.Errorf("openrouter API key is not configured")
	}
	client := openai.NewClient(
		openaioption.WithAPIKey(f.keys.OpenRouter),
		openaioption.WithBaseURL(f.config.OpenRouter.BaseURL),
		openaioption.WithMaxRetries(0),
	)
	f.openRouterClient = &client
	return f.openRouterClient, nil
}

func (f *ProviderFactory) generateWithClaude(ctx context.Context, request *ContentRequest, model string) (*ContentResponse, error) {
	client, err := f.getClaudeClient()
	if err != nil {
		return nil, err
	}

	maxTokens := request.MaxTokens
	if maxTokens <= 0 {
		maxTokens = f.config.Claude.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(request.UserContent)),
		},
	}

	temp := request.Temperature
	if temp <= 0 {
		temp = f.config.Claude.Temperature
	}
	if temp > 0 {
		params.Temperature = anthropic.Float(float64(temp))
	}
	if request.SystemInstruction != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: request.SystemInstruction},
		}
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("Claude API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("empty response from Claude API")
	}

	return &ContentResponse{
		Text:     text.String(),
		Provider: ProviderClaude,
		Model:    model,
	}, nil
}

func (f *ProviderFactory) generateWithGemini(ctx context.Context, request *ContentRequest, model string) (*ContentResponse, error) {
	client, err := f.getGeminiClient(ctx)
	if err != nil {
		return nil, err
	}

	temp := request.Temperature
	if temp <= 0 {
		temp = f.config.Gemini.Temperature
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temp),
	}
	if request.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(request.SystemInstruction, genai.RoleUser)
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(request.UserContent), config)
	if err != nil {
		return nil, fmt.Errorf("Gemini API call failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini API")
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("empty text in Gemini response")
	}

	return &ContentResponse{
		Text:     text,
		Provider: ProviderGemini,
		Model:    model,
	}, nil
}

func (f *ProviderFactory) generateWithOpenRouter(ctx context.Context, request *ContentRequest, model string) (*ContentResponse, error) {
	client, err := f.getOpenRouterClient()
	if err != nil {
		return nil, err
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if request.SystemInstruction != "" {
		messages = append(messages, openai.SystemMessage(request.SystemInstruction))
	}
	messages = append(messages, openai.UserMessage(request.UserContent))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: messages,
	}
	if request.Temperature > 0 {
		params.Temperature = openai.Float(float64(request.Temperature))
	}
	if request.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(request.MaxTokens))
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("OpenRouter API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in OpenRouter response")
	}

	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty text in OpenRouter response")
	}

	return &ContentResponse{
		Text:     text,
		Provider: ProviderOpenRouter,
		Model:    model,
	}, nil
}

// Close drops every cached client
func (f *ProviderFactory) Close() error {
	f.geminiClient = nil
	f.claudeClient = nil
	f.openRouterClient = nil
	return nil
}
