package llm

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIDefaultModel is used when the configuration omits a model.
const OpenAIDefaultModel = "gpt-4o-mini"

func init() {
	RegisterProviderFactory("openai", newOpenAIBackend)
}

// openAIBackend implements Backend for OpenAI's chat completion API.
type openAIBackend struct {
	client *openai.Client
	model  string
}

func newOpenAIBackend(config Config) (Backend, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := config.Model
	if model == "" {
		model = OpenAIDefaultModel
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}
	}

	return &openAIBackend{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}, nil
}

// Generate implements Backend over the chat completion endpoint.
func (b *openAIBackend) Generate(ctx context.Context, prompt string, opts map[string]any) (Completion, error) {
	options := parseOptions(opts, b.model)

	req := openai.ChatCompletionRequest{
		Model:     options.model,
		MaxTokens: options.maxTokens,
		Messages:  b.buildMessages(prompt, options),
	}
	if options.temperature != nil {
		req.Temperature = float32(clamp(*options.temperature, 0.0, 2.0))
	}
	if options.topP != nil {
		req.TopP = float32(clamp(*options.topP, 0.0, 1.0))
	}

	resp, err := b.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Completion{}, b.wrapError(err)
	}

	if len(resp.Choices) == 0 {
		return Completion{}, &ProviderError{Provider: "openai", Type: ErrorTypeUnknown, Err: ErrEmptyResponse}
	}

	text := resp.Choices[0].Message.Content
	return Completion{
		Text:      text,
		TokensIn:  tokenCountOr(resp.Usage.PromptTokens, prompt),
		TokensOut: tokenCountOr(resp.Usage.CompletionTokens, text),
	}, nil
}

// Model implements Backend.
func (b *openAIBackend) Model() string { return b.model }

func (b *openAIBackend) buildMessages(prompt string, options requestOptions) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if options.system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: options.system,
		})
	}
	return append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})
}

func (b *openAIBackend) wrapError(err error) error {
	if isContextError(err) {
		return classifyContext("openai", err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" {
			message = "request failed"
		}
		return classifyHTTP("openai", apiErr.HTTPStatusCode, message, err)
	}

	return &ProviderError{Provider: "openai", Type: ErrorTypeUnknown, Message: "request failed", Err: err}
}

// tokenCountOr returns the provider-reported count when present, falling
// back to the character heuristic.
func tokenCountOr(reported int, text string) int {
	if reported > 0 {
		return reported
	}
	return charTokenEstimator{}.EstimateTokens(text)
}
