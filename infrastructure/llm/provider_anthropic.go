package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicDefaultModel is used when the configuration omits a model.
const AnthropicDefaultModel = "claude-3-5-sonnet-20241022"

func init() {
	RegisterProviderFactory("anthropic", newAnthropicBackend)
}

// anthropicBackend implements Backend for Anthropic's Messages API.
type anthropicBackend struct {
	client anthropic.Client
	model  string
}

func newAnthropicBackend(config Config) (Backend, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := config.Model
	if model == "" {
		model = AnthropicDefaultModel
	}

	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(config.Timeout))
	}

	return &anthropicBackend{
		client: anthropic.NewClient(opts...),
		model:  model,
	}, nil
}

// Generate implements Backend over the Messages endpoint.
func (b *anthropicBackend) Generate(ctx context.Context, prompt string, opts map[string]any) (Completion, error) {
	options := parseOptions(opts, b.model)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(options.model),
		MaxTokens: int64(options.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if options.temperature != nil {
		params.Temperature = anthropic.Float(clamp(*options.temperature, 0.0, 1.0))
	}
	if options.topP != nil {
		params.TopP = anthropic.Float(clamp(*options.topP, 0.0, 1.0))
	}
	if options.system != "" {
		params.System = []anthropic.TextBlockParam{{Text: options.system}}
	}

	message, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return Completion{}, b.wrapError(err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		switch content := block.AsAny().(type) {
		case anthropic.TextBlock:
			sb.WriteString(content.Text)
		}
	}

	text := sb.String()
	if text == "" {
		return Completion{}, &ProviderError{Provider: "anthropic", Type: ErrorTypeUnknown, Err: ErrEmptyResponse}
	}

	return Completion{
		Text:      text,
		TokensIn:  tokenCountOr(int(message.Usage.InputTokens), prompt),
		TokensOut: tokenCountOr(int(message.Usage.OutputTokens), text),
	}, nil
}

// Model implements Backend.
func (b *anthropicBackend) Model() string { return b.model }

func (b *anthropicBackend) wrapError(err error) error {
	if isContextError(err) {
		return classifyContext("anthropic", err)
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return classifyHTTP("anthropic", apiErr.StatusCode, "request failed", err)
	}

	return &ProviderError{Provider: "anthropic", Type: ErrorTypeUnknown, Message: "request failed", Err: err}
}
