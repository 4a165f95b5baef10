package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GoogleDefaultModel is used when the configuration omits a model.
const GoogleDefaultModel = "gemini-2.0-flash-exp"

func init() {
	RegisterProviderFactory("google", newGoogleBackend)
}

// googleBackend implements Backend for Google's Gemini API.
type googleBackend struct {
	client *genai.Client
	model  string
}

func newGoogleBackend(config Config) (Backend, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := config.Model
	if model == "" {
		model = GoogleDefaultModel
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create google client: %w", err)
	}

	return &googleBackend{client: client, model: model}, nil
}

// Generate implements Backend over the GenerateContent endpoint.
func (b *googleBackend) Generate(ctx context.Context, prompt string, opts map[string]any) (Completion, error) {
	options := parseOptions(opts, b.model)

	// Gemini has no separate system role, so a system prompt is folded
	// into the user turn.
	finalPrompt := prompt
	if options.system != "" {
		finalPrompt = fmt.Sprintf("System: %s\n\nUser: %s", options.system, prompt)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(finalPrompt, genai.RoleUser),
	}

	resp, err := b.client.Models.GenerateContent(ctx, options.model, contents, b.buildGenerationConfig(options))
	if err != nil {
		return Completion{}, b.wrapError(err)
	}

	text := resp.Text()
	if text == "" {
		return Completion{}, &ProviderError{Provider: "google", Type: ErrorTypeUnknown, Err: ErrEmptyResponse}
	}

	return Completion{
		Text:      text,
		TokensIn:  b.tokenCount(resp.UsageMetadata, true, prompt),
		TokensOut: b.tokenCount(resp.UsageMetadata, false, text),
	}, nil
}

// Model implements Backend.
func (b *googleBackend) Model() string { return b.model }

func (b *googleBackend) buildGenerationConfig(options requestOptions) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}

	if options.temperature != nil {
		config.Temperature = genai.Ptr(float32(clamp(*options.temperature, 0.0, 2.0)))
	}
	if options.topP != nil {
		config.TopP = genai.Ptr(float32(clamp(*options.topP, 0.0, 1.0)))
	}
	if options.maxTokens > 0 {
		if options.maxTokens > math.MaxInt32 {
			config.MaxOutputTokens = math.MaxInt32
		} else {
			config.MaxOutputTokens = int32(options.maxTokens)
		}
	}

	return config
}

func (b *googleBackend) tokenCount(usage *genai.GenerateContentResponseUsageMetadata, isInput bool, text string) int {
	if usage != nil {
		if isInput && usage.PromptTokenCount > 0 {
			return int(usage.PromptTokenCount)
		}
		if !isInput && usage.CandidatesTokenCount > 0 {
			return int(usage.CandidatesTokenCount)
		}
	}
	return charTokenEstimator{}.EstimateTokens(text)
}

func (b *googleBackend) wrapError(err error) error {
	if isContextError(err) {
		return classifyContext("google", err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" && len(apiErr.Errors) > 0 {
			message = apiErr.Errors[0].Message
		}
		if isContentPolicyError(apiErr) {
			return &ProviderError{
				Provider:   "google",
				Type:       ErrorTypeContentPolicy,
				StatusCode: apiErr.Code,
				Message:    "request blocked by safety filters",
				Err:        err,
			}
		}
		return classifyHTTP("google", apiErr.Code, message, err)
	}

	return &ProviderError{Provider: "google", Type: ErrorTypeUnknown, Message: "request failed", Err: err}
}

// isContentPolicyError reports whether a Google API error stems from a
// safety filter rather than a malformed request.
func isContentPolicyError(apiErr *googleapi.Error) bool {
	if apiErr.Message != "" {
		lower := strings.ToLower(apiErr.Message)
		if strings.Contains(lower, "safety") ||
			strings.Contains(lower, "policy") ||
			strings.Contains(lower, "blocked") {
			return true
		}
	}

	for _, e := range apiErr.Errors {
		if e.Reason == "SAFETY" || e.Reason == "BLOCKED" {
			return true
		}
	}

	return false
}
