// Package testutils provides deterministic test doubles for the
// conformance engine's external dependencies.
package testutils

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ahrav/go-conform/internal/ports"
)

// Compile-time verification that MockGenerationClient implements GenerationClient.
var _ ports.GenerationClient = (*MockGenerationClient)(nil)

// MockGenerationClient implements ports.GenerationClient with canned
// responses for testing validation and repair flows without network
// access. Responses can be keyed by prompt substring or scripted as an
// ordered sequence; scripted responses take priority.
type MockGenerationClient struct {
	mu sync.Mutex

	model     string
	patterns  []patternResponse
	scripted  []string
	callCount int
	prompts   []string
	err       error
}

type patternResponse struct {
	pattern  string
	response string
}

// NewMockGenerationClient creates a mock that answers every prompt with a
// minimal valid JSON object until configured otherwise.
func NewMockGenerationClient(model string) *MockGenerationClient {
	return &MockGenerationClient{
		model: model,
		patterns: []patternResponse{
			{pattern: "", response: `{"status": "ok"}`},
		},
	}
}

// AddResponse registers a response returned for prompts containing the
// given substring. Patterns registered later are checked first, and the
// empty pattern acts as the fallback.
func (m *MockGenerationClient) AddResponse(pattern, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = append([]patternResponse{{pattern: pattern, response: response}}, m.patterns...)
}

// Script replaces pattern matching with a fixed response sequence. The
// final entry repeats once the sequence is exhausted.
func (m *MockGenerationClient) Script(responses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripted = responses
}

// FailWith makes every subsequent call return err.
func (m *MockGenerationClient) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Complete implements ports.GenerationClient.
func (m *MockGenerationClient) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if prompt == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	call := m.callCount
	m.callCount++

	if m.err != nil {
		return "", m.err
	}

	if len(m.scripted) > 0 {
		if call >= len(m.scripted) {
			call = len(m.scripted) - 1
		}
		return m.scripted[call], nil
	}

	lower := strings.ToLower(prompt)
	for _, p := range m.patterns {
		if p.pattern == "" || strings.Contains(lower, strings.ToLower(p.pattern)) {
			return p.response, nil
		}
	}
	return "", fmt.Errorf("no response configured for prompt")
}

// EstimateTokens implements ports.GenerationClient with the usual
// four-characters-per-token approximation.
func (m *MockGenerationClient) EstimateTokens(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	tokens := len(text) / 4
	if tokens == 0 {
		tokens = 1
	}
	return tokens, nil
}

// GetModel implements ports.GenerationClient.
func (m *MockGenerationClient) GetModel() string { return m.model }

// CallCount returns how many times Complete has been invoked.
func (m *MockGenerationClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Prompts returns a copy of every prompt received, in order.
func (m *MockGenerationClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}
