package llm

// Default request parameters applied when the caller's options omit them.
const (
	// DefaultMaxTokens bounds completion length when unset. Structured
	// documents rarely need more.
	DefaultMaxTokens = 1024
)

// requestOptions is the provider-neutral form of a request's tunables,
// parsed once from the caller's options map.
type requestOptions struct {
	model       string
	maxTokens   int
	temperature *float64
	topP        *float64
	system      string
}

// parseOptions extracts known tunables from opts, falling back to
// defaults for absent or out-of-range values. Unknown keys are ignored.
func parseOptions(opts map[string]any, defaultModel string) requestOptions {
	options := requestOptions{
		model:     optString(opts, "model", defaultModel),
		maxTokens: optInt(opts, "max_tokens", DefaultMaxTokens),
		system:    optString(opts, "system", ""),
	}

	if temp, ok := optFloat(opts, "temperature"); ok && temp >= 0.0 && temp <= 1.0 {
		options.temperature = &temp
	}
	if topP, ok := optFloat(opts, "top_p"); ok && topP >= 0.0 && topP <= 1.0 {
		options.topP = &topP
	}

	return options
}

func optString(opts map[string]any, key, fallback string) string {
	if v, ok := opts[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func optInt(opts map[string]any, key string, fallback int) int {
	switch v := opts[key].(type) {
	case int:
		if v > 0 {
			return v
		}
	case float64:
		if v > 0 {
			return int(v)
		}
	}
	return fallback
}

func optFloat(opts map[string]any, key string) (float64, bool) {
	switch v := opts[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
