// Package extract recovers structured JSON values from free-form generation
// backend output. Backends wrap JSON in prose, markdown fences, or emit
// slightly malformed syntax; this package applies a fixed sequence of
// increasingly tolerant strategies and returns the first value that parses.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Strategy identifies which extraction strategy produced a value.
type Strategy string

// Extraction strategies, in the order they are attempted.
const (
	// StrategyDirect parses the trimmed whole text as JSON.
	StrategyDirect Strategy = "direct"

	// StrategyFenced locates a markdown code fence and parses its inner
	// content.
	StrategyFenced Strategy = "fenced"

	// StrategyBraceScan scans for the first '{' and tracks brace depth
	// until it returns to zero, then parses that span.
	StrategyBraceScan Strategy = "brace_scan"

	// StrategyNormalized applies cheap syntactic repairs (trailing commas,
	// bare keys) and retries the brace scan once.
	StrategyNormalized Strategy = "normalized"

	// StrategyNone means no strategy recovered a value.
	StrategyNone Strategy = "none"
)

var (
	// trailingCommaRe matches a comma that directly precedes a closing
	// brace or bracket, the most common malformation in generated JSON.
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

	// bareKeyRe matches an unquoted identifier in object-key position.
	bareKeyRe = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
)

// JSON attempts to recover a structured value from text.
// It returns the parsed value and true on success, or nil and false when
// every strategy fails. It never panics and never returns an error: callers
// that need to know why extraction failed get that from the absence of a
// value, not from error plumbing.
func JSON(text string) (any, bool) {
	value, _, ok := JSONWithStrategy(text)
	return value, ok
}

// JSONWithStrategy is JSON plus the strategy that produced the value,
// for diagnostics and metrics. Strategies are attempted in a fixed order
// and the first success wins.
func JSONWithStrategy(text string) (any, Strategy, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, StrategyNone, false
	}

	if v, ok := parse(trimmed); ok {
		return v, StrategyDirect, true
	}

	if inner, found := fencedBlock(trimmed); found {
		if v, ok := parse(inner); ok {
			return v, StrategyFenced, true
		}
	}

	if span, found := braceSpan(trimmed); found {
		if v, ok := parse(span); ok {
			return v, StrategyBraceScan, true
		}
	}

	// Last resort: normalize the text and rescan once.
	normalized := normalize(trimmed)
	if span, found := braceSpan(normalized); found {
		if v, ok := parse(span); ok {
			return v, StrategyNormalized, true
		}
	}

	return nil, StrategyNone, false
}

// parse decodes s as JSON into a generic value tree.
func parse(s string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, true
}

// fencedBlock returns the inner content of the first markdown code fence.
// A "```json" fence is preferred; failing that, any "```" fence whose body
// starts with '{' or '[' is taken, skipping an optional language tag on the
// opening line.
func fencedBlock(text string) (string, bool) {
	if start := strings.Index(text, "```json"); start != -1 {
		body := text[start+len("```json"):]
		if end := strings.Index(body, "```"); end != -1 {
			return strings.TrimSpace(body[:end]), true
		}
	}

	if start := strings.Index(text, "```"); start != -1 {
		body := text[start+3:]
		// Skip a language identifier such as "javascript".
		if nl := strings.Index(body, "\n"); nl != -1 {
			body = body[nl+1:]
		}
		if end := strings.Index(body, "```"); end != -1 {
			candidate := strings.TrimSpace(body[:end])
			if strings.HasPrefix(candidate, "{") || strings.HasPrefix(candidate, "[") {
				return candidate, true
			}
		}
	}

	return "", false
}

// braceSpan returns the first balanced {...} span in text.
//
// The depth counter is deliberately naive: it does not tokenize string
// literals, so a '}' or '{' inside a quoted string can confuse it. Full
// tokenization would defeat the purpose of a cheap fallback scanner, and
// the preceding strategies already handle well-formed responses; this
// limitation is accepted and documented rather than fixed. Only the first
// candidate span is considered (first-match, not best-match).
func braceSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	return "", false
}

// normalize applies two cheap syntactic repairs to malformed JSON:
// stripping trailing commas before closing braces/brackets and quoting
// bare object keys. Both are regex rewrites; anything subtler than that
// belongs in a repair round, not here.
func normalize(text string) string {
	text = trailingCommaRe.ReplaceAllString(text, "$1")
	text = bareKeyRe.ReplaceAllString(text, `$1"$2":`)
	return text
}
