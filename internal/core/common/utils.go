package common

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSON extracts and unmarshals the first JSON object found in an LLM
// response. Models routinely wrap JSON in markdown fences or prose, so
// everything outside the outermost braces is discarded.
func ParseJSON[T any](response string) (T, error) {
	var zero T

	start := strings.Index(response, "{")
	if start == -1 {
		return zero, fmt.Errorf("no JSON object found in response")
	}
	end := strings.LastIndex(response, "}")
	if end == -1 || end < start {
		return zero, fmt.Errorf("unterminated JSON object in response")
	}

	var result T
	if err := json.Unmarshal([]byte(response[start:end+1]), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return result, nil
}

// Truncate shortens s to at most max runes, appending an ellipsis when it cuts.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
