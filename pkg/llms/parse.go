package llms

import (
	"encoding/json"
	"strings"

	"github.com/XiaoConstantine/evoprompt-go/pkg/errors"
)

// decodeJSON parses a model response into target, tolerating the usual
// decoration models add around JSON: markdown code fences and prose before or
// after the object. The first balanced top-level JSON value is decoded.
func decodeJSON(response string, target interface{}) error {
	trimmed := strings.TrimSpace(response)

	// Fast path: the response is already clean JSON.
	if err := json.Unmarshal([]byte(trimmed), target); err == nil {
		return nil
	}

	// Strip a markdown code fence if present.
	if strings.HasPrefix(trimmed, "```") {
		if idx := strings.Index(trimmed, "\n"); idx >= 0 {
			trimmed = trimmed[idx+1:]
		}
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
		if err := json.Unmarshal([]byte(trimmed), target); err == nil {
			return nil
		}
	}

	// Last resort: slice out the outermost object or array.
	extracted := extractBalanced(trimmed)
	if extracted != "" {
		if err := json.Unmarshal([]byte(extracted), target); err == nil {
			return nil
		}
	}

	return errors.WithFields(
		errors.New(errors.InvalidResponse, "response is not valid JSON"),
		errors.Fields{"response_prefix": prefix(response, 80)})
}

// extractBalanced returns the first balanced {...} or [...] region of s,
// ignoring braces inside JSON strings.
func extractBalanced(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}

	open := s[start]
	var close byte = '}'
	if open == '[' {
		close = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// Skip structural characters inside strings.
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
