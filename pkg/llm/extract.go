package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSON is returned when a model response contains no decodable JSON
// object. Callers treat it like any other transient model failure.
var ErrNoJSON = errors.New("no JSON object found in model response")

// DecodeJSON decodes a JSON object out of free-form model text. Models wrap
// their verdicts in prose, markdown fences, or think blocks, so decoding is
// best-effort: try the whole trimmed response as strict JSON first, then fall
// back to the largest balanced-brace substring.
func DecodeJSON(raw string, v any) error {
	trimmed := strings.TrimSpace(stripCodeFences(raw))
	if trimmed == "" {
		return ErrNoJSON
	}
	if json.Unmarshal([]byte(trimmed), v) == nil {
		return nil
	}
	candidate := largestBalancedObject(trimmed)
	if candidate == "" {
		return ErrNoJSON
	}
	if err := json.Unmarshal([]byte(candidate), v); err != nil {
		return ErrNoJSON
	}
	return nil
}

func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	return strings.ReplaceAll(s, "```", "")
}

// largestBalancedObject returns the longest substring that starts with '{',
// ends with its matching '}', and balances braces outside of string literals.
func largestBalancedObject(s string) string {
	var best string
	for start := 0; start < len(s); start++ {
		if s[start] != '{' {
			continue
		}
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(s); i++ {
			ch := s[i]
			if escaped {
				escaped = false
				continue
			}
			switch ch {
			case '\\':
				if inString {
					escaped = true
				}
			case '"':
				inString = !inString
			case '{':
				if !inString {
					depth++
				}
			case '}':
				if !inString {
					depth--
					if depth == 0 {
						if i-start+1 > len(best) {
							best = s[start : i+1]
						}
						i = len(s) // done with this start
					}
				}
			}
		}
	}
	return best
}
