package translator

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoPayload is returned when no structured payload can be recovered from
// a model response. Callers must treat it as an explicit error result, not a
// best-effort default object.
var ErrNoPayload = errors.New("no parseable payload in model response")

// Regexes use \x60 for backticks because Go raw strings cannot contain them.
var fencedBlockRegex = regexp.MustCompile("(?s)\x60\x60\x60(?:json)?\\s*([\\[{].*?[\\]}])\\s*\x60\x60\x60")

// ExtractJSON recovers a structured payload of type T from a free-text model
// reply. It attempts, in order: a strict parse of the whole response, the
// contents of a fenced markdown block, and the first balanced bracketed
// substring. Each stage only runs when the previous one fails; when all fail
// the error wraps ErrNoPayload.
func ExtractJSON[T any](response string) (*T, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, ErrNoPayload
	}

	candidates := []string{response}
	if m := fencedBlockRegex.FindStringSubmatch(response); len(m) > 1 {
		candidates = append(candidates, m[1])
	}
	if sub, ok := balancedSubstring(response); ok {
		candidates = append(candidates, sub)
	}

	var lastErr error
	for _, c := range candidates {
		var result T
		if err := json.Unmarshal([]byte(c), &result); err == nil {
			return &result, nil
		} else {
			lastErr = err
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrNoPayload, lastErr)
}

// balancedSubstring returns the first balanced {...} or [...] substring,
// tracking string literals and escapes so brackets inside JSON strings do
// not confuse the depth count.
func balancedSubstring(s string) (string, bool) {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", false
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
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
