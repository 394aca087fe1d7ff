// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import "strings"

// CleanJSONBlock isolates the JSON payload in an LLM response. Models wrap
// JSON in ```json ... ``` fences or add conversational preamble even when
// instructed not to, so this strips fences and then extracts the first
// balanced JSON object or array. If no payload is found the trimmed text is
// returned unchanged.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	// Peel off a markdown fence first.
	if idx := strings.Index(text, "```json"); idx >= 0 {
		start := idx + len("```json")
		if end := strings.Index(text[start:], "```"); end >= 0 {
			text = strings.TrimSpace(text[start : start+end])
		}
	} else if idx := strings.Index(text, "```"); idx >= 0 {
		start := idx + len("```")
		if end := strings.Index(text[start:], "```"); end >= 0 {
			text = strings.TrimSpace(text[start : start+end])
		}
	}

	objIdx := strings.IndexByte(text, '{')
	arrIdx := strings.IndexByte(text, '[')

	// Whichever delimiter appears first marks the payload; fall back to the
	// other if the first turns out to be unbalanced.
	switch {
	case objIdx >= 0 && (arrIdx < 0 || objIdx < arrIdx):
		if s := extractJSONObject(text[objIdx:]); s != "" {
			return s
		}
		if arrIdx >= 0 {
			if s := extractJSONArray(text[arrIdx:]); s != "" {
				return s
			}
		}
	case arrIdx >= 0:
		if s := extractJSONArray(text[arrIdx:]); s != "" {
			return s
		}
		if objIdx >= 0 {
			if s := extractJSONObject(text[objIdx:]); s != "" {
				return s
			}
		}
	}

	return text
}

// extractJSONObject returns the balanced JSON object at the start of text,
// or "" if text does not begin with one. Braces inside string literals do
// not count toward nesting.
func extractJSONObject(text string) string {
	return extractBalanced(text, '{', '}')
}

// extractJSONArray returns the balanced JSON array at the start of text,
// or "" if text does not begin with one.
func extractJSONArray(text string) string {
	return extractBalanced(text, '[', ']')
}

func extractBalanced(text string, open, closing byte) string {
	if len(text) == 0 || text[0] != open {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return text[:i+1]
			}
		}
	}
	return ""
}
