package ai

import "strings"

// CleanJSON strips Markdown code fences and any chatter around the first JSON
// object or array in a model response.
func CleanJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			s = strings.TrimLeft(strings.TrimPrefix(s, "```"), "json")
		} else {
			s = s[idx+1:]
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = strings.TrimSpace(s[:idx])
	}

	open := strings.IndexAny(s, "[{")
	if open == -1 {
		return s
	}
	closer := "]"
	if s[open] == '{' {
		closer = "}"
	}
	if end := strings.LastIndex(s, closer); end > open {
		s = s[open : end+1]
	}

	return strings.TrimSpace(s)
}
