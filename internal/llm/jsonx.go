package llm

import (
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json|JSON)?[ \t]*\r?\n?(.*?)```")

// FencedBlock returns the interior of the first ``` fenced block.
func FencedBlock(s string) (string, bool) {
	m := fencedBlock.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// FirstObject returns the first balanced {...} span in s, ignoring braces
// inside string literals.
func FirstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
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
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// Candidates lists the JSON texts worth trying for a model reply, in order:
// the fenced block, then the first balanced object.
func Candidates(reply string) []string {
	var out []string
	if block, ok := FencedBlock(reply); ok && block != "" {
		out = append(out, block)
	}
	if obj, ok := FirstObject(reply); ok {
		out = append(out, obj)
	}
	return out
}
