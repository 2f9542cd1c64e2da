package llm

import (
	"regexp"
	"strings"
)

// Patterns for locating JSON embedded in model output.
var (
	// fencedJSONPattern matches a JSON object or array inside a markdown
	// code fence: ```json { ... } ```
	fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?([\\[{].*[\\]}])\\s*```")
	// bareJSONPattern matches the outermost object or array in free text.
	bareJSONPattern = regexp.MustCompile(`(?s)[\[{][\s\S]*[\]}]`)
	// trailingCommaPattern matches trailing commas before ] or }.
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSON pulls a JSON object or array out of a model response.
// Models wrap JSON in markdown fences and emit trailing commas often enough
// that downstream parsing needs this cleanup. Returns "" when no JSON-like
// payload is found.
func ExtractJSON(content string) string {
	raw := ""
	if m := fencedJSONPattern.FindStringSubmatch(content); len(m) > 1 {
		raw = m[1]
	} else {
		raw = bareJSONPattern.FindString(content)
	}
	if raw == "" {
		return ""
	}
	return trailingCommaPattern.ReplaceAllString(strings.TrimSpace(raw), "$1")
}
