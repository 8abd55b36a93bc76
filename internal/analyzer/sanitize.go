package analyzer

import (
	"regexp"
	"strings"
)

var (
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
	codeFenceRe     = regexp.MustCompile("^```(?:json)?|```$")
)

// cleanJSONResponse repairs free-form model output into a best-effort
// JSON string. Transformations, in order: strip code fences, cut the
// text down to the first '{' through the last '}', drop commas that
// directly precede a closing brace or bracket, remove embedded
// newlines. The result is not guaranteed to parse; callers must treat
// a parse failure as a normal outcome.
func cleanJSONResponse(text string) string {
	text = strings.TrimSpace(text)
	text = codeFenceRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end >= start {
			text = text[start : end+1]
		}
	}

	text = trailingCommaRe.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, "\n", "")
	text = strings.ReplaceAll(text, "\r", "")

	return text
}
