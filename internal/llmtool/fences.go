package llmtool

import "strings"

// CleanFences strips a single surrounding markdown code fence, if present.
// Models asked for raw JSON or HTML still wrap output in ```json / ```html
// fences often enough that every parse site goes through this first.
func CleanFences(s string) string {
	s = strings.TrimSpace(s)
	for _, open := range []string{"```json", "```html", "```"} {
		if strings.HasPrefix(s, open) {
			s = strings.TrimSpace(s[len(open):])
			break
		}
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(s[:len(s)-3])
	}
	return s
}
