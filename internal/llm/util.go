package llm

import "strings"

// CleanJSONBlock removes markdown fences and any chat preamble around a JSON payload.
// Models often wrap JSON in ```json blocks even when told not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// drop a language tag such as "json" on the opening fence line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			tag := text[:idx]
			if len(tag) < 20 && !strings.ContainsAny(tag, " {[") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	// "Here is the plan:\n[...]" keeps only the payload
	if start := strings.IndexAny(text, "[{"); start > 0 {
		closing := "]"
		if text[start] == '{' {
			closing = "}"
		}
		if end := strings.LastIndex(text, closing); end > start {
			return text[start : end+1]
		}
	}

	return text
}
