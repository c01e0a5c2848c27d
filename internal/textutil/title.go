package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TitleFromTopics derives an episode display title from a topic list.
// Topics are joined with a separator and title-cased for the given language
// tag; casing is a no-op for scripts without case, such as Chinese.
func TitleFromTopics(topics []string, lang string) string {
	cleaned := make([]string, 0, len(topics))
	for _, topic := range topics {
		if trimmed := strings.TrimSpace(topic); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return "Untitled Episode"
	}
	joined := strings.Join(cleaned, " · ")

	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.Und
	}
	return cases.Title(tag).String(joined)
}
