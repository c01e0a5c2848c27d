package scriptgen

import (
	"fmt"
	"strings"

	"podforge/internal/config"
)

// charsPerMinute sizes the requested script body. Calibrated for spoken
// Mandarin; close enough for other languages to bound episode length.
const charsPerMinute = 150

const scriptSystemPrompt = `You are a podcast script writer. Respond with a single JSON object in this exact shape:
{
  "title": "episode title",
  "description": "one-paragraph episode summary",
  "segments": [
    {"speaker": "host|guest|narrator", "content": "spoken text"}
  ]
}
Use only the speaker roles host, guest, and narrator. Write titles, descriptions, and all spoken content in the requested language. Respond with JSON only, no commentary.`

func buildUserPrompt(req Request) string {
	minutes := req.TargetMinutes
	if minutes <= 0 {
		minutes = 15
	}
	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = "zh-CN"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write a %d-minute podcast script in %s covering: %s.\n",
		minutes, language, joinTopics(req.Topics, language))

	switch strings.ToLower(strings.TrimSpace(req.Style)) {
	case config.StyleLecture:
		b.WriteString("Format it as a single narrator explaining the material step by step.\n")
	case config.StyleQA:
		b.WriteString("Format it as question-and-answer turns: the host asks, the guest answers in depth.\n")
	default:
		b.WriteString("Format it as a natural conversation between a host and a guest, with the host steering.\n")
	}

	b.WriteString("Keep the language plain and include concrete examples.\n")
	fmt.Fprintf(&b, "Aim for roughly %d characters of spoken content in total.", minutes*charsPerMinute)
	return b.String()
}

func joinTopics(topics []string, language string) string {
	cleaned := make([]string, 0, len(topics))
	for _, topic := range topics {
		if trimmed := strings.TrimSpace(topic); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	separator := ", "
	if strings.HasPrefix(strings.ToLower(language), "zh") {
		separator = "、"
	}
	return strings.Join(cleaned, separator)
}
