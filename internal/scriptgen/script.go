package scriptgen

import (
	"strings"

	"podforge/internal/config"
	"podforge/internal/services/llm"
)

// Script is the document a provider hands to the pipeline.
type Script struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Segments    []Segment `json:"segments"`
}

// Segment is one speaker turn. Speaker is a role name; unrecognized
// speakers survive normalization untouched and fall back to the host
// voice downstream.
type Segment struct {
	Speaker string `json:"speaker"`
	Content string `json:"content"`
}

// ParseDocument interprets raw provider output. JSON documents decode into
// the segment shape; anything else becomes a flat-content document. The
// result may still be unusable (no segments, no content); callers check
// Usable before accepting it.
func ParseDocument(raw string) *Script {
	var script Script
	if err := llm.DecodeLLMJSON(raw, &script); err != nil {
		script = Script{Content: raw}
	}
	script.normalize()
	return &script
}

// ResolvedSegments returns the segments to synthesize: the explicit
// segment list when present, otherwise the flat content as a single
// narrator segment.
func (s *Script) ResolvedSegments() []Segment {
	if len(s.Segments) > 0 {
		return s.Segments
	}
	if s.Content != "" {
		return []Segment{{Speaker: config.RoleNarrator, Content: s.Content}}
	}
	return nil
}

// Usable reports whether the document contains anything to synthesize.
// All-empty segments still count as usable; skipping those is the
// pipeline's call, not the parser's.
func (s *Script) Usable() bool {
	return len(s.ResolvedSegments()) > 0
}

func (s *Script) normalize() {
	s.Title = strings.TrimSpace(s.Title)
	s.Description = strings.TrimSpace(s.Description)
	s.Content = strings.TrimSpace(s.Content)
	for i := range s.Segments {
		s.Segments[i].Speaker = normalizeSpeaker(s.Segments[i].Speaker)
		s.Segments[i].Content = strings.TrimSpace(s.Segments[i].Content)
	}
}

// normalizeSpeaker maps the speaker vocabulary models actually emit onto
// the role enum. Missing speakers default to the host.
func normalizeSpeaker(speaker string) string {
	trimmed := strings.TrimSpace(speaker)
	switch strings.ToLower(trimmed) {
	case "", "host", "主持人", "主持":
		return config.RoleHost
	case "guest", "嘉宾", "来宾":
		return config.RoleGuest
	case "narrator", "旁白", "解说":
		return config.RoleNarrator
	}
	return trimmed
}
