package textutil_test

import (
	"testing"

	"podforge/internal/textutil"
)

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"passthrough", "Morning Brief", "Morning Brief"},
		{"slashes", "a/b\\c", "a-b-c"},
		{"colon and asterisk", "ep: 1 *live*", "ep- 1 -live-"},
		{"dropped characters", `what? "quoted" <tag> |pipe|`, "what quoted tag pipe"},
		{"cjk preserved", "科技新闻：今日要点", "科技新闻：今日要点"},
		{"whitespace trimmed", "  padded  ", "padded"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := textutil.SanitizeFileName(tc.in); got != tc.want {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestArtifactSlug(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"spaces become underscores", "Morning Tech Brief", "Morning_Tech_Brief"},
		{"runs collapse", "a   b\tc", "a_b_c"},
		{"cjk preserved", "科技新闻 今日要点", "科技新闻_今日要点"},
		{"unsafe stripped", "ep?<>|", "ep"},
		{"empty falls back", "", "episode"},
		{"only unsafe falls back", `?"<>|`, "episode"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := textutil.ArtifactSlug(tc.in); got != tc.want {
				t.Fatalf("ArtifactSlug(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTitleFromTopics(t *testing.T) {
	if got := textutil.TitleFromTopics([]string{"daily tech news", "ai"}, "en-US"); got != "Daily Tech News · Ai" {
		t.Fatalf("unexpected title: %q", got)
	}
	if got := textutil.TitleFromTopics([]string{"科技新闻"}, "zh-CN"); got != "科技新闻" {
		t.Fatalf("expected cjk passthrough, got %q", got)
	}
	if got := textutil.TitleFromTopics([]string{" ", ""}, "en"); got != "Untitled Episode" {
		t.Fatalf("expected fallback title, got %q", got)
	}
	if got := textutil.TitleFromTopics([]string{"space"}, "not a tag"); got != "Space" {
		t.Fatalf("expected casing with und fallback, got %q", got)
	}
}
