package textutil

import (
	"strings"
	"unicode"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. Letters outside ASCII, including CJK titles, pass
// through untouched. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// ArtifactSlug converts an episode title into the slug used in published
// audio filenames. Unsafe characters are dropped and whitespace runs become
// single underscores. Returns "episode" when nothing usable remains.
func ArtifactSlug(title string) string {
	cleaned := SanitizeFileName(title)
	if cleaned == "" {
		return "episode"
	}
	var b strings.Builder
	prevUnderscore := false
	for _, r := range cleaned {
		if unicode.IsSpace(r) {
			if !prevUnderscore {
				b.WriteByte('_')
				prevUnderscore = true
			}
			continue
		}
		b.WriteRune(r)
		prevUnderscore = false
	}
	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		return "episode"
	}
	return slug
}
