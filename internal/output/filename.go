// Package output writes extracted stories to disk: a single HTML file, a
// zip archive of per-chapter pages, and the cover image. Files are
// written to a .part temp name and renamed into place.
package output

import (
	"regexp"
	"strings"
	"unicode"
)

var reUnderscore = regexp.MustCompile(`_+`)

// Sanitize turns a story title into a safe file base name.
func Sanitize(s string) string {
	s = strings.ToLower(s)

	repl := []string{
		"•", "_",
		"-", "_",
		"—", "_",
		"–", "_",
		"/", "_",
		"\\", "_",
		".", "_",
		" ", "_",
		"(", "",
		")", "",
	}
	for i := 0; i < len(repl); i += 2 {
		s = strings.ReplaceAll(s, repl[i], repl[i+1])
	}

	clean := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			clean = append(clean, r)
		}
	}
	s = string(clean)

	s = reUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")

	if s == "" {
		s = "story"
	}
	return s
}
