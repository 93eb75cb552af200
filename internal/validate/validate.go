package validate

import (
	"regexp"
	"strings"
)

var spaceRe = regexp.MustCompile(`\s+`)

// SanitizeText trims, drops NUL bytes and collapses runs of whitespace.
func SanitizeText(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
