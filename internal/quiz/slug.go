package quiz

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives the URL-safe slug for a module name: lowercase, runs of
// non-alphanumerics collapsed to "-", leading/trailing dashes trimmed.
func Slugify(name string) string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}
