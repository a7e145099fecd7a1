// Package textutil holds the filename sanitization shared by the media
// library and upload handling.
package textutil

import "strings"

// segmentReplacer replaces filesystem-unsafe characters in a path
// segment. Separators and spaces become dashes; other unsafe characters
// are removed.
var segmentReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	" ", "-",
	":", "-",
	"*", "",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeSegment makes a string safe to use as a single path segment.
// Empty results fall back to the provided fallback.
func SanitizeSegment(value, fallback string) string {
	value = strings.TrimSpace(value)
	value = segmentReplacer.Replace(value)
	value = strings.Trim(value, "-_.")
	if value == "" {
		return fallback
	}
	return value
}

// SanitizeBase prepares the base of an output filename: trimmed, with
// interior spaces collapsed to underscores.
func SanitizeBase(value, fallback string) string {
	value = strings.TrimSpace(value)
	value = strings.ReplaceAll(value, " ", "_")
	if value == "" {
		return fallback
	}
	return value
}
