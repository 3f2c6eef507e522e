package utils

import (
	"regexp"
	"strings"
)

// TrimOrEmpty normalizes user input without turning nil into "nil".
func TrimOrEmpty(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var filenameRe = regexp.MustCompile(`[^a-zA-Z0-9\-_]+`)

// SafeFilenamePart sanitizes a string for use inside a download filename.
func SafeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	s = filenameRe.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "NA"
	}
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
