package utils

import (
	"regexp"
	"strings"
)

var (
	controlRe = regexp.MustCompile(`[\p{Cc}\p{Cf}\p{Co}\p{Cs}]`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// SanitizeString removes control characters and collapses whitespace.
// Model output and user text both pass through here before storage.
func SanitizeString(s string) string {
	result := controlRe.ReplaceAllString(s, " ")
	result = spaceRe.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// Truncate truncates a string to the specified length and adds ellipsis if needed
func Truncate(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return "..."
	}
	return string(runes[:maxLength-3]) + "..."
}

// MaskToken hides a secret for logging, keeping only the last 4
// characters visible
func MaskToken(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}
