package validators

import "strings"

// SanitizeString trims input and caps it at maxLen runes.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen <= 0 {
		return trimmed
	}
	runes := []rune(trimmed)
	if len(runes) > maxLen {
		return strings.TrimSpace(string(runes[:maxLen]))
	}
	return trimmed
}

// OptionalString returns nil for blank input.
func OptionalString(input string, maxLen int) *string {
	v := SanitizeString(input, maxLen)
	if v == "" {
		return nil
	}
	return &v
}
