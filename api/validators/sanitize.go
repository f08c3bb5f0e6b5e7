package validators

import "strings"

// SanitizeString trims the input, collapses inner whitespace runs to a single
// space and truncates to maxLen runes when maxLen > 0.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.Join(strings.Fields(input), " ")
	if maxLen <= 0 {
		return cleaned
	}
	runes := []rune(cleaned)
	if len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return cleaned
}

// NormalizeEnum prepares client input for the case-sensitive enum parsers.
func NormalizeEnum(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
