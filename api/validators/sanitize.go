package validators

import "strings"

// SanitizeString trims input and caps it at maxLen bytes.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}

// SanitizeSlug lower-cases a catalog slug and rejects anything outside
// [a-z0-9-].
func SanitizeSlug(input string) (string, bool) {
	slug := strings.ToLower(SanitizeString(input, 128))
	if slug == "" {
		return "", false
	}
	for _, r := range slug {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return "", false
		}
	}
	return slug, true
}
