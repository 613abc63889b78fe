package utils

import "strings"

// IsEmptyOrWhitespace checks if a string is empty or contains only whitespace
func IsEmptyOrWhitespace(s string) bool {
	return strings.TrimSpace(s) == ""
}

// SanitizeFilesystemName converts a string into a filesystem-friendly slug,
// used for export file names.
func SanitizeFilesystemName(input string) string {
	if IsEmptyOrWhitespace(input) {
		return ""
	}
	name := strings.ToLower(strings.TrimSpace(input))

	var builder strings.Builder
	builder.Grow(len(name))

	lastWasDash := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			builder.WriteRune(r)
			lastWasDash = false
		default:
			if !lastWasDash {
				builder.WriteRune('-')
				lastWasDash = true
			}
		}
	}

	sanitized := strings.Trim(builder.String(), "-_")
	if sanitized == "" {
		return "observation"
	}
	return sanitized
}

// SanitizeTableName converts a string into a SQL-friendly table identifier.
func SanitizeTableName(input string) string {
	name := strings.ToLower(strings.TrimSpace(input))

	var builder strings.Builder
	builder.Grow(len(name) + 2)
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			builder.WriteRune(r)
		default:
			builder.WriteRune('_')
		}
	}

	sanitized := strings.Trim(builder.String(), "_")
	if sanitized == "" {
		return DefaultPreferencesTable
	}
	if sanitized[0] >= '0' && sanitized[0] <= '9' {
		sanitized = "t_" + sanitized
	}
	return sanitized
}
