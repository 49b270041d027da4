package utils

// Whitelist character checks for the credential form fields. Every
// character must belong to the allowed set; the empty string passes
// vacuously. Length is bounded elsewhere by the username column width.

// ValidateUsername allows letters, digits, '.' and '_'.
func ValidateUsername(s string) bool {
	for _, r := range s {
		if isAlphanumeric(r) || r == '.' || r == '_' {
			continue
		}
		return false
	}
	return true
}

// ValidatePassword allows letters, digits, '.', '!' and '_'.
func ValidatePassword(s string) bool {
	for _, r := range s {
		if isAlphanumeric(r) || r == '.' || r == '!' || r == '_' {
			continue
		}
		return false
	}
	return true
}

func isAlphanumeric(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
