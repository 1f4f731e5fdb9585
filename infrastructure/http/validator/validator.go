package validator

import (
	"net/mail"
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

func ValidateEmail(email string) bool {
	if email == "" {
		return false
	}

	// net/mail accepts display names and quoted locals; the regex narrows it
	// to a bare address.
	_, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}

	return emailRegex.MatchString(strings.ToLower(email))
}

func ValidateRequired(value string) bool {
	return strings.TrimSpace(value) != ""
}

// ValidateJWTShape only checks for three dot separated segments.
func ValidateJWTShape(token string) bool {
	if token == "" {
		return false
	}

	parts := strings.Split(token, ".")
	return len(parts) == 3
}

func ValidateMaxLength(value string, max int) bool {
	return len([]rune(value)) <= max
}
