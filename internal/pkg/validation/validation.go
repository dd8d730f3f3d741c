package validation

import (
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// phoneRe accepts E.164-style numbers with an optional leading plus.
var phoneRe = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

func IsValidPhone(phone string) bool {
	return phoneRe.MatchString(phone)
}

// LenBetween reports whether the trimmed value has [min, max] characters.
func LenBetween(s string, min, max int) bool {
	n := len(strings.TrimSpace(s))
	return n >= min && n <= max
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
