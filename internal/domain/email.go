package domain

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail reports whether raw looks like local@domain.tld.
// It is a presentation gate only and says nothing about deliverability.
func IsValidEmail(raw string) bool {
	return emailPattern.MatchString(raw)
}

// NormalizeEmail trims surrounding whitespace the way form inputs are read.
func NormalizeEmail(raw string) string {
	return strings.TrimSpace(raw)
}
