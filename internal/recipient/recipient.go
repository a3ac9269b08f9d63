// Package recipient classifies and normalizes recipient tokens.
package recipient

import (
	"regexp"
	"strings"
)

// Kind is the classification of a recipient token.
type Kind string

const (
	KindPhone   Kind = "phone"
	KindEmail   Kind = "email"
	KindUnknown Kind = "unknown"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Classify decides whether a token denotes a phone number, an email
// address, or an unrecognized name. Pure and total: malformed input
// classifies as KindUnknown.
func Classify(token string) Kind {
	if IsPhoneNumber(token) {
		return KindPhone
	}
	if IsEmailAddress(token) {
		return KindEmail
	}
	return KindUnknown
}

// IsPhoneNumber reports whether the token looks like a phone number
// after stripping common formatting characters.
func IsPhoneNumber(token string) bool {
	clean := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(token)

	if strings.HasPrefix(clean, "+") && len(clean) > 1 && isAllDigits(clean[1:]) {
		return true
	}
	return len(clean) >= 10 && isAllDigits(clean)
}

// IsEmailAddress reports whether the token matches a conventional
// local@domain.tld shape.
func IsEmailAddress(token string) bool {
	return emailPattern.MatchString(strings.TrimSpace(token))
}

// NormalizePhone formats a phone token to E.164. Numbers without a
// leading + are assumed North American: a 10-digit number gets a +1
// prefix and an 11-digit number starting with 1 gets a + prefix.
// Other national formats are returned best-effort.
func NormalizePhone(token string) string {
	var b strings.Builder
	for _, c := range token {
		if c == '+' || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		}
	}
	clean := b.String()

	if !strings.HasPrefix(clean, "+") {
		switch {
		case len(clean) == 10:
			clean = "+1" + clean
		case len(clean) == 11 && strings.HasPrefix(clean, "1"):
			clean = "+" + clean
		}
	}
	return clean
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
