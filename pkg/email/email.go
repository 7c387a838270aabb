package email

import (
	"regexp"
	"strings"
	"unicode"
)

// pattern mirrors the address shape the sign-up forms accept: something@something.tld,
// no whitespace and exactly one separating '@' before the domain.
var pattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// MaxLength is the longest accepted address.
const MaxLength = 254

// Normalize trims and lower-cases an address; identity comparisons use this form.
func Normalize(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// IsValid reports whether addr has an acceptable shape.
func IsValid(addr string) bool {
	return addr != "" && len(addr) <= MaxLength && pattern.MatchString(addr)
}

// DeriveNameFromEmail builds a display name from the local part, used when an
// account is created without one (admin bootstrap).
func DeriveNameFromEmail(email string) string {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "Member"
	}
	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
