package models

import "strings"

const keyNamespace = "rl"

// SanitizeKeySegment escapes delimiter characters in rate limit key segments
// so an identifier containing ':' cannot address a neighbouring bucket.
//
// Example: "user:admin" becomes "user_admin".
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// Key builds the bucket key rl:<action>:<scope>:<identifier>.
func Key(action Action, subject Subject) string {
	return strings.Join([]string{
		keyNamespace,
		SanitizeKeySegment(string(action)),
		SanitizeKeySegment(string(subject.Scope)),
		SanitizeKeySegment(subject.ID),
	}, ":")
}
