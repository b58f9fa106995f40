// Package redact provides utilities for redacting sensitive information from
// strings before they are logged or returned in error responses. It targets
// the secrets this service actually handles: database connection strings,
// LLM provider API keys, JWTs, credentials, file paths, and SQL fragments
// that drivers embed in their error messages.
package redact

import "regexp"

// Constants for redaction placeholders
const (
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
)

// rule pairs a pattern with its placeholder. Rules apply in order; earlier
// rules must not produce text a later rule would re-match.
type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

var rules = []rule{
	// Database connection strings with inline credentials
	{regexp.MustCompile(`(?i)(postgres(ql)?|mysql|sqlite|db|database)://[^@\s]+@`), RedactedCredentialPlaceholder},

	// Passwords in key=value or key: value form
	{regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`), RedactedCredentialPlaceholder},

	// JWTs (three base64url segments, first two starting with the JSON header marker)
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), "[REDACTED_JWT]"},

	// Provider API keys: Google AIza-prefixed keys and OpenAI sk- keys
	{regexp.MustCompile(`\bAIza[A-Za-z0-9_-]{10,}`), RedactedKeyPlaceholder},
	{regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{10,}`), RedactedKeyPlaceholder},

	// Generic labelled keys, tokens, and secrets
	{regexp.MustCompile(`(?i)(api[_-]?key|token|secret|key|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`), RedactedKeyPlaceholder},

	// Email addresses
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "[REDACTED_EMAIL]"},

	// File paths (unix and windows); sqlite errors include the database path
	{regexp.MustCompile(`(/[\w.-]+){2,}`), RedactedPathPlaceholder},
	{regexp.MustCompile(`[A-Za-z]:\\[^\\]+(\\[^\\]+)+`), RedactedPathPlaceholder},

	// SQL fragments surfaced by driver errors
	{regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP)[\s\w,*()]+(?:FROM|INTO|SET|TABLE|WHERE)(?:[\s\w,*()='"$?]+)?`), "[REDACTED_SQL]"},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
// A nil error yields an empty string.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
