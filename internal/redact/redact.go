// Package redact strips sensitive material from strings before they reach
// logs or error responses. The patterns cover what this service actually
// handles: Postgres connection URLs, subscriber tokens, signing secrets,
// and SQL fragments surfaced by driver errors.
package redact

import "regexp"

// Redaction placeholders
const (
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	TokenPlaceholder      = "[REDACTED_TOKEN]"
	SQLPlaceholder        = "[REDACTED_SQL]"
	HostPlaceholder       = "[REDACTED_HOST]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// Order matters: connection URLs must be caught before the bare host
// pattern eats their tail.
var rules = []rule{
	{
		// Connection strings with inline credentials.
		regexp.MustCompile(`(?i)(postgres(ql)?|mysql|mongodb)://[^@\s]+@[^\s]+`),
		CredentialPlaceholder,
	},
	{
		// password=..., token=..., secret=... key/value fragments.
		regexp.MustCompile(`(?i)(password|passwd|token[_-]?secret|secret|api[_-]?key)\s*[=:]\s*[^\s'"&]{3,}`),
		CredentialPlaceholder,
	},
	{
		// Three-part JWTs (subscriber tokens).
		regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
		TokenPlaceholder,
	},
	{
		// SQL fragments leaked by driver errors.
		regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE)\s[\s\w,*()='"$.]+\b(FROM|INTO|SET|WHERE)\b[\s\w,*()='"$.]*`),
		SQLPlaceholder,
	},
	{
		// host:port endpoints.
		regexp.MustCompile(`\b(?:[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?\.)+[A-Za-z]{2,}:\d{1,5}\b`),
		HostPlaceholder,
	},
}

// String redacts sensitive fragments from the input.
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

// Error redacts an error's message. Returns "" for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
