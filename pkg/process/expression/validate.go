package expression

import "regexp"

// Whitelist patterns for untrusted input. These are the security
// boundary between caller-supplied text and the expression engine:
// nothing that fails them may be evaluated or stored, with no
// trusted bypass path.
var (
	// keyPattern accepts identifier-shaped variable keys.
	keyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	// numberPattern accepts decimal literals with an optional fraction.
	numberPattern = regexp.MustCompile(`^[0-9]+(?:\.[0-9]+)?$`)

	// chainPattern accepts identifier/number terms joined by + - * /.
	chainPattern = regexp.MustCompile(`^(?:[A-Za-z_][A-Za-z0-9_]*|[0-9]+(?:\.[0-9]+)?)(?:\s*[+\-*/]\s*(?:[A-Za-z_][A-Za-z0-9_]*|[0-9]+(?:\.[0-9]+)?))*$`)
)

// IsSafeVariableKey reports whether key may be stored in a variable
// context. Valid keys are a letter or underscore followed by letters,
// digits, or underscores.
func IsSafeVariableKey(key string) bool {
	return key != "" && keyPattern.MatchString(key)
}

// IsSafeExpression reports whether an expression body (delimiters
// already stripped and trimmed) may be evaluated. Accepted shapes:
// a decimal number, a bare identifier, or a chain of identifier/number
// terms separated by the four basic arithmetic operators. Method
// calls, assignment, nested delimiters, and any character outside the
// grammar are rejected.
func IsSafeExpression(body string) bool {
	if body == "" {
		return false
	}
	return numberPattern.MatchString(body) ||
		keyPattern.MatchString(body) ||
		chainPattern.MatchString(body)
}
