package config

import errorkind "gopkg.in/src-d/go-errors.v1"

// Error kinds for the config model: compile-time errors are terminal and
// never guessed at. Callers test for a class of failure with Kind.Is(err)
// instead of matching on message text.
var (
	// ErrSyntax wraps a YAML decoding failure (malformed document).
	ErrSyntax = errorkind.NewKind("config: syntax error: %s")

	// ErrSemantic wraps one or more referential-integrity violations found
	// by Validate.
	ErrSemantic = errorkind.NewKind("config: semantic error: %s")
)
