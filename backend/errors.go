package backend

import (
	errorkind "gopkg.in/src-d/go-errors.v1"
)

// The error taxonomy the loop driver branches on. A backend
// implementation's job is to classify whatever its underlying driver
// returns into one of these kinds; everything the rest of the pipeline
// does (abort, continue, surface to the operator) dispatches off Is(), never
// off driver-specific error types or message text.
var (
	// ErrNotFound: a referenced table, schema, or catalog doesn't exist.
	ErrNotFound = errorkind.NewKind("object not found: %s")

	// ErrSyntax: the warehouse rejected a statement as malformed — always a
	// plan-compiler bug, never retryable.
	ErrSyntax = errorkind.NewKind("statement rejected: %s")

	// ErrPermission: the session's principal lacks privilege for the
	// statement (missing GRANT, cross-catalog access denied, etc).
	ErrPermission = errorkind.NewKind("permission denied: %s")

	// ErrTransient: a warehouse-side condition that may clear on retry —
	// throttling, a dropped connection, a concurrent-modification conflict.
	ErrTransient = errorkind.NewKind("transient failure: %s")

	// ErrOther: classified as none of the above; treated like ErrTransient
	// is not safe, so the driver stops on it by default.
	ErrOther = errorkind.NewKind("backend error: %s")

	// ErrConvergenceExhausted: the unification loop ran K_max iterations
	// without the convergence query reporting zero delta.
	ErrConvergenceExhausted = errorkind.NewKind("unification did not converge within %d iterations")

	// ErrAborted: the run was stopped deliberately — ErrorPolicy selected
	// StopOnError and a statement of a non-loop stage failed. (A loop
	// iteration failure returns its classified error, and a context
	// canceled during the inter-iteration sleep returns the context's error.)
	ErrAborted = errorkind.NewKind("run aborted: %s")
)

// Classify maps a raw driver error to a backend error kind. Backends
// implement their own driver-specific classification and call this only as
// a fallback; it recognizes errors that already carry one of the kinds
// above (e.g. bubbled up from a nested call) and otherwise wraps as ErrOther.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case ErrNotFound.Is(err), ErrSyntax.Is(err), ErrPermission.Is(err),
		ErrTransient.Is(err), ErrOther.Is(err), ErrAborted.Is(err), ErrConvergenceExhausted.Is(err):
		return err
	default:
		return ErrOther.New(err)
	}
}
