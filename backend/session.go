// Package backend defines the SQL execution contract the loop driver and
// renderer drive statements through, and classifies driver-reported
// failures into a common error taxonomy.
package backend

import "context"

// Session is a single logical connection to a warehouse (or an in-memory
// mirror of one). It has no intrinsic concurrency — callers serialize
// their own calls against a single-threaded cooperative model.
type Session interface {
	// Execute runs a statement, splitting compound input on ';' boundaries
	// (preserving quoted literals, see SplitStatements) where the
	// implementation's driver only accepts one statement per call, and
	// reports rows affected, or a classified BackendError.
	Execute(ctx context.Context, stmt string) (rowsAffected int64, err error)

	// FetchScalar runs a query expected to return exactly one row, one
	// column, and returns it as a string.
	FetchScalar(ctx context.Context, query string) (string, error)

	Close() error
}

// SplitStatements splits a compound SQL blob on ';' boundaries, preserving
// semicolons that appear inside single- or double-quoted string literals.
func SplitStatements(sql string) []string {
	var stmts []string
	var cur []rune
	var quote rune

	flush := func() {
		s := trimSpace(string(cur))
		if s != "" {
			stmts = append(stmts, s)
		}
		cur = cur[:0]
	}

	runes := []rune(sql)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case quote != 0:
			cur = append(cur, r)
			if r == quote {
				// a doubled quote char is an escaped literal quote, not the close
				if i+1 < len(runes) && runes[i+1] == quote {
					cur = append(cur, runes[i+1])
					i++
					continue
				}
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
			cur = append(cur, r)
		case r == ';':
			flush()
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return stmts
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
