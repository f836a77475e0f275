// Package sqlbackend implements backend.Session over database/sql (see
// DESIGN.md for why no vendor-specific driver is bundled). Callers
// register whichever driver they need (Snowflake, Databricks/Presto
// JDBC-over-ODBC bridges, etc.) with database/sql themselves and hand this
// package a *sql.DB; it only supplies the Session contract and an error
// classification fallback.
package sqlbackend

import (
	"context"
	"database/sql"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/brightgraph/iduplan/backend"
)

// Session adapts a *sql.DB to backend.Session.
type Session struct {
	db     *sql.DB
	logger logrus.FieldLogger
}

// New wraps an already-open *sql.DB.
func New(db *sql.DB, logger logrus.FieldLogger) *Session {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Session{db: db, logger: logger}
}

// Open is a convenience that calls sql.Open(driverName, dsn) and wraps the
// result. driverName must already be registered (blank-imported) by the
// caller; this package does not import any driver itself.
func Open(driverName, dsn string, logger logrus.FieldLogger) (*Session, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, backend.ErrOther.New(err.Error())
	}
	return New(db, logger), nil
}

// Execute splits compound input on ';' boundaries (preserving quoted
// literals) and runs each piece, returning the summed rows affected.
func (s *Session) Execute(ctx context.Context, stmt string) (int64, error) {
	var total int64
	for _, part := range backend.SplitStatements(stmt) {
		res, err := s.db.ExecContext(ctx, part)
		if err != nil {
			return total, classify(err)
		}
		// RowsAffected is unsupported by some warehouse drivers for DDL; a
		// driver error there is not itself a statement failure.
		n, _ := res.RowsAffected()
		total += n
		s.logger.WithField("rows_affected", n).Debug("executed statement")
	}
	return total, nil
}

func (s *Session) FetchScalar(ctx context.Context, query string) (string, error) {
	row := s.db.QueryRowContext(ctx, query)
	var val sql.NullString
	if err := row.Scan(&val); err != nil {
		return "", classify(err)
	}
	return val.String, nil
}

func (s *Session) Close() error {
	return s.db.Close()
}

// classify maps a database/sql driver error to the backend error taxonomy
// using message-text heuristics -- this is the one place such matching
// happens, isolated behind backend.Session so nothing upstream string-
// matches driver errors itself. A driver that exposes typed errors should
// be classified before reaching here by a driver-specific wrapper.
func classify(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "does not exist", "not found", "no such table", "unknown table", "unknown database", "unknown schema", "unknown catalog"):
		return backend.ErrNotFound.New(err.Error())
	case containsAny(msg, "syntax error", "parse error", "parsing error"):
		return backend.ErrSyntax.New(err.Error())
	case containsAny(msg, "permission denied", "access denied", "not authorized", "insufficient privileges", "forbidden"):
		return backend.ErrPermission.New(err.Error())
	case containsAny(msg, "timeout", "connection reset", "throttl", "too many requests", "deadline exceeded", "temporarily unavailable", "try again"):
		return backend.ErrTransient.New(err.Error())
	default:
		return backend.ErrOther.New(err.Error())
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
