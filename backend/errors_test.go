package backend

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_WrapsUnknownErrorAsOther(t *testing.T) {
	raw := errors.New("driver exploded")
	classified := Classify(raw)
	assert.True(t, ErrOther.Is(classified))
}

func TestClassify_PassesThroughAlreadyKindedError(t *testing.T) {
	kinded := ErrTransient.New("connection reset")
	classified := Classify(kinded)
	assert.Same(t, kinded, classified)
	assert.True(t, ErrTransient.Is(classified))
	assert.False(t, ErrOther.Is(classified))
}

func TestClassify_NilIsNil(t *testing.T) {
	assert.Nil(t, Classify(nil))
}

func TestSplitStatements_SplitsOnSemicolons(t *testing.T) {
	stmts := SplitStatements("SELECT 1; SELECT 2;")
	assert.Equal(t, []string{"SELECT 1", "SELECT 2"}, stmts)
}

func TestSplitStatements_PreservesSemicolonInsideQuotedString(t *testing.T) {
	stmts := SplitStatements(`INSERT INTO t VALUES ('a;b'); SELECT 1;`)
	assert.Equal(t, []string{`INSERT INTO t VALUES ('a;b')`, "SELECT 1"}, stmts)
}

func TestSplitStatements_HandlesEscapedQuoteInsideLiteral(t *testing.T) {
	stmts := SplitStatements(`SELECT 'it''s; fine' AS x;`)
	assert.Equal(t, []string{`SELECT 'it''s; fine' AS x`}, stmts)
}

func TestSplitStatements_IgnoresTrailingWhitespace(t *testing.T) {
	stmts := SplitStatements("  SELECT 1 ;  \n\n  ")
	assert.Equal(t, []string{"SELECT 1"}, stmts)
}
