package plan

import (
	"fmt"
	"strings"

	"github.com/brightgraph/iduplan/config"
	"github.com/brightgraph/iduplan/dialect"
)

// validPredicate renders the valid(col, key) predicate:
//
//	(valid_regexp is none OR regexp_like(cast(col as string), valid_regexp))
//	AND (col is not null when null is in invalid_texts)
//	AND (cast(col as string) not in non_null_invalid_texts)
//
// TRUE is used when neither invalid_texts nor valid_regexp constrain col.
func validPredicate(ops dialect.Operators, col string, key config.Key) string {
	var conds []string

	if key.ValidRegexp != "" {
		conds = append(conds, fmt.Sprintf("REGEXP_LIKE(%s, %s)", ops.CastAs(col, "STRING"), ops.QuoteString(key.ValidRegexp)))
	}
	if key.HasNullSentinel() {
		conds = append(conds, fmt.Sprintf("%s IS NOT NULL", col))
	}
	if nonNull := key.NonNullInvalidTexts(); len(nonNull) > 0 {
		quoted := make([]string, len(nonNull))
		for i, v := range nonNull {
			quoted[i] = ops.QuoteString(v)
		}
		conds = append(conds, fmt.Sprintf("%s NOT IN (%s)", ops.CastAs(col, "STRING"), strings.Join(quoted, ", ")))
	}

	if len(conds) == 0 {
		return "TRUE"
	}
	return "(" + strings.Join(conds, " AND ") + ")"
}
