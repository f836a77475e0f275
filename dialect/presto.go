package dialect

import (
	"fmt"
	"strings"
)

// prestoOperators is the single native Operators implementation. It renders
// the ANSI-ish Presto/Databricks surface the compiler treats as its
// canonical output; every Dialect is built on top of this renderer, never a
// second implementation of Operators.
type prestoOperators struct{}

// Presto returns the native operator renderer.
func Presto() Operators { return prestoOperators{} }

func (prestoOperators) ArrayConstruct(elems ...string) string {
	return "ARRAY(" + strings.Join(elems, ", ") + ")"
}

func (prestoOperators) ArraySize(arr string) string { return fmt.Sprintf("SIZE(%s)", arr) }

func (prestoOperators) ArrayDistinct(arr string) string { return fmt.Sprintf("ARRAY_DISTINCT(%s)", arr) }

func (prestoOperators) ArrayFlatten(arrOfArrays string) string {
	return fmt.Sprintf("FLATTEN(%s)", arrOfArrays)
}

func (prestoOperators) ArrayFilterNonNull(arr string) string {
	return fmt.Sprintf("FILTER(%s, x -> x IS NOT NULL)", arr)
}

func (prestoOperators) ArraySlice(arr string, length int) string {
	return fmt.Sprintf("SLICE(%s, 1, %d)", arr, length)
}

func (prestoOperators) ArrayContains(arr, elem string) string {
	return fmt.Sprintf("ARRAY_CONTAINS(%s, %s)", arr, elem)
}

func (prestoOperators) PairRecord(id, ns string) string {
	return fmt.Sprintf("STRUCT(%s AS id, %s AS ns)", id, ns)
}

func (prestoOperators) Min(expr string) string { return fmt.Sprintf("MIN(%s)", expr) }
func (prestoOperators) Max(expr string) string { return fmt.Sprintf("MAX(%s)", expr) }
func (prestoOperators) Count(expr string) string { return fmt.Sprintf("COUNT(%s)", expr) }

func (prestoOperators) CountIf(pred string) string { return fmt.Sprintf("COUNT_IF(%s)", pred) }

func (prestoOperators) BoolOr(expr string) string { return fmt.Sprintf("BOOL_OR(%s)", expr) }

func (prestoOperators) CollectSet(expr string) string { return fmt.Sprintf("COLLECT_SET(%s)", expr) }

func (prestoOperators) CollectList(expr string) string { return fmt.Sprintf("COLLECT_LIST(%s)", expr) }

func (prestoOperators) ArgMax(value, orderBy string) string {
	return fmt.Sprintf("MAX_BY(%s, %s)", value, orderBy)
}

func (prestoOperators) WindowMinOver(expr, partitionBy string) string {
	return fmt.Sprintf("MIN(%s) OVER (PARTITION BY %s)", expr, partitionBy)
}

func (prestoOperators) LateralExplode(arrExpr, alias string) string {
	// The view alias is derived from the element alias so two explodes in
	// one FROM clause don't collide.
	return fmt.Sprintf("LATERAL VIEW EXPLODE(%s) %s_t AS %s", arrExpr, alias, alias)
}

func (prestoOperators) SHA256Hex(expr string) string { return fmt.Sprintf("SHA2(%s, 256)", expr) }

func (prestoOperators) Substring(expr string, start, length int) string {
	return fmt.Sprintf("SUBSTRING(%s, %d, %d)", expr, start, length)
}

func (prestoOperators) HexToInt(hexExpr string) string {
	return fmt.Sprintf("CONV(%s, 16, 10)", hexExpr)
}

func (prestoOperators) IntToHex(intExpr string, width int) string {
	return fmt.Sprintf("LPAD(CONV(%s, 10, 16), %d, '0')", intExpr, width)
}

func (prestoOperators) Xor64(a, b string) string { return fmt.Sprintf("(%s ^ %s)", a, b) }

func (prestoOperators) Base64Encode(bytesExpr string) string {
	return fmt.Sprintf("BASE64(%s)", bytesExpr)
}

func (prestoOperators) URLSafeBase64(base64Expr string) string {
	return fmt.Sprintf("RTRIM(TRANSLATE(%s, '+/', '-_'), '=')", base64Expr)
}

func (prestoOperators) NowEpochSeconds() string { return "UNIX_TIMESTAMP()" }

func (prestoOperators) CreateOrReplaceTable(qualifiedName string, columns []ColumnDef, clusterBy string) string {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = fmt.Sprintf("%s %s", c.Name, c.Type)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE OR REPLACE TABLE %s (\n  %s\n)\nUSING DELTA", qualifiedName, strings.Join(cols, ",\n  "))
	if clusterBy != "" {
		fmt.Fprintf(&b, "\nCLUSTER BY (%s)", clusterBy)
	}
	return b.String()
}

func (prestoOperators) RenameTable(from, to string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", from, to)
}

func (prestoOperators) GroupingSets(groupings [][]string) string {
	sets := make([]string, len(groupings))
	for i, g := range groupings {
		sets[i] = "(" + strings.Join(g, ", ") + ")"
	}
	return "GROUPING SETS (" + strings.Join(sets, ", ") + ")"
}

func (prestoOperators) CastAs(expr, sqlType string) string {
	return fmt.Sprintf("CAST(%s AS %s)", expr, sqlType)
}

func (prestoOperators) QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (prestoOperators) QualifyTable(database, table string) string {
	if database == "" {
		return table
	}
	return database + "." + table
}
