// Package dialect defines the abstract algebra of SQL operators the plan
// compiler (package plan) renders against, and the rewrite layer that
// projects the resulting ANSI-ish SQL onto a concrete backend's surface
// syntax.
//
// The compiler always renders through the single native Operators
// implementation (Presto/Databricks-shaped); a
// target dialect is then a pure-function rewrite pass over that compiled
// text — never a second operator implementation — so the rewrite table is
// interchangeable per backend without touching the plan compiler.
package dialect

import "fmt"

// Operator identifies one abstract primitive of the operator set, used by
// Supports and by RenderError to name what a dialect cannot express.
type Operator string

const (
	OpArrayConstruct  Operator = "array_construct"
	OpArraySize       Operator = "array_size"
	OpArrayDistinct   Operator = "array_distinct"
	OpArrayFlatten    Operator = "array_flatten"
	OpArrayFilterNull Operator = "array_filter_non_null"
	OpArraySlice      Operator = "array_slice"
	OpArrayContains   Operator = "array_contains"
	OpPairRecord      Operator = "pair_record"
	OpMin             Operator = "min"
	OpMax             Operator = "max"
	OpCount           Operator = "count"
	OpCountIf         Operator = "count_if"
	OpBoolOr          Operator = "bool_or"
	OpCollectSet      Operator = "collect_set"
	OpCollectList     Operator = "collect_list"
	OpArgMax          Operator = "argmax"
	OpWindowMinOver   Operator = "window_min_over"
	OpLateralExplode  Operator = "lateral_explode"
	OpSHA256Hex       Operator = "sha256_hex"
	OpSubstring       Operator = "substring"
	OpHexToInt        Operator = "hex_to_int"
	OpIntToHex        Operator = "int_to_hex"
	OpXor64           Operator = "xor64"
	OpBase64Encode    Operator = "base64_encode"
	OpURLSafeBase64   Operator = "url_safe_base64"
	OpNowEpochSeconds Operator = "now_epoch_seconds"
	OpCreateOrReplace Operator = "create_or_replace_table"
	OpRenameTable     Operator = "rename_table"
	OpGroupingSets    Operator = "grouping_sets"
)

// ColumnDef is one column of a CREATE TABLE, used by CreateOrReplaceTable.
type ColumnDef struct {
	Name string
	Type string
}

// Operators is the capability set a rendering target must supply. The plan
// compiler calls only this interface; it never emits dialect-specific
// syntax directly.
type Operators interface {
	// Arrays
	ArrayConstruct(elems ...string) string
	ArraySize(arr string) string
	ArrayDistinct(arr string) string
	ArrayFlatten(arrOfArrays string) string
	ArrayFilterNonNull(arr string) string
	ArraySlice(arr string, length int) string
	ArrayContains(arr, elem string) string

	// Objects/records: a two-field pair (id, ns) embedded in arrays.
	PairRecord(id, ns string) string

	// Aggregation
	Min(expr string) string
	Max(expr string) string
	Count(expr string) string
	CountIf(pred string) string
	BoolOr(expr string) string
	CollectSet(expr string) string
	CollectList(expr string) string
	ArgMax(value, orderBy string) string

	// Windowing
	WindowMinOver(expr, partitionBy string) string

	// Lateral iteration: explode/flatten an array column into rows, binding
	// alias to each element.
	LateralExplode(arrExpr, alias string) string

	// Hashing / encoding
	SHA256Hex(expr string) string
	Substring(expr string, start, length int) string
	HexToInt(hexExpr string) string
	IntToHex(intExpr string, width int) string
	Xor64(a, b string) string
	Base64Encode(bytesExpr string) string
	URLSafeBase64(base64Expr string) string

	// Time
	NowEpochSeconds() string

	// DDL
	CreateOrReplaceTable(qualifiedName string, columns []ColumnDef, clusterBy string) string
	RenameTable(from, to string) string
	GroupingSets(groupings [][]string) string

	// Misc
	CastAs(expr, sqlType string) string
	QuoteString(s string) string
	QualifyTable(database, table string) string
}

// Dialect pairs a native Operators renderer with an optional rewrite pass
// that projects the rendered SQL onto a concrete backend's surface syntax,
// and the set of operators this target can represent.
type Dialect struct {
	Name      string
	Ops       Operators
	Rewrite   func(sql string) (string, error)
	Unsupport map[Operator]bool // operators this target cannot express
}

// Supports reports whether op can be rendered for this dialect.
func (d Dialect) Supports(op Operator) bool {
	return !d.Unsupport[op]
}

// RenderError is returned when a stage needs an operator the selected
// dialect cannot represent; it is fatal at compile time.
type RenderError struct {
	Dialect string
	Op      Operator
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("dialect: %s: cannot render operator %q", e.Dialect, e.Op)
}

// Require returns a RenderError if the dialect cannot express op, else nil.
func (d Dialect) Require(op Operator) error {
	if !d.Supports(op) {
		return &RenderError{Dialect: d.Name, Op: op}
	}
	return nil
}

// Apply renders sql through the dialect's rewrite pass, if any.
func (d Dialect) Apply(sql string) (string, error) {
	if d.Rewrite == nil {
		return sql, nil
	}
	return d.Rewrite(sql)
}
