package plan

import "github.com/brightgraph/iduplan/dialect"

// graphColumns is the unification graph's row schema, shared by every
// graph_unify_loop_* table (iteration 0 through the converged final).
var graphColumns = []dialect.ColumnDef{
	{Name: "follower_id", Type: "STRING"},
	{Name: "follower_ns", Type: "INT"},
	{Name: "leader_id", Type: "STRING"},
	{Name: "leader_ns", Type: "INT"},
	{Name: "follower_first_seen_at", Type: "LONG"},
	{Name: "follower_last_seen_at", Type: "LONG"},
	{Name: "follower_source_table_ids", Type: "ARRAY<INT>"},
	{Name: "follower_last_processed_at", Type: "LONG"},
}

// buildCreateGraph renders stage 01: the G_0 schema declaration.
func buildCreateGraph(ops dialect.Operators, target Target, idName string) Stage {
	sql := ops.CreateOrReplaceTable(target.Qualify(graphTableName(idName, 0)), graphColumns, "follower_ns")
	return Stage{Name: "01_create_graph", Kind: KindDDL, Statements: []string{sql}}
}
