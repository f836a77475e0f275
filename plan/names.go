package plan

import (
	"fmt"
	"strings"
)

// Target identifies the destination database/schema a plan's tables are
// qualified against (the CLI's --target-catalog/--target-schema flags).
// Table naming itself is independent of the target and lives in the
// unqualified name functions below; Target.Qualify applies the prefix.
type Target struct {
	Database string
	Schema   string
}

// Qualify prepends whichever of Database/Schema are set, in order.
func (t Target) Qualify(table string) string {
	parts := make([]string, 0, 3)
	if t.Database != "" {
		parts = append(parts, t.Database)
	}
	if t.Schema != "" {
		parts = append(parts, t.Schema)
	}
	parts = append(parts, table)
	return strings.Join(parts, ".")
}

func graphTableName(idName string, k int) string {
	return fmt.Sprintf("%s_graph_unify_loop_%d", idName, k)
}

func graphFinalLoopTableName(idName string) string { return idName + "_graph_unify_loop_final" }
func graphTableAlias(idName string) string         { return idName + "_graph" }
func lookupTableName(idName string) string         { return idName + "_lookup" }
func keysTableName(idName string) string           { return idName + "_keys" }
func tablesTableName(idName string) string         { return idName + "_tables" }
func sourceKeyStatsTableName(idName string) string { return idName + "_source_key_stats" }
func resultKeyStatsTableName(idName string) string { return idName + "_result_key_stats" }
func enrichedTableName(table string) string        { return "enriched_" + table }

const (
	unificationMetadataTable = "unification_metadata"
	filterLookupTable        = "filter_lookup"
	columnLookupTable        = "column_lookup"
)
