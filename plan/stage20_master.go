package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/brightgraph/iduplan/config"
	"github.com/brightgraph/iduplan/dialect"
)

// buildMasterStages renders stage 20.* (one per master table).
func buildMasterStages(cfg *config.Config, ops dialect.Operators, dst Target) []Stage {
	var stages []Stage
	for _, mt := range cfg.MasterTables {
		stages = append(stages, buildMasterTable(cfg, ops, dst, mt))
	}
	return stages
}

func buildMasterTable(cfg *config.Config, ops dialect.Operators, dst Target, mt config.MasterTable) Stage {
	idName := cfg.CanonicalID.Name
	lookup := dst.Qualify(lookupTableName(idName))

	var attrCols []string
	for _, attr := range mt.Attributes {
		attrCols = append(attrCols, fmt.Sprintf("%s AS %s", buildMasterAttributeExpr(ops, dst, idName, attr), attr.Name))
	}

	sql := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS\n"+
			"SELECT ids.canonical_id,\n       %s\n"+
			"FROM (SELECT DISTINCT canonical_id FROM %s) ids\n"+
			"WHERE EXISTS (SELECT 1 FROM %s lk WHERE lk.canonical_id = ids.canonical_id)",
		dst.Qualify(mt.Name), strings.Join(attrCols, ",\n       "), lookup, lookup,
	)
	return Stage{Name: "20_master_" + mt.Name, Kind: KindMaster, Statements: []string{sql}}
}

// buildMasterAttributeExpr renders one correlated attribute subquery (on
// the outer `ids.canonical_id` alias).
func buildMasterAttributeExpr(ops dialect.Operators, dst Target, idName string, attr config.MasterAttribute) string {
	tiers := groupSourceColumnsByPriority(attr.SourceColumns)

	if attr.ArrayElements == nil {
		var tierExprs []string
		for _, tier := range tiers {
			tierExprs = append(tierExprs, fmt.Sprintf(
				"(SELECT %s FROM (%s) t WHERE value IS NOT NULL)",
				ops.ArgMax("value", "order_value"), unionSourceColumns(dst, idName, tier)))
		}
		return fmt.Sprintf("COALESCE(%s)", strings.Join(tierExprs, ", "))
	}

	n := *attr.ArrayElements
	var tierArrays []string
	for _, tier := range tiers {
		tierArrays = append(tierArrays, fmt.Sprintf(
			"(SELECT %s FROM (SELECT value FROM (%s) t WHERE value IS NOT NULL ORDER BY order_value DESC LIMIT %d) ranked)",
			ops.CollectList("value"), unionSourceColumns(dst, idName, tier), n))
	}
	concatenated := ops.ArrayFlatten(ops.ArrayConstruct(tierArrays...))
	return ops.ArraySlice(concatenated, n)
}

// unionSourceColumns renders the UNION ALL of (value, order_value) pairs
// contributed by one priority tier's source columns, correlated to the
// outer canonical_id.
func unionSourceColumns(dst Target, idName string, tier []config.MasterSourceColumn) string {
	var parts []string
	for _, sc := range tier {
		orderBy := sc.OrderBy
		if orderBy == "" {
			orderBy = "time"
		}
		parts = append(parts, fmt.Sprintf(
			"SELECT e.%s AS value, e.%s AS order_value FROM %s e WHERE e.%s = ids.canonical_id",
			sc.Column, orderBy, dst.Qualify(enrichedTableName(sc.Table)), idName))
	}
	return strings.Join(parts, "\nUNION ALL\n")
}

func groupSourceColumnsByPriority(cols []config.MasterSourceColumn) [][]config.MasterSourceColumn {
	byPriority := make(map[int][]config.MasterSourceColumn)
	for _, c := range cols {
		byPriority[c.Priority] = append(byPriority[c.Priority], c)
	}
	priorities := make([]int, 0, len(byPriority))
	for p := range byPriority {
		priorities = append(priorities, p)
	}
	sort.Ints(priorities)

	tiers := make([][]config.MasterSourceColumn, len(priorities))
	for i, p := range priorities {
		tiers[i] = byPriority[p]
	}
	return tiers
}
