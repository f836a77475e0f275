package plan

import (
	"fmt"
	"strings"

	"github.com/brightgraph/iduplan/config"
	"github.com/brightgraph/iduplan/dialect"
)

// buildExtractMerge renders stage 02: seed G_0 from every source table.
// For each row, every valid (id, ns) pair found on that row is
// both a follower and a leader candidate for every other valid pair on the
// same row (including itself) — the cross product is exploded into graph
// edges and then aggregated, which is the concrete form of "the first
// non-null element is the row's seed leader; every element is a follower"
// once every element has an equal chance of being promoted to leader by
// the loop's priority ordering in stage 04.
func buildExtractMerge(cfg *config.Config, ops dialect.Operators, src Target, dst Target) Stage {
	var unions []string
	for _, table := range cfg.Tables {
		if sub := buildTableSeedSelect(cfg, ops, src, table); sub != "" {
			unions = append(unions, sub)
		}
	}

	insert := fmt.Sprintf(
		"INSERT INTO %s\nSELECT\n  follower_id, follower_ns, leader_id, leader_ns,\n"+
			"  %s AS follower_first_seen_at,\n  %s AS follower_last_seen_at,\n"+
			"  %s AS follower_source_table_ids,\n  %s AS follower_last_processed_at\n"+
			"FROM (\n%s\n) seeded\nGROUP BY follower_id, follower_ns, leader_id, leader_ns",
		dst.Qualify(graphTableName(cfg.CanonicalID.Name, 0)),
		ops.Min("row_time"), ops.Max("row_time"),
		ops.ArrayDistinct(ops.CollectList("table_id")),
		ops.NowEpochSeconds(),
		strings.Join(unions, "\nUNION ALL\n"),
	)

	return Stage{Name: "02_extract_merge", Kind: KindSeed, Statements: []string{insert}}
}

func buildTableSeedSelect(cfg *config.Config, ops dialect.Operators, src Target, table config.SourceTable) string {
	var pairExprs []string
	for _, keyName := range cfg.CanonicalID.MergeByKeys {
		kc, ok := tableKeyColumn(table, keyName)
		if !ok {
			continue
		}
		ns, _ := cfg.NamespaceOf(keyName)
		key := cfg.Keys[keyName]
		pred := validPredicate(ops, kc.Column, key)
		idExpr := fmt.Sprintf("CASE WHEN %s THEN %s ELSE NULL END", pred, ops.CastAs(kc.Column, "STRING"))
		pairExprs = append(pairExprs, ops.PairRecord(idExpr, fmt.Sprintf("%d", ns)))
	}
	if len(pairExprs) == 0 {
		return ""
	}

	pairsArray := ops.ArrayConstruct(pairExprs...)
	pairsFiltered := fmt.Sprintf("FILTER(%s, x -> x.id IS NOT NULL)", pairsArray)

	return fmt.Sprintf(
		"SELECT follower.id AS follower_id, follower.ns AS follower_ns,\n"+
			"       leader.id AS leader_id, leader.ns AS leader_ns,\n"+
			"       src.%s AS row_time, %d AS table_id\n"+
			"FROM %s src\n"+
			"%s\n"+
			"%s",
		table.TimeColumn, table.TableID,
		src.Qualify(table.QualifiedName()),
		ops.LateralExplode(pairsFiltered, "follower"),
		ops.LateralExplode(pairsFiltered, "leader"),
	)
}

func tableKeyColumn(table config.SourceTable, keyName string) (config.KeyColumn, bool) {
	for _, kc := range table.KeyColumns {
		if kc.Key == keyName {
			return kc, true
		}
	}
	return config.KeyColumn{}, false
}
