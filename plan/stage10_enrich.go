package plan

import (
	"fmt"
	"strings"

	"github.com/brightgraph/iduplan/config"
	"github.com/brightgraph/iduplan/dialect"
	"github.com/brightgraph/iduplan/internal/canonid"
)

// buildEnrichStages renders stage 10.* (one per source table): for each
// row, the first column (in merge-key order) whose value
// passes validation is looked up in the canonical-ID lookup table; a miss
// falls back to hashing that same column directly instead of trying the
// next key, and rows with no valid column get NULL (as do all rows of a
// table with no merge-key column).
func buildEnrichStages(cfg *config.Config, ops dialect.Operators, src, dst Target) ([]Stage, error) {
	var stages []Stage
	for _, table := range cfg.Tables {
		stage, err := buildEnrichForTable(cfg, ops, src, dst, table)
		if err != nil {
			return nil, err
		}
		if stage.Name != "" {
			stages = append(stages, stage)
		}
	}
	return stages, nil
}

func buildEnrichForTable(cfg *config.Config, ops dialect.Operators, src, dst Target, table config.SourceTable) (Stage, error) {
	idName := cfg.CanonicalID.Name
	lookup := dst.Qualify(lookupTableName(idName))

	var firstValidWhens []string
	for _, keyName := range cfg.CanonicalID.MergeByKeys {
		kc, ok := tableKeyColumn(table, keyName)
		if !ok {
			continue
		}
		ns, _ := cfg.NamespaceOf(keyName)
		key := cfg.Keys[keyName]
		pred := validPredicate(ops, kc.Column, key)
		firstValidWhens = append(firstValidWhens, fmt.Sprintf(
			"WHEN %s THEN %s", pred, ops.PairRecord(ops.CastAs(kc.Column, "STRING"), fmt.Sprintf("%d", ns))))
	}
	if len(firstValidWhens) == 0 {
		// No merge-key column: every row gets a NULL canonical ID.
		sql := fmt.Sprintf("CREATE OR REPLACE TABLE %s AS\nSELECT src.*, %s AS %s\nFROM %s src",
			dst.Qualify(enrichedTableName(table.Table)), ops.CastAs("NULL", "STRING"), idName,
			src.Qualify(table.QualifiedName()))
		return Stage{Name: "10_enrich_" + table.Table, Kind: KindEnrich, Statements: []string{sql}}, nil
	}
	firstValidExpr := fmt.Sprintf("CASE %s END", strings.Join(firstValidWhens, " "))

	masks := cfg.KeyMasks()
	var hashWhens []string
	for i := range cfg.CanonicalID.MergeByKeys {
		ns := i + 1
		mask, err := canonid.MaskForNamespace(masks, ns)
		if err != nil {
			return Stage{}, err
		}
		hashWhens = append(hashWhens, fmt.Sprintf("WHEN fv_ns = %d THEN %s", ns, canonicalIDExpr(ops, "fv_id", mask)))
	}
	hashFallback := fmt.Sprintf("CASE %s END", strings.Join(hashWhens, " "))

	sql := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS\n"+
			"WITH base AS (\n"+
			"  SELECT src.*, (%s).id AS fv_id, (%s).ns AS fv_ns\n"+
			"  FROM %s src\n"+
			")\n"+
			"SELECT base.*, COALESCE(lk.canonical_id, %s) AS %s\n"+
			"FROM base\n"+
			"LEFT JOIN %s lk ON lk.id = base.fv_id AND lk.id_key_type = base.fv_ns",
		dst.Qualify(enrichedTableName(table.Table)),
		firstValidExpr, firstValidExpr,
		src.Qualify(table.QualifiedName()),
		hashFallback, idName,
		lookup,
	)

	return Stage{Name: "10_enrich_" + table.Table, Kind: KindEnrich, Statements: []string{sql}}, nil
}
