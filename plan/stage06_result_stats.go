package plan

import (
	"fmt"
	"strings"

	"github.com/brightgraph/iduplan/config"
	"github.com/brightgraph/iduplan/dialect"
)

// buildResultKeyStats renders stage 06 over the canonicalized lookup:
// distinct_with_<key> counts the leaders whose follower set contains at
// least one follower in that key's namespace, and each key gets a
// followers-per-leader histogram serialized as "count:frequency,…".
func buildResultKeyStats(cfg *config.Config, ops dialect.Operators, dst Target) Stage {
	idName := cfg.CanonicalID.Name
	lookup := dst.Qualify(lookupTableName(idName))

	perLeaderCols := []string{ops.Count("*") + " AS cnt_all"}
	outCols := []string{"(SELECT " + ops.Count("*") + " FROM per_leader) AS distinct_canonical_ids"}
	for i, keyName := range cfg.CanonicalID.MergeByKeys {
		ns := i + 1
		perLeaderCols = append(perLeaderCols, fmt.Sprintf(
			"%s AS cnt_%s", ops.CountIf(fmt.Sprintf("id_key_type = %d", ns)), keyName))
		outCols = append(outCols,
			fmt.Sprintf("(SELECT %s FROM per_leader) AS distinct_with_%s",
				ops.CountIf(fmt.Sprintf("cnt_%s > 0", keyName)), keyName),
			fmt.Sprintf(
				"(SELECT CONCAT_WS(',', %s)\n"+
					"        FROM (SELECT cnt_%s AS cnt, %s AS freq FROM per_leader WHERE cnt_%s > 0 GROUP BY cnt_%s ORDER BY cnt_%s) f\n"+
					"       ) AS %s_histogram",
				ops.CollectList(fmt.Sprintf("CONCAT(%s, ':', %s)",
					ops.CastAs("cnt", "STRING"), ops.CastAs("freq", "STRING"))),
				keyName, ops.Count("*"), keyName, keyName, keyName, keyName),
		)
	}

	sql := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS\n"+
			"WITH per_leader AS (\n"+
			"  SELECT canonical_id,\n"+
			"         %s\n"+
			"  FROM %s\n"+
			"  GROUP BY canonical_id\n"+
			")\n"+
			"SELECT %s",
		dst.Qualify(resultKeyStatsTableName(idName)),
		strings.Join(perLeaderCols, ",\n         "),
		lookup,
		strings.Join(outCols, ",\n       "),
	)
	return Stage{Name: "06_result_key_stats", Kind: KindStats, Statements: []string{sql}}
}
