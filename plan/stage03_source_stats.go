package plan

import (
	"fmt"
	"strings"

	"github.com/brightgraph/iduplan/config"
	"github.com/brightgraph/iduplan/dialect"
)

// buildSourceKeyStats renders stage 03: per-key distinct follower and
// leader counts over G_0 plus a wildcard "*" bucket, using grouping sets
// over the follower namespace so one query covers every key and the total
// in a single pass. The empty grouping set is the wildcard bucket:
// follower_ns is NULL there, so the labeling CASE falls through to '*'.
func buildSourceKeyStats(cfg *config.Config, ops dialect.Operators, dst Target) Stage {
	idName := cfg.CanonicalID.Name
	graph0 := dst.Qualify(graphTableName(idName, 0))

	var keyLabels []string
	for i, keyName := range cfg.CanonicalID.MergeByKeys {
		ns := i + 1
		keyLabels = append(keyLabels, fmt.Sprintf("WHEN %d THEN %s", ns, ops.QuoteString(keyName)))
	}

	sql := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS\n"+
			"SELECT CASE follower_ns %s ELSE '*' END AS key_name,\n"+
			"       %s AS distinct_followers,\n"+
			"       %s AS distinct_leaders\n"+
			"FROM %s\n"+
			"GROUP BY %s",
		dst.Qualify(sourceKeyStatsTableName(idName)),
		strings.Join(keyLabels, " "),
		ops.Count("DISTINCT follower_id"),
		ops.Count(fmt.Sprintf("DISTINCT CONCAT(%s, ':', leader_id)", ops.CastAs("leader_ns", "STRING"))),
		graph0,
		ops.GroupingSets([][]string{{"follower_ns"}, {}}),
	)
	return Stage{Name: "03_source_key_stats", Kind: KindStats, Statements: []string{sql}}
}
