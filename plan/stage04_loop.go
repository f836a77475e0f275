package plan

import (
	"fmt"
	"strings"

	"github.com/brightgraph/iduplan/config"
	"github.com/brightgraph/iduplan/dialect"
)

// priorityCaseExpr renders the (priority(ns)) half of the leader order as a
// CASE expression over nsCol. Namespaces beyond the configured priority
// vector fall back to the namespace number itself, generalizing the
// identity-map default hardcoded for namespaces 1-3 to any ns.
func priorityCaseExpr(cfg *config.Config, nsCol string) string {
	priorities := cfg.Priorities()
	var whens []string
	for i, p := range priorities {
		whens = append(whens, fmt.Sprintf("WHEN %d THEN %d", i+1, p))
	}
	return fmt.Sprintf("CASE %s %s ELSE %s END", nsCol, strings.Join(whens, " "), nsCol)
}

// BuildIterationStage renders one loop iteration (stage 04.k). It is called
// both by Compile, for k = 1..N, and by loop.Driver at runtime to
// synthesize iterations beyond the emitted count — the same AST builder in
// both places.
func BuildIterationStage(cfg *config.Config, ops dialect.Operators, dst Target, k int) Stage {
	idName := cfg.CanonicalID.Name
	prev := dst.Qualify(graphTableName(idName, k-1))
	cur := dst.Qualify(graphTableName(idName, k))

	priority := priorityCaseExpr(cfg, "leader_ns")
	sortKey := fmt.Sprintf("CONCAT(LPAD(CAST(%s AS STRING), 10, '0'), '#', leader_id)", priority)
	minSortKey := ops.WindowMinOver(sortKey, "follower_ns, follower_id")

	// A row is "modified" (and gets a fresh follower_last_processed_at) when
	// its promoted leader differs from its own prior self, i.e. it wasn't
	// already a self-edge before promotion narrowed it to one row.
	sql := fmt.Sprintf(`CREATE OR REPLACE TABLE %s AS
WITH h AS (
  SELECT follower_id, follower_ns, leader_id, leader_ns,
         follower_first_seen_at, follower_last_seen_at,
         follower_source_table_ids, follower_last_processed_at
  FROM %s
  UNION ALL
  SELECT a.follower_id, a.follower_ns, b.leader_id, b.leader_ns,
         a.follower_first_seen_at, a.follower_last_seen_at,
         a.follower_source_table_ids, a.follower_last_processed_at
  FROM %s a
  JOIN %s b ON a.leader_id = b.follower_id AND a.leader_ns = b.follower_ns
),
ranked AS (
  SELECT h.*, %s AS sort_key, %s AS min_sort_key
  FROM h
),
promoted AS (
  SELECT follower_id, follower_ns,
         leader_id AS new_leader_id, leader_ns AS new_leader_ns,
         follower_first_seen_at, follower_last_seen_at,
         follower_source_table_ids,
         CASE WHEN leader_id <> follower_id OR leader_ns <> follower_ns
              THEN %s ELSE follower_last_processed_at END AS follower_last_processed_at
  FROM ranked
  WHERE sort_key = min_sort_key
)
SELECT follower_id, follower_ns,
       new_leader_id AS leader_id, new_leader_ns AS leader_ns,
       %s AS follower_first_seen_at,
       %s AS follower_last_seen_at,
       %s AS follower_source_table_ids,
       %s AS follower_last_processed_at
FROM promoted
GROUP BY follower_id, follower_ns, new_leader_id, new_leader_ns`,
		cur, prev, prev, prev,
		sortKey, minSortKey,
		ops.NowEpochSeconds(),
		ops.Min("follower_first_seen_at"), ops.Max("follower_last_seen_at"),
		ops.ArrayDistinct(ops.ArrayFlatten(ops.CollectList("follower_source_table_ids"))),
		ops.Max("follower_last_processed_at"),
	)

	return Stage{
		Name:       fmt.Sprintf("04_unify_loop_iteration_%02d", k),
		Order:      k,
		Kind:       KindLoopIteration,
		Statements: []string{sql},
	}
}

// ConvergenceQuery renders the convergence check: the EXCEPT-based
// set-difference count between G_k and G_{k-1}'s (follower, leader)
// projection.
func ConvergenceQuery(cfg *config.Config, dst Target, k int) string {
	idName := cfg.CanonicalID.Name
	cur := dst.Qualify(graphTableName(idName, k))
	prev := dst.Qualify(graphTableName(idName, k-1))
	proj := "follower_ns, follower_id, leader_ns, leader_id"
	return fmt.Sprintf(
		"SELECT COUNT(*) FROM (\n  SELECT %s FROM %s\n  EXCEPT\n  SELECT %s FROM %s\n) diff",
		proj, cur, proj, prev,
	)
}

// FinalAliasStatement renders the terminal alias:
// <id>_graph_unify_loop_final <- <id>_graph_unify_loop_<k>.
func FinalAliasStatement(dst Target, idName string, k int) string {
	from := dst.Qualify(graphTableName(idName, k))
	to := dst.Qualify(graphFinalLoopTableName(idName))
	return fmt.Sprintf("CREATE OR REPLACE TABLE %s AS SELECT * FROM %s", to, from)
}
