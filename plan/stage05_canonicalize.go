package plan

import (
	"fmt"
	"strings"

	"github.com/brightgraph/iduplan/config"
	"github.com/brightgraph/iduplan/dialect"
	"github.com/brightgraph/iduplan/internal/canonid"
)

// canonicalIDExpr renders the canonical-ID hash construction as a single SQL
// expression over a leader_id column: SHA-256, split into two 8-hex-char
// halves, each XORed (as a 32-bit integer) against the namespace's mask,
// the XORed halves plus the mask's 1-byte tail concatenated into 9 bytes,
// base64-encoded and URL-safe transformed.
func canonicalIDExpr(ops dialect.Operators, leaderIDExpr string, mask canonid.Mask) string {
	hash := ops.SHA256Hex(leaderIDExpr)
	hiHex := ops.Substring(hash, 1, 8)
	loHex := ops.Substring(hash, 9, 8)
	hiXor := ops.Xor64(ops.HexToInt(hiHex), fmt.Sprintf("%d", mask.LowHigh32))
	loXor := ops.Xor64(ops.HexToInt(loHex), fmt.Sprintf("%d", mask.LowLow32))
	combinedHex := fmt.Sprintf("CONCAT(%s, %s, '%02x')", ops.IntToHex(hiXor, 8), ops.IntToHex(loXor, 8), mask.High)
	return ops.URLSafeBase64(ops.Base64Encode(fmt.Sprintf("UNHEX(%s)", combinedHex)))
}

// buildCanonicalize renders stage 05: compute canonical_id per converged
// leader into a _tmp staging table, publish it as the lookup by
// drop-and-rename, and create the public <id>_graph copy of the converged
// loop table. The <id>_keys and <id>_tables dumps are not staged or
// renamed here; stage 30 creates them directly with CREATE OR REPLACE.
func buildCanonicalize(cfg *config.Config, ops dialect.Operators, dst Target) (Stage, error) {
	idName := cfg.CanonicalID.Name
	finalGraph := dst.Qualify(graphFinalLoopTableName(idName))
	lookupTmp := dst.Qualify(lookupTableName(idName) + "_tmp")
	lookup := dst.Qualify(lookupTableName(idName))

	masks := cfg.KeyMasks()
	var caseWhens []string
	for i := range cfg.CanonicalID.MergeByKeys {
		ns := i + 1
		mask, err := canonid.MaskForNamespace(masks, ns)
		if err != nil {
			return Stage{}, err
		}
		caseWhens = append(caseWhens, fmt.Sprintf("WHEN leader_ns = %d THEN %s", ns, canonicalIDExpr(ops, "leader_id", mask)))
	}
	canonicalIDCase := fmt.Sprintf("CASE %s END", strings.Join(caseWhens, " "))

	perLeaderWindow := "PARTITION BY leader_ns, leader_id"
	createLookup := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS\n"+
			"SELECT %s AS canonical_id,\n"+
			"       follower_id AS id, follower_ns AS id_key_type,\n"+
			"       %s OVER (%s) AS canonical_id_first_seen_at,\n"+
			"       %s OVER (%s) AS canonical_id_last_seen_at,\n"+
			"       follower_first_seen_at AS id_first_seen_at,\n"+
			"       follower_last_seen_at AS id_last_seen_at,\n"+
			"       follower_source_table_ids AS id_source_table_ids,\n"+
			"       follower_last_processed_at AS id_last_processed_at\n"+
			"FROM %s g\n"+
			"WHERE leader_ns IS NOT NULL",
		lookupTmp, canonicalIDCase,
		ops.Min("follower_first_seen_at"), perLeaderWindow,
		ops.Max("follower_last_seen_at"), perLeaderWindow,
		finalGraph,
	)

	dropOld := fmt.Sprintf("DROP TABLE IF EXISTS %s", lookup)
	rename := ops.RenameTable(lookupTmp, lookup)
	graphAlias := fmt.Sprintf("CREATE OR REPLACE TABLE %s AS SELECT * FROM %s",
		dst.Qualify(graphTableAlias(idName)), finalGraph)

	return Stage{
		Name:       "05_canonicalize",
		Kind:       KindCanonicalize,
		Statements: []string{createLookup, dropOld, rename, graphAlias},
	}, nil
}
