package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresto_ArrayAndHashPrimitives(t *testing.T) {
	ops := Presto()

	assert.Equal(t, "ARRAY(a, b)", ops.ArrayConstruct("a", "b"))
	assert.Equal(t, "SIZE(arr)", ops.ArraySize("arr"))
	assert.Equal(t, "SHA2(leader_id, 256)", ops.SHA256Hex("leader_id"))
	assert.Equal(t, "(a ^ b)", ops.Xor64("a", "b"))
	assert.Equal(t, "RTRIM(TRANSLATE(enc, '+/', '-_'), '=')", ops.URLSafeBase64("enc"))
}

func TestPresto_CreateOrReplaceTableIncludesClusterBy(t *testing.T) {
	ops := Presto()
	sql := ops.CreateOrReplaceTable("db.followers", []ColumnDef{
		{Name: "id", Type: "STRING"},
		{Name: "ns", Type: "INT"},
	}, "ns")

	assert.Contains(t, sql, "CREATE OR REPLACE TABLE db.followers")
	assert.Contains(t, sql, "USING DELTA")
	assert.Contains(t, sql, "CLUSTER BY (ns)")
}

func TestPresto_QuoteStringEscapesSingleQuotes(t *testing.T) {
	ops := Presto()
	assert.Equal(t, "'O''Brien'", ops.QuoteString("O'Brien"))
}

func TestPresto_QualifyTableWithAndWithoutDatabase(t *testing.T) {
	ops := Presto()
	assert.Equal(t, "events", ops.QualifyTable("", "events"))
	assert.Equal(t, "warehouse.events", ops.QualifyTable("warehouse", "events"))
}
