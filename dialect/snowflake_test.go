package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflake_RewritesNativeArrayAndAggregationSyntax(t *testing.T) {
	ops := Presto()
	native := "SELECT " + ops.ArraySize(ops.ArrayConstruct("a", "b")) + ", " + ops.CollectList("x") + ", " + ops.BoolOr("y")

	out, err := Snowflake().Apply(native)
	require.NoError(t, err)

	assert.Contains(t, out, "ARRAY_SIZE(ARRAY_CONSTRUCT(a, b))")
	assert.Contains(t, out, "ARRAY_AGG(x)")
	assert.Contains(t, out, "BOOLOR_AGG(y)")
}

func TestSnowflake_RewritesArrayContainsToArraysOverlap(t *testing.T) {
	ops := Presto()
	native := "WHERE " + ops.ArrayContains("ids", "target_id")

	out, err := Snowflake().Apply(native)
	require.NoError(t, err)
	assert.Contains(t, out, "ARRAYS_OVERLAP(ids, ARRAY_CONSTRUCT(target_id))")
}

func TestSnowflake_RewritesLateralExplode(t *testing.T) {
	ops := Presto()
	native := "FROM src " + ops.LateralExplode("src.members", "value")

	out, err := Snowflake().Apply(native)
	require.NoError(t, err)
	assert.Contains(t, out, ", LATERAL FLATTEN(input => src.members) value")
}

func TestSnowflake_RewritesDDLAndCasts(t *testing.T) {
	ops := Presto()
	native := ops.CreateOrReplaceTable("db.t", []ColumnDef{{Name: "id", Type: "STRING"}}, "id") +
		"; " + ops.CastAs("x", "LONG") + "; " + ops.CastAs("y", "STRING")

	out, err := Snowflake().Apply(native)
	require.NoError(t, err)
	assert.NotContains(t, out, "USING DELTA")
	assert.Contains(t, out, "CLUSTER BY (id)")
	assert.Contains(t, out, "CAST(x AS NUMBER)")
	assert.Contains(t, out, "CAST(y AS VARCHAR)")
}

func TestDatabricks_IsIdentity(t *testing.T) {
	native := "SELECT " + Presto().ArraySize(Presto().ArrayConstruct("a")) + " USING DELTA"
	out, err := Databricks().Apply(native)
	require.NoError(t, err)
	assert.Equal(t, native, out)
}

func TestDialect_RequireRejectsUnsupportedOperator(t *testing.T) {
	restricted := Dialect{Name: "minimal", Ops: Presto(), Unsupport: map[Operator]bool{OpGroupingSets: true}}

	err := restricted.Require(OpGroupingSets)
	require.Error(t, err)
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, OpGroupingSets, renderErr.Op)

	assert.NoError(t, restricted.Require(OpArraySize))
}
