package memgraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightgraph/iduplan/backend"
	"github.com/brightgraph/iduplan/internal/unionfind"
)

func TestSession_BareDDLCreatesEmptyGraph(t *testing.T) {
	s := New(unionfind.Order{})
	_, err := s.Execute(context.Background(), "CREATE OR REPLACE TABLE wh.cdp.unified_id_graph_unify_loop_0 (\n  follower_id STRING\n)\nUSING DELTA")
	require.NoError(t, err)

	g, ok := s.Graph("wh.cdp.unified_id_graph_unify_loop_0")
	require.True(t, ok)
	assert.Equal(t, 0, g.Len())
}

func TestSession_SeedThenDDLDoesNotClobberExistingGraph(t *testing.T) {
	s := New(unionfind.Order{})
	s.Seed("g0", unionfind.Tuple{
		Follower: unionfind.Identifier{NS: 1, ID: "a"},
		Leader:   unionfind.Identifier{NS: 1, ID: "a"},
	})

	_, err := s.Execute(context.Background(), "CREATE OR REPLACE TABLE g0 (\n  x STRING\n)")
	require.NoError(t, err)

	g, ok := s.Graph("g0")
	require.True(t, ok)
	assert.Equal(t, 1, g.Len())
}

func TestSession_LoopIterationStepsFromPrevGraph(t *testing.T) {
	s := New(unionfind.Order{})
	s.Now = func() int64 { return 42 }
	s.Seed("g0",
		unionfind.Tuple{Follower: unionfind.Identifier{NS: 1, ID: "a"}, Leader: unionfind.Identifier{NS: 1, ID: "a"}},
		unionfind.Tuple{Follower: unionfind.Identifier{NS: 2, ID: "p"}, Leader: unionfind.Identifier{NS: 1, ID: "a"}},
	)

	stmt := "CREATE OR REPLACE TABLE g1 AS\nWITH h AS (\n  SELECT *\n  FROM g0\n  UNION ALL\n  SELECT * FROM g0 a JOIN g0 b ON 1=1\n)\nSELECT * FROM h"
	n, err := s.Execute(context.Background(), stmt)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	g1, ok := s.Graph("g1")
	require.True(t, ok)
	assert.Equal(t, 2, g1.Len())
}

func TestSession_LoopIterationOnUnknownPrevReturnsNotFound(t *testing.T) {
	s := New(unionfind.Order{})
	stmt := "CREATE OR REPLACE TABLE g1 AS\nWITH h AS (\n  SELECT *\n  FROM missing\n  UNION ALL\n  SELECT 1\n)\nSELECT * FROM h"
	_, err := s.Execute(context.Background(), stmt)
	require.Error(t, err)
	assert.True(t, backend.ErrNotFound.Is(err))
}

func TestSession_AliasClonesSourceGraph(t *testing.T) {
	s := New(unionfind.Order{})
	s.Seed("g1", unionfind.Tuple{Follower: unionfind.Identifier{NS: 1, ID: "a"}, Leader: unionfind.Identifier{NS: 1, ID: "a"}})

	_, err := s.Execute(context.Background(), "CREATE OR REPLACE TABLE g_final AS SELECT * FROM g1")
	require.NoError(t, err)

	final, ok := s.Graph("g_final")
	require.True(t, ok)
	assert.Equal(t, 1, final.Len())
}

func TestSession_FetchScalarReturnsRecordedDelta(t *testing.T) {
	s := New(unionfind.Order{})
	s.Seed("g0", unionfind.Tuple{Follower: unionfind.Identifier{NS: 1, ID: "a"}, Leader: unionfind.Identifier{NS: 1, ID: "a"}})
	_, err := s.Execute(context.Background(), "CREATE OR REPLACE TABLE g1 AS\nWITH h AS (\n  SELECT *\n  FROM g0\n  UNION ALL\n  SELECT 1\n)\nSELECT * FROM h")
	require.NoError(t, err)

	query := "SELECT COUNT(*) FROM (\n  SELECT follower_ns, follower_id, leader_ns, leader_id FROM g1\n  EXCEPT\n  SELECT follower_ns, follower_id, leader_ns, leader_id FROM g0\n) diff"
	val, err := s.FetchScalar(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, "0", val)
}

func TestSession_ExecuteAfterCloseFails(t *testing.T) {
	s := New(unionfind.Order{})
	require.NoError(t, s.Close())
	_, err := s.Execute(context.Background(), "CREATE TABLE x (y STRING)")
	require.Error(t, err)
}
