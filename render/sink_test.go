package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightgraph/iduplan/plan"
)

func TestSortStages_NumericPrefixBeforeUnprefixed(t *testing.T) {
	stages := []plan.Stage{
		{Name: "notes"},
		{Name: "10_enrich_events"},
		{Name: "02_extract_merge"},
		{Name: "01_create_graph"},
	}
	sorted := SortStages(stages)
	var names []string
	for _, s := range sorted {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"01_create_graph", "02_extract_merge", "10_enrich_events", "notes"}, names)
}

func TestFileSinkRenderThenReadDirRoundTrips(t *testing.T) {
	dir := t.TempDir()
	stages := []plan.Stage{
		{Name: "01_create_graph", Kind: plan.KindDDL, Statements: []string{"CREATE TABLE g (x STRING)"}},
		{Name: "04_unify_loop_iteration_01", Kind: plan.KindLoopIteration, Statements: []string{"CREATE OR REPLACE TABLE g1 AS SELECT 1"}},
		{Name: "04_unify_loop_iteration_02", Kind: plan.KindLoopIteration, Statements: []string{"CREATE OR REPLACE TABLE g2 AS SELECT 1"}},
	}

	sink := FileSink{Dir: dir}
	require.NoError(t, sink.Render(context.Background(), stages))

	for _, s := range stages {
		_, err := os.Stat(filepath.Join(dir, s.Name+".sql"))
		require.NoError(t, err)
	}

	read, err := ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, read, 3)

	assert.Equal(t, "01_create_graph", read[0].Name)
	assert.Equal(t, plan.KindDDL, read[0].Kind)
	assert.Equal(t, []string{"CREATE TABLE g (x STRING)"}, read[0].Statements)

	assert.Equal(t, "04_unify_loop_iteration_01", read[1].Name)
	assert.Equal(t, plan.KindLoopIteration, read[1].Kind)

	assert.Equal(t, "04_unify_loop_iteration_02", read[2].Name)
	assert.Equal(t, plan.KindLoopIteration, read[2].Kind)
}

type fakeSession struct {
	executed []string
}

func (f *fakeSession) Execute(_ context.Context, stmt string) (int64, error) {
	f.executed = append(f.executed, stmt)
	return 1, nil
}
func (f *fakeSession) FetchScalar(context.Context, string) (string, error) { return "0", nil }
func (f *fakeSession) Close() error                                        { return nil }

func TestExecSink_ExecutesEveryStatementInOrder(t *testing.T) {
	stages := []plan.Stage{
		{Name: "02_b", Statements: []string{"stmt-b"}},
		{Name: "01_a", Statements: []string{"stmt-a1", "stmt-a2"}},
	}
	session := &fakeSession{}
	sink := ExecSink{Session: session}
	require.NoError(t, sink.Render(context.Background(), stages))
	assert.Equal(t, []string{"stmt-a1", "stmt-a2", "stmt-b"}, session.executed)
}
