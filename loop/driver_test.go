package loop

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightgraph/iduplan/backend"
	"github.com/brightgraph/iduplan/backend/memgraph"
	"github.com/brightgraph/iduplan/config"
	"github.com/brightgraph/iduplan/dialect"
	"github.com/brightgraph/iduplan/internal/unionfind"
	"github.com/brightgraph/iduplan/plan"
)

const twoKeyYAML = `
keys:
  - name: email
    invalid_texts: ["", null]
  - name: phone
tables:
  - table: events
    key_columns:
      - {column: email, key: email}
      - {column: phone, key: phone}
canonical_ids:
  - name: unified_id
    merge_by_keys: [email, phone]
`

func mustConfig(t *testing.T, yamlText string) *config.Config {
	t.Helper()
	doc, err := config.Parse([]byte(yamlText))
	require.NoError(t, err)
	cfg, err := config.Validate(doc)
	require.NoError(t, err)
	return cfg
}

func silentLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

// two rows sharing an email collapse phone=111 and
// phone=222 under leader email=a@x, converging in a single iteration.
func TestDriver_ConvergesInOneIterationForSingleHop(t *testing.T) {
	cfg := mustConfig(t, twoKeyYAML)
	target := plan.Target{Database: "wh", Schema: "cdp"}
	d := dialect.Databricks()

	p, err := plan.Compile(cfg, d, target, target)
	require.NoError(t, err)

	order := unionfind.Order{Priority: cfg.Priorities()}
	session := memgraph.New(order)
	session.Now = func() int64 { return 1000 }

	g0Name := target.Qualify("unified_id_graph_unify_loop_0")
	session.Seed(g0Name,
		unionfind.Tuple{
			Follower: unionfind.Identifier{NS: 1, ID: "a@x"}, Leader: unionfind.Identifier{NS: 1, ID: "a@x"},
			FirstSeenAt: 1, LastSeenAt: 1, SourceTableIDs: map[int]bool{1: true}, LastProcessedAt: 1000,
		},
		unionfind.Tuple{
			Follower: unionfind.Identifier{NS: 2, ID: "111"}, Leader: unionfind.Identifier{NS: 1, ID: "a@x"},
			FirstSeenAt: 1, LastSeenAt: 1, SourceTableIDs: map[int]bool{1: true}, LastProcessedAt: 1000,
		},
		unionfind.Tuple{
			Follower: unionfind.Identifier{NS: 2, ID: "222"}, Leader: unionfind.Identifier{NS: 1, ID: "a@x"},
			FirstSeenAt: 1, LastSeenAt: 1, SourceTableIDs: map[int]bool{1: true}, LastProcessedAt: 1000,
		},
	)

	driver := NewDriver(cfg, d, target, session, silentLogger())
	driver.IterationSleep = time.Millisecond
	driver.Now = session.Now

	res, err := driver.Run(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Equal(t, 1, res.Iterations)
	assert.False(t, res.ConvergenceExhausted)

	finalGraph, ok := session.Graph(target.Qualify("unified_id_graph_unify_loop_final"))
	require.True(t, ok)
	phone111, ok := finalGraph.Tuple(unionfind.Identifier{NS: 2, ID: "111"})
	require.True(t, ok)
	assert.Equal(t, unionfind.Identifier{NS: 1, ID: "a@x"}, phone111.Leader)
}

// neverConvergingSession always reports a nonzero convergence delta, so the
// loop runs to KMax regardless of what the graph actually does.
type neverConvergingSession struct{}

func (neverConvergingSession) Execute(context.Context, string) (int64, error) { return 0, nil }
func (neverConvergingSession) FetchScalar(context.Context, string) (string, error) {
	return "1", nil
}
func (neverConvergingSession) Close() error { return nil }

// ConvergenceExhausted is a non-fatal warning: the loop still finalizes
// and runs post-loop stages using the last computed graph, and Run reports
// it to the caller only after everything else succeeds.
func TestDriver_ConvergenceExhaustedIsNonFatal(t *testing.T) {
	cfg := mustConfig(t, twoKeyYAML)
	target := plan.Target{Database: "wh", Schema: "cdp"}
	d := dialect.Databricks()

	p, err := plan.Compile(cfg, d, target, target)
	require.NoError(t, err)

	driver := NewDriver(cfg, d, target, neverConvergingSession{}, silentLogger())
	driver.IterationSleep = time.Millisecond
	driver.KMax = 2

	res, err := driver.Run(context.Background(), p)
	require.Error(t, err)
	assert.True(t, backend.ErrConvergenceExhausted.Is(err))
	assert.True(t, res.ConvergenceExhausted)
	assert.False(t, res.Converged)
	assert.Equal(t, 2, res.Iterations)
}

// alwaysFailingSession fails every statement, simulating a backend outage.
type alwaysFailingSession struct{}

func (alwaysFailingSession) Execute(context.Context, string) (int64, error) {
	return 0, backend.ErrTransient.New("connection reset")
}
func (alwaysFailingSession) FetchScalar(context.Context, string) (string, error) {
	return "", backend.ErrTransient.New("connection reset")
}
func (alwaysFailingSession) Close() error { return nil }

func TestDriver_StopOnErrorAbortsOnFailingStatement(t *testing.T) {
	cfg := mustConfig(t, twoKeyYAML)
	target := plan.Target{Database: "wh", Schema: "cdp"}
	d := dialect.Databricks()

	p, err := plan.Compile(cfg, d, target, target)
	require.NoError(t, err)

	driver := NewDriver(cfg, d, target, alwaysFailingSession{}, silentLogger())
	driver.IterationSleep = time.Millisecond
	driver.ErrorPolicy = StopOnError

	_, err = driver.Run(context.Background(), p)
	require.Error(t, err)
}
