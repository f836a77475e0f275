package unionfind

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func runToFixedPoint(t *testing.T, g *Graph, maxIter int) *Graph {
	t.Helper()
	prev := g
	for i := 0; i < maxIter; i++ {
		next, _ := prev.Step(int64(i + 1))
		if next.Converged(prev) {
			return next
		}
		prev = next
	}
	t.Fatalf("did not converge within %d iterations", maxIter)
	return nil
}

// TestTwoKeyMergeOneHop exercises two rows sharing an email
// collapsing under one leader.
func TestTwoKeyMergeOneHop(t *testing.T) {
	order := Order{Priority: []int{1, 2}}
	g := NewGraph(order)

	email := Identifier{NS: 1, ID: "a@x"}
	phone111 := Identifier{NS: 2, ID: "111"}
	phone222 := Identifier{NS: 2, ID: "222"}

	// Row A: email=a@x, phone=111 -> intra-row leaders {email, phone111}
	g.Seed(email, email, 1, 1, 1)
	g.Seed(phone111, email, 1, 1, 1)
	// Row B: email=a@x, phone=222
	g.Seed(phone222, email, 2, 2, 1)

	final := runToFixedPoint(t, g, 10)

	t111, _ := final.Tuple(phone111)
	t222, _ := final.Tuple(phone222)
	require.Equal(t, email, t111.Leader)
	require.Equal(t, email, t222.Leader)
}

// TestThreeKeyTransitiveClosure exercises a chain of rows linked
// transitively through three distinct keys.
func TestThreeKeyTransitiveClosure(t *testing.T) {
	order := Order{Priority: []int{1, 2, 3}}
	g := NewGraph(order)

	e1 := Identifier{NS: 1, ID: "e1"}
	e2 := Identifier{NS: 1, ID: "e2"}
	p1 := Identifier{NS: 2, ID: "p1"}
	c1 := Identifier{NS: 3, ID: "c1"}

	g.Seed(e1, e1, 1, 1, 1)
	g.Seed(p1, e1, 1, 1, 1)

	g.Seed(p1, p1, 2, 2, 2)
	g.Seed(c1, p1, 2, 2, 2)

	g.Seed(c1, c1, 3, 3, 3)
	g.Seed(e2, c1, 3, 3, 3)

	final := runToFixedPoint(t, g, 10)

	leader := order.Min(e1, e2)
	for _, id := range []Identifier{e1, e2, p1, c1} {
		tup, ok := final.Tuple(id)
		require.True(t, ok)
		require.Equal(t, leader, tup.Leader, "identifier %v should collapse to %v", id, leader)
	}
}

// TestConvergenceEarlyExit checks that a single row with one key converges
// after exactly one iteration.
func TestConvergenceEarlyExit(t *testing.T) {
	order := Order{Priority: []int{1}}
	g := NewGraph(order)
	email := Identifier{NS: 1, ID: "only@x"}
	g.Seed(email, email, 1, 1, 1)

	g1, changed := g.Step(1)
	require.Zero(t, changed)
	require.True(t, g1.Converged(g))
}

// TestPriorityOverride checks that key_priorities can override the
// default namespace-order leader selection.
func TestPriorityOverride(t *testing.T) {
	order := Order{Priority: []int{2, 1}} // phone (ns=2) outranks email (ns=1)
	g := NewGraph(order)

	email := Identifier{NS: 1, ID: "a@x"}
	phone := Identifier{NS: 2, ID: "111"}

	g.Seed(email, email, 1, 1, 1)
	g.Seed(phone, email, 1, 1, 1)

	final := runToFixedPoint(t, g, 10)

	tup, _ := final.Tuple(email)
	require.Equal(t, phone, tup.Leader, "phone namespace has the lower priority weight so it becomes leader")
}

func TestStepIdempotentAtFixedPoint(t *testing.T) {
	order := Order{Priority: []int{1, 2}}
	g := NewGraph(order)
	email := Identifier{NS: 1, ID: "a@x"}
	phone := Identifier{NS: 2, ID: "111"}
	g.Seed(email, email, 1, 1, 1)
	g.Seed(phone, email, 1, 1, 1)

	fixed := runToFixedPoint(t, g, 10)
	again, changed := fixed.Step(99)
	require.Zero(t, changed, "iterating a converged graph must be a no-op")
	require.True(t, again.Converged(fixed))
}
