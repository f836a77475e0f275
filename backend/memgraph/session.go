// Package memgraph implements an in-memory backend.Session backed by
// internal/unionfind: a mirror of the unification graph algebra that lets
// loop.Driver run the graph lifecycle (stage 01 through the convergence
// check and final alias) with no warehouse at all.
//
// It is a test harness for the loop algebra (the CLI does not use it), not a
// general SQL executor: reproducing full relational semantics for an
// arbitrary warehouse statement (connection handling against any
// particular warehouse is explicitly out of scope) is a different problem
// entirely. It recognizes only the shapes plan.BuildIterationStage/buildCreateGraph/
// FinalAliasStatement emit, and the ConvergenceQuery count, by table name;
// every other statement (seeding, canonicalization, enrichment, master
// tables, stats, metadata) is accepted and recorded as executed without its
// SQL being evaluated (a CREATE TABLE among them only registers an empty
// graph under its name, or clones the source of an AS SELECT * FROM
// alias), since those stages'
// correctness is asserted directly against the plan package's rendered SQL,
// not by re-deriving it here.
package memgraph

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/brightgraph/iduplan/backend"
	"github.com/brightgraph/iduplan/internal/unionfind"
)

// defaultSnapshotCacheSize bounds how many per-table graph snapshots a
// Session retains at once. A loop with KMax iterations creates one new
// snapshot per iteration; without a bound, a long run retains every
// intermediate snapshot for the life of the session even though only the
// latest per table is ever read again.
const defaultSnapshotCacheSize = 64

var (
	createTableRE  = regexp.MustCompile(`(?is)CREATE\s+(?:OR\s+REPLACE\s+)?TABLE\s+([A-Za-z0-9_.]+)`)
	asSelectStarRE = regexp.MustCompile(`(?is)AS\s+SELECT\s+\*\s+FROM\s+([A-Za-z0-9_.]+)\s*$`)
	loopBodyRE     = regexp.MustCompile(`(?is)FROM\s+([A-Za-z0-9_.]+)\s*\n\s*UNION ALL`)
	convergenceRE  = regexp.MustCompile(`(?is)FROM\s+([A-Za-z0-9_.]+)\s*\n\s*EXCEPT\s*\n\s*SELECT\s.*?\sFROM\s+([A-Za-z0-9_.]+)`)
)

// Session is the in-memory graph-lifecycle backend. The zero value is not
// usable; construct with New.
type Session struct {
	order unionfind.Order

	mu       sync.Mutex
	graphs   *lru.Cache[string, *unionfind.Graph]
	deltas   map[string]int // CREATE target table name -> rows changed vs. its predecessor
	executed []string
	closed   bool

	// Now returns Unix epoch seconds; overridable in tests.
	Now func() int64
}

// New creates a Session ordered by order (the configured priority/id
// order), retaining up to defaultSnapshotCacheSize graph snapshots at
// once. Use NewWithCacheSize to override the bound.
func New(order unionfind.Order) *Session {
	s, err := NewWithCacheSize(order, defaultSnapshotCacheSize)
	if err != nil {
		// defaultSnapshotCacheSize is a positive constant; lru.New only
		// rejects size <= 0.
		panic(err)
	}
	return s
}

// NewWithCacheSize is New with an explicit snapshot-retention bound.
func NewWithCacheSize(order unionfind.Order, cacheSize int) (*Session, error) {
	graphs, err := lru.New[string, *unionfind.Graph](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("memgraph: creating snapshot cache: %w", err)
	}
	return &Session{
		order:  order,
		graphs: graphs,
		deltas: make(map[string]int),
		Now:    func() int64 { return 0 },
	}, nil
}

// Seed directly populates the named graph table (typically the
// "<id>_graph_unify_loop_0" table stage01 creates) with tuples, standing in
// for stage 02's source-table extraction: memgraph has no source rows to
// explode, so callers seed G_0 directly.
func (s *Session) Seed(table string, tuples ...unionfind.Tuple) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.graphs.Get(table)
	if !ok {
		g = unionfind.NewGraph(s.order)
		s.graphs.Add(table, g)
	}
	for _, t := range tuples {
		g.Upsert(t)
	}
}

// Graph returns the current in-memory graph stored under table, if any.
func (s *Session) Graph(table string) (*unionfind.Graph, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graphs.Get(table)
}

func (s *Session) Execute(_ context.Context, stmt string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, backend.ErrOther.New("memgraph: session closed")
	}
	s.executed = append(s.executed, stmt)

	target := createTableRE.FindStringSubmatch(stmt)
	if target == nil {
		return 0, nil
	}
	tbl := target[1]

	if alias := asSelectStarRE.FindStringSubmatch(stmt); alias != nil {
		src, ok := s.graphs.Get(alias[1])
		if !ok {
			return 0, backend.ErrNotFound.New(fmt.Sprintf("memgraph: table %s not found", alias[1]))
		}
		s.graphs.Add(tbl, cloneGraph(src, s.order))
		return int64(src.Len()), nil
	}

	if prevMatch := loopBodyRE.FindStringSubmatch(stmt); prevMatch != nil {
		prev, ok := s.graphs.Get(prevMatch[1])
		if !ok {
			return 0, backend.ErrNotFound.New(fmt.Sprintf("memgraph: table %s not found", prevMatch[1]))
		}
		next, changed := prev.Step(s.Now())
		s.graphs.Add(tbl, next)
		s.deltas[tbl] = changed
		return int64(next.Len()), nil
	}

	// Any other CREATE TABLE (e.g. stage01's G_0 schema): create an empty
	// graph under the target name unless one is already stored there.
	if _, ok := s.graphs.Get(tbl); !ok {
		s.graphs.Add(tbl, unionfind.NewGraph(s.order))
	}
	return 0, nil
}

func (s *Session) FetchScalar(_ context.Context, query string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", backend.ErrOther.New("memgraph: session closed")
	}

	if m := convergenceRE.FindStringSubmatch(query); m != nil {
		cur := m[1]
		delta, ok := s.deltas[cur]
		if !ok {
			return "", backend.ErrNotFound.New(fmt.Sprintf("memgraph: no recorded delta for %s", cur))
		}
		return strconv.Itoa(delta), nil
	}

	return "", backend.ErrOther.New("memgraph: cannot evaluate query: " + query)
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Executed returns every statement handed to Execute, in order, for test
// assertions.
func (s *Session) Executed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.executed))
	copy(out, s.executed)
	return out
}

func cloneGraph(src *unionfind.Graph, order unionfind.Order) *unionfind.Graph {
	dst := unionfind.NewGraph(order)
	for _, f := range src.Followers() {
		t, _ := src.Tuple(f)
		dst.Upsert(t)
	}
	return dst
}
