package unionfind

// Tuple is one row of the unification graph relation G_k: it asserts
// that the follower identifier currently maps to the leader identifier.
type Tuple struct {
	Follower        Identifier
	Leader          Identifier
	FirstSeenAt     int64
	LastSeenAt      int64
	SourceTableIDs  map[int]bool
	LastProcessedAt int64
}

func (t Tuple) cloneSourceIDs() map[int]bool {
	out := make(map[int]bool, len(t.SourceTableIDs))
	for k := range t.SourceTableIDs {
		out[k] = true
	}
	return out
}

// Graph is an in-memory snapshot of one iteration of the unification graph,
// keyed by follower: exactly one leader per follower in the (follower,
// leader) projection.
type Graph struct {
	Order Order
	rows  map[string]Tuple
}

// NewGraph creates an empty graph ordered by order.
func NewGraph(order Order) *Graph {
	return &Graph{Order: order, rows: make(map[string]Tuple)}
}

// Upsert merges t into the graph: the leader is the order-minimum of the
// existing and the new leader, seen-at timestamps take MIN/MAX, source
// table ids union (deduplicated by construction, since the set is keyed),
// and follower_last_processed_at takes the later value.
func (g *Graph) Upsert(t Tuple) {
	key := t.Follower.key()
	existing, ok := g.rows[key]
	if !ok {
		g.rows[key] = t
		return
	}

	merged := existing
	merged.Leader = g.Order.Min(existing.Leader, t.Leader)
	if t.FirstSeenAt < merged.FirstSeenAt {
		merged.FirstSeenAt = t.FirstSeenAt
	}
	if t.LastSeenAt > merged.LastSeenAt {
		merged.LastSeenAt = t.LastSeenAt
	}
	if t.LastProcessedAt > merged.LastProcessedAt {
		merged.LastProcessedAt = t.LastProcessedAt
	}
	ids := merged.cloneSourceIDs()
	for id := range t.SourceTableIDs {
		ids[id] = true
	}
	merged.SourceTableIDs = ids
	g.rows[key] = merged
}

// Seed records a single source-row contribution to the graph: follower
// maps to leader, having been observed at time seenAt from table tableID.
func (g *Graph) Seed(follower, leader Identifier, seenAt, now int64, tableID int) {
	g.Upsert(Tuple{
		Follower:        follower,
		Leader:          leader,
		FirstSeenAt:     seenAt,
		LastSeenAt:      seenAt,
		SourceTableIDs:  map[int]bool{tableID: true},
		LastProcessedAt: now,
	})
}

// Followers returns every follower currently in the graph.
func (g *Graph) Followers() []Identifier {
	out := make([]Identifier, 0, len(g.rows))
	for _, t := range g.rows {
		out = append(out, t.Follower)
	}
	return out
}

// Tuple returns the current row for follower, if any.
func (g *Graph) Tuple(follower Identifier) (Tuple, bool) {
	t, ok := g.rows[follower.key()]
	return t, ok
}

// Len reports the number of follower rows.
func (g *Graph) Len() int { return len(g.rows) }

// Leaders returns the distinct set of current leaders in the graph.
func (g *Graph) Leaders() []Identifier {
	seen := make(map[Identifier]bool)
	for _, t := range g.rows {
		seen[t.Leader] = true
	}
	out := make([]Identifier, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	return out
}

// Step computes G_k from g = G_{k-1}:
//  1. two-hop relation: for each follower row, chase one hop upstream
//     through any row whose follower equals this row's leader, and one hop
//     downstream to the smallest follower whose leader is this row's
//     follower, discovering a potentially smaller leader;
//  2. promotion: replace the leader with the minimum of the current leader
//     and those one-hop candidates, under g.Order;
//  3. aggregate: timestamps and source-table ids merge per Upsert.
//
// Repeated application converges to the fixed point where no follower's
// leader changes, since Step is monotone (a follower's leader only ever
// decreases under Order).
func (g *Graph) Step(now int64) (next *Graph, changed int) {
	next = NewGraph(g.Order)

	downstream := make(map[string]Identifier)
	for _, t := range g.rows {
		k := t.Leader.key()
		if cur, ok := downstream[k]; !ok || g.Order.Less(t.Follower, cur) {
			downstream[k] = t.Follower
		}
	}

	for _, t := range g.rows {
		candidate := t.Leader
		if upstream, ok := g.rows[t.Leader.key()]; ok {
			candidate = g.Order.Min(candidate, upstream.Leader)
		}
		if down, ok := downstream[t.Follower.key()]; ok {
			candidate = g.Order.Min(candidate, down)
		}

		row := t
		if g.Order.Less(candidate, t.Leader) {
			row.Leader = candidate
			row.LastProcessedAt = now
			changed++
		}
		next.Upsert(row)
	}

	return next, changed
}

// Converged reports whether g and prev agree on the (follower, leader)
// projection -- the same comparison the convergence query makes.
func (g *Graph) Converged(prev *Graph) bool {
	if len(g.rows) != len(prev.rows) {
		return false
	}
	for k, t := range g.rows {
		pt, ok := prev.rows[k]
		if !ok || pt.Leader != t.Leader {
			return false
		}
	}
	return true
}
