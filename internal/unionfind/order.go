package unionfind

import "strconv"

// Identifier is a (namespace, id) pair — one node of the unification graph.
// ns identifies the key kind (1 = first merge key, 2 = second, ...); id is
// the raw identifier value within that namespace.
type Identifier struct {
	NS int
	ID string
}

func (a Identifier) key() string {
	return strconv.Itoa(a.NS) + "|" + a.ID
}

// String renders the identifier as "ns|id", used in test fixtures and logs.
func (a Identifier) String() string {
	return a.key()
}

// Order is the total order on identifiers used to select a leader within a
// connected component: namespaces are compared by configured priority first,
// then identifiers within the same priority are compared lexicographically.
// A < B iff priority(A.NS) < priority(B.NS), or tied and A.ID < B.ID.
type Order struct {
	// Priority[i] is the priority weight of namespace i+1. A namespace not
	// present defaults to its own number (so priorities default to
	// [1,2,3,...] when unset, matching an identity priority vector).
	Priority []int
}

func (o Order) weight(ns int) int {
	idx := ns - 1
	if idx >= 0 && idx < len(o.Priority) {
		return o.Priority[idx]
	}
	return ns
}

// Less reports whether a sorts before b under the configured priority order.
func (o Order) Less(a, b Identifier) bool {
	wa, wb := o.weight(a.NS), o.weight(b.NS)
	if wa != wb {
		return wa < wb
	}
	return a.ID < b.ID
}

// Min returns whichever of a, b sorts first under o.
func (o Order) Min(a, b Identifier) Identifier {
	if o.Less(b, a) {
		return b
	}
	return a
}
