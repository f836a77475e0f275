// Package unionfind is an in-memory mirror of the unification graph algebra
// defined by the plan compiler (see package plan) and executed for real as
// SQL against a warehouse.
//
// It is not the system of record — the warehouse is — but it backs the
// memgraph backend (package backend/memgraph) used by the loop tests and
// the property tests that check the fixed-point invariants of the
// specification against small, hand-built graphs without a database.
//
// The data structure is a disjoint-set over (namespace, id) pairs, adapted
// from a classic union-find: instead of union-by-rank (which picks an
// arbitrary root to keep trees balanced), Union always keeps the
// order-minimum identifier as root, because the SQL algebra's invariant is
// that a follower's leader is always the minimum identifier reachable under
// the configured priority order, not merely "some" representative.
package unionfind
