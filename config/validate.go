package config

import (
	"fmt"
	"strings"

	"github.com/brightgraph/iduplan/internal/canonid"
)

// Config is the validated, immutable form of a Document: referential
// invariants hold, table ordinals and key namespaces are assigned, and
// defaults are applied. The plan compiler consumes only Config, never
// Document, so the ordinal/namespace assignment happens exactly once.
type Config struct {
	Keys        map[string]Key
	KeyOrder    []string
	Tables      []SourceTable
	CanonicalID CanonicalID
	// Namespaces maps a key name to its 1-based namespace number, derived
	// from CanonicalID.MergeByKeys position.
	Namespaces   map[string]int
	MasterTables []MasterTable
}

// Validate checks the configuration's referential invariants and returns
// an immutable Config, or ErrSemantic describing every violation found.
func Validate(doc *Document) (*Config, error) {
	var problems []string

	keysByName := make(map[string]Key, len(doc.Keys))
	keyOrder := make([]string, 0, len(doc.Keys))
	for _, k := range doc.Keys {
		if _, dup := keysByName[k.Name]; dup {
			problems = append(problems, fmt.Sprintf("duplicate key name %q", k.Name))
			continue
		}
		keysByName[k.Name] = k
		keyOrder = append(keyOrder, k.Name)
	}

	tables := make([]SourceTable, len(doc.Tables))
	for i, tbl := range doc.Tables {
		tbl.TableID = i + 1
		if tbl.TimeColumn == "" {
			tbl.TimeColumn = "time"
		}
		for _, kc := range tbl.KeyColumns {
			if _, ok := keysByName[kc.Key]; !ok {
				problems = append(problems, fmt.Sprintf(
					"table %q: key_column %q references undeclared key %q", tbl.Table, kc.Column, kc.Key))
			}
		}
		tables[i] = tbl
	}

	cid := CanonicalID{Name: "unified_id"}
	if len(doc.CanonicalIDs) > 0 {
		cid = doc.CanonicalIDs[0]
		if cid.Name == "" {
			cid.Name = "unified_id"
		}
	}

	namespaces := make(map[string]int, len(cid.MergeByKeys))
	for i, keyName := range cid.MergeByKeys {
		if _, ok := keysByName[keyName]; !ok {
			problems = append(problems, fmt.Sprintf("merge_by_keys[%d] references undeclared key %q", i, keyName))
			continue
		}
		namespaces[keyName] = i + 1
	}

	if len(cid.KeyPriorities) > 0 && len(cid.KeyPriorities) != len(cid.MergeByKeys) {
		problems = append(problems, fmt.Sprintf(
			"key_priorities has %d entries but merge_by_keys has %d", len(cid.KeyPriorities), len(cid.MergeByKeys)))
	}

	if extra := len(cid.MergeByKeys) - canonid.ConfirmedMaskCount; extra > 0 && len(cid.KeyMasks) < len(cid.MergeByKeys) {
		problems = append(problems, fmt.Sprintf(
			"merge_by_keys has %d keys but only the first %d namespaces have a confirmed key_mask; "+
				"supply canonical_ids[0].key_masks with one entry per merge key (entry i is namespace i+1) "+
				"to cover the remaining %d namespace(s), or accept the derived-pattern defaults by "+
				"setting them explicitly", len(cid.MergeByKeys), canonid.ConfirmedMaskCount, extra))
	}

	tableNames := make(map[string]bool, len(tables))
	for _, t := range tables {
		tableNames[t.Table] = true
	}

	for _, mt := range doc.MasterTables {
		if mt.CanonicalID != "" && mt.CanonicalID != cid.Name {
			problems = append(problems, fmt.Sprintf(
				"master_table %q: canonical_id %q does not match the configured canonical id %q",
				mt.Name, mt.CanonicalID, cid.Name))
		}
		for _, attr := range mt.Attributes {
			for _, sc := range attr.SourceColumns {
				if !tableNames[sc.Table] {
					problems = append(problems, fmt.Sprintf(
						"master_table %q: attribute %q: source_column references undeclared table %q",
						mt.Name, attr.Name, sc.Table))
				}
			}
		}
	}

	if len(problems) > 0 {
		return nil, ErrSemantic.New(strings.Join(problems, "; "))
	}

	return &Config{
		Keys:         keysByName,
		KeyOrder:     keyOrder,
		Tables:       tables,
		CanonicalID:  cid,
		Namespaces:   namespaces,
		MasterTables: doc.MasterTables,
	}, nil
}

// IterationCount returns N: merge_iterations if set, otherwise
// clamp(2 + |merge_keys| + floor(|tables|/2), 2, 10).
func (c *Config) IterationCount() int {
	if c.CanonicalID.MergeIterations != nil {
		return *c.CanonicalID.MergeIterations
	}
	n := 2 + len(c.CanonicalID.MergeByKeys) + len(c.Tables)/2
	if n < 2 {
		n = 2
	}
	if n > 10 {
		n = 10
	}
	return n
}

// Priorities returns the priority weight vector, indexed by namespace-1,
// defaulting to [1,2,3,...] when canonical_ids[0].key_priorities is unset.
func (c *Config) Priorities() []int {
	if len(c.CanonicalID.KeyPriorities) > 0 {
		return c.CanonicalID.KeyPriorities
	}
	out := make([]int, len(c.CanonicalID.MergeByKeys))
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// KeyMasks returns the resolved key_mask string for every merge-key
// namespace, preferring an explicit canonical_ids[0].key_masks entry and
// falling back to canonid.DefaultKeyMasks.
func (c *Config) KeyMasks() []string {
	out := make([]string, len(c.CanonicalID.MergeByKeys))
	for i := range out {
		if i < len(c.CanonicalID.KeyMasks) {
			out[i] = c.CanonicalID.KeyMasks[i]
			continue
		}
		if i < len(canonid.DefaultKeyMasks) {
			out[i] = canonid.DefaultKeyMasks[i]
		}
	}
	return out
}

// NamespaceOf returns the 1-based namespace for a key name, and false if
// that key does not participate in merge_by_keys.
func (c *Config) NamespaceOf(keyName string) (int, bool) {
	ns, ok := c.Namespaces[keyName]
	return ns, ok
}
