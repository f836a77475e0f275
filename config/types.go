// Package config implements the declarative unification configuration:
// parsing (via gopkg.in/yaml.v2) and validation of the document that
// drives the plan compiler.
package config

// Key is a named identifier kind (e.g. "email").
//
// InvalidTexts entries double as the sentinel list: a literal YAML `null`
// entry unmarshals to a nil pointer and matches SQL NULL; any other entry is
// a non-null value string the validation predicate rejects.
type Key struct {
	Name         string    `yaml:"name"`
	InvalidTexts []*string `yaml:"invalid_texts,omitempty"`
	ValidRegexp  string    `yaml:"valid_regexp,omitempty"`
}

// NonNullInvalidTexts returns the non-null entries of InvalidTexts.
func (k Key) NonNullInvalidTexts() []string {
	out := make([]string, 0, len(k.InvalidTexts))
	for _, v := range k.InvalidTexts {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// HasNullSentinel reports whether a literal `null` appears in InvalidTexts,
// meaning SQL NULL values are themselves considered invalid for this key.
func (k Key) HasNullSentinel() bool {
	for _, v := range k.InvalidTexts {
		if v == nil {
			return true
		}
	}
	return false
}

// KeyColumn binds a source column to a declared Key.
type KeyColumn struct {
	Column string `yaml:"column"`
	Key    string `yaml:"key"`
}

// SourceTable is a source table contributing identifiers to unification.
// TableID is assigned by Validate in declaration order, starting at 1; it
// is not part of the YAML surface.
type SourceTable struct {
	Database   string      `yaml:"database,omitempty"`
	Table      string      `yaml:"table"`
	KeyColumns []KeyColumn `yaml:"key_columns"`
	TimeColumn string      `yaml:"time_column,omitempty"`

	TableID int `yaml:"-"`
}

// QualifiedName returns "database.table" when Database is set, else "table".
func (t SourceTable) QualifiedName() string {
	if t.Database == "" {
		return t.Table
	}
	return t.Database + "." + t.Table
}

// CanonicalID configures the canonical-ID column produced by unification.
// MergeByKeys orders the keys that participate in unification; position
// defines the namespace number (ns = index+1).
type CanonicalID struct {
	Name            string   `yaml:"name,omitempty"`
	MergeByKeys     []string `yaml:"merge_by_keys,omitempty"`
	MergeIterations *int     `yaml:"merge_iterations,omitempty"`
	KeyPriorities   []int    `yaml:"key_priorities,omitempty"`

	// KeyMasks is an optional override list of 18-hex-char key masks,
	// positional (entry i is namespace i+1), required to cover every
	// namespace when MergeByKeys has more than canonid.ConfirmedMaskCount
	// entries (the masks for the tail namespaces are documented as
	// "derived pattern" rather than confirmed -- see DESIGN.md). Namespaces
	// past the end of the list use canonid.DefaultKeyMasks.
	KeyMasks []string `yaml:"key_masks,omitempty"`
}

// MasterSourceColumn is one contributing column of a MasterAttribute.
type MasterSourceColumn struct {
	Table    string `yaml:"table"`
	Column   string `yaml:"column"`
	Priority int    `yaml:"priority"`
	OrderBy  string `yaml:"order_by,omitempty"`
}

// MasterAttribute drives per-attribute priority/ordering resolution for a
// MasterTable.
type MasterAttribute struct {
	Name          string               `yaml:"name"`
	SourceColumns []MasterSourceColumn `yaml:"source_columns"`
	ArrayElements *int                 `yaml:"array_elements,omitempty"`
}

// MasterTable is a materialized per-canonical-ID attribute rollup.
type MasterTable struct {
	Name        string            `yaml:"name"`
	CanonicalID string            `yaml:"canonical_id"`
	Attributes  []MasterAttribute `yaml:"attributes"`
}

// Document is the raw parsed form of the configuration file, before
// referential validation.
type Document struct {
	Keys         []Key         `yaml:"keys"`
	Tables       []SourceTable `yaml:"tables"`
	CanonicalIDs []CanonicalID `yaml:"canonical_ids,omitempty"`
	MasterTables []MasterTable `yaml:"master_tables,omitempty"`
}
