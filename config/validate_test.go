package config

import (
	"testing"

	"github.com/stretchr/testify/require"
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

func TestParseAndValidate_TwoKeyConfig(t *testing.T) {
	doc, err := Parse([]byte(twoKeyYAML))
	require.NoError(t, err)

	cfg, err := Validate(doc)
	require.NoError(t, err)

	require.Equal(t, 1, cfg.Tables[0].TableID)
	require.Equal(t, "time", cfg.Tables[0].TimeColumn)

	ns, ok := cfg.NamespaceOf("email")
	require.True(t, ok)
	require.Equal(t, 1, ns)

	ns, ok = cfg.NamespaceOf("phone")
	require.True(t, ok)
	require.Equal(t, 2, ns)

	require.Equal(t, []int{1, 2}, cfg.Priorities())
}

func TestValidate_DefaultsCanonicalID(t *testing.T) {
	doc := &Document{
		Keys:   []Key{{Name: "email"}},
		Tables: []SourceTable{{Table: "events", KeyColumns: []KeyColumn{{Column: "email", Key: "email"}}}},
	}
	cfg, err := Validate(doc)
	require.NoError(t, err)
	require.Equal(t, "unified_id", cfg.CanonicalID.Name)
	require.Empty(t, cfg.CanonicalID.MergeByKeys)
}

func TestValidate_RejectsUndeclaredKeyColumnKey(t *testing.T) {
	doc := &Document{
		Keys:   []Key{{Name: "email"}},
		Tables: []SourceTable{{Table: "events", KeyColumns: []KeyColumn{{Column: "p", Key: "phone"}}}},
	}
	_, err := Validate(doc)
	require.Error(t, err)
	require.True(t, ErrSemantic.Is(err))
}

func TestValidate_RejectsUndeclaredMergeByKey(t *testing.T) {
	doc := &Document{
		Keys:         []Key{{Name: "email"}},
		CanonicalIDs: []CanonicalID{{MergeByKeys: []string{"email", "ghost"}}},
	}
	_, err := Validate(doc)
	require.Error(t, err)
}

func TestValidate_RejectsMismatchedKeyPriorities(t *testing.T) {
	doc := &Document{
		Keys:         []Key{{Name: "email"}, {Name: "phone"}},
		CanonicalIDs: []CanonicalID{{MergeByKeys: []string{"email", "phone"}, KeyPriorities: []int{1}}},
	}
	_, err := Validate(doc)
	require.Error(t, err)
}

func TestValidate_RequiresKeyMasksBeyondConfirmedCount(t *testing.T) {
	keys := make([]Key, 5)
	names := make([]string, 5)
	for i := range keys {
		name := string(rune('a' + i))
		keys[i] = Key{Name: name}
		names[i] = name
	}
	doc := &Document{
		Keys:         keys,
		CanonicalIDs: []CanonicalID{{MergeByKeys: names}},
	}
	_, err := Validate(doc)
	require.Error(t, err, "5 merge keys exceeds the 3 confirmed masks without an explicit override")
}

func TestValidate_MasterTableMustReferenceDeclaredTable(t *testing.T) {
	doc := &Document{
		Keys:   []Key{{Name: "email"}},
		Tables: []SourceTable{{Table: "events"}},
		MasterTables: []MasterTable{{
			Name:        "profile",
			CanonicalID: "unified_id",
			Attributes: []MasterAttribute{{
				Name:          "name",
				SourceColumns: []MasterSourceColumn{{Table: "ghost_table", Column: "name", Priority: 1}},
			}},
		}},
	}
	_, err := Validate(doc)
	require.Error(t, err)
}

func TestParse_RejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("keys: [this is not: valid"))
	require.Error(t, err)
	require.True(t, ErrSyntax.Is(err))
}
