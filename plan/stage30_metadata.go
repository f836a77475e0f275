package plan

import (
	"fmt"
	"strings"

	"github.com/brightgraph/iduplan/config"
	"github.com/brightgraph/iduplan/dialect"
)

// buildMetadataStages renders stages 30-32, plus the `_keys` and `_tables`
// dump tables of the persisted output list.
func buildMetadataStages(cfg *config.Config, ops dialect.Operators, dst Target) []Stage {
	idName := cfg.CanonicalID.Name

	metadataRow := fmt.Sprintf("SELECT %s AS canonical_id_name, 'string' AS canonical_id_type", ops.QuoteString(idName))
	metadata := fmt.Sprintf("CREATE OR REPLACE TABLE %s AS\n%s", dst.Qualify(unificationMetadataTable), metadataRow)

	var filterRows []string
	for _, keyName := range cfg.KeyOrder {
		key := cfg.Keys[keyName]
		invalidTexts := strings.Join(key.NonNullInvalidTexts(), ",")
		filterRows = append(filterRows, fmt.Sprintf(
			"SELECT %s AS key_name, %s AS invalid_texts, %v AS rejects_null, %s AS valid_regexp",
			ops.QuoteString(keyName), ops.QuoteString(invalidTexts), key.HasNullSentinel(), nullableString(ops, key.ValidRegexp)))
	}
	filterLookup := fmt.Sprintf("CREATE OR REPLACE TABLE %s AS\n%s", dst.Qualify(filterLookupTable), strings.Join(filterRows, "\nUNION ALL\n"))

	var columnRows []string
	for _, table := range cfg.Tables {
		for _, kc := range table.KeyColumns {
			// `table`, `column`, and `key` are reserved in most dialects,
			// hence the quoted aliases.
			columnRows = append(columnRows, fmt.Sprintf(
				"SELECT %s AS `database`, %s AS `table`, %s AS `column`, %s AS `key`",
				nullableString(ops, table.Database), ops.QuoteString(table.Table), ops.QuoteString(kc.Column), ops.QuoteString(kc.Key)))
		}
	}
	columnLookup := fmt.Sprintf("CREATE OR REPLACE TABLE %s AS\n%s", dst.Qualify(columnLookupTable), strings.Join(columnRows, "\nUNION ALL\n"))

	var keyRows []string
	for i, keyName := range cfg.CanonicalID.MergeByKeys {
		keyRows = append(keyRows, fmt.Sprintf("SELECT %d AS ns, %s AS key_name", i+1, ops.QuoteString(keyName)))
	}
	keysTable := fmt.Sprintf("CREATE OR REPLACE TABLE %s AS\n%s", dst.Qualify(keysTableName(idName)), strings.Join(keyRows, "\nUNION ALL\n"))

	var tableRows []string
	for _, table := range cfg.Tables {
		tableRows = append(tableRows, fmt.Sprintf("SELECT %d AS table_id, %s AS table_name", table.TableID, ops.QuoteString(table.QualifiedName())))
	}
	tablesTable := fmt.Sprintf("CREATE OR REPLACE TABLE %s AS\n%s", dst.Qualify(tablesTableName(idName)), strings.Join(tableRows, "\nUNION ALL\n"))

	return []Stage{
		{Name: "30_unification_metadata", Kind: KindMetadata, Statements: []string{metadata, keysTable, tablesTable}},
		{Name: "31_filter_lookup", Kind: KindMetadata, Statements: []string{filterLookup}},
		{Name: "32_column_lookup", Kind: KindMetadata, Statements: []string{columnLookup}},
	}
}

func nullableString(ops dialect.Operators, s string) string {
	if s == "" {
		return "NULL"
	}
	return ops.QuoteString(s)
}
