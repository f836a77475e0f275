package dialect

// Snowflake returns the rewrite-based Snowflake dialect: the native
// (Presto/Databricks-shaped) SQL the compiler renders, passed through an
// ordered regex conversion table. Rules apply one after another in table
// order, each over the output of the previous one.
func Snowflake() Dialect {
	return Dialect{
		Name: "snowflake",
		Ops:  Presto(),
		Rewrite: (Rewriter{Rules: []RewriteRule{
			rule("array_size", `(?i)\bSIZE\s*\(`, "ARRAY_SIZE("),
			rule("array_construct", `(?i)\bARRAY\s*\(`, "ARRAY_CONSTRUCT("),
			rule("array_flatten", `(?i)\bARRAY_FLATTEN\s*\(([^)]+)\)`, "FLATTEN($1)"),
			rule("collect_list", `(?i)\bCOLLECT_LIST\s*\(`, "ARRAY_AGG("),
			rule("bool_or", `(?i)\bBOOL_OR\s*\(`, "BOOLOR_AGG("),
			rule("array_contains", `(?i)\bARRAY_CONTAINS\s*\(\s*([^,]+?)\s*,\s*([^)]+?)\)`,
				"ARRAYS_OVERLAP($1, ARRAY_CONSTRUCT($2))"),
			rule("struct", `(?i)\bSTRUCT\s*\(`, "OBJECT_CONSTRUCT("),
			rule("named_struct", `(?i)\bNAMED_STRUCT\s*\(`, "OBJECT_CONSTRUCT("),
			rule("unhex", `(?i)\bUNHEX\s*\(`, "TO_BINARY("),
			rule("base64", `(?i)\bBASE64\s*\(`, "BASE64_ENCODE("),
			rule("hex", `(?i)\bHEX\s*\(`, "TO_CHAR("),
			rule("conv_hex_to_dec", `(?i)\bCONV\s*\(\s*([^,]+?)\s*,\s*16\s*,\s*10\s*\)`,
				"TO_NUMBER($1, 'XXXXXXXXXXXXXXXX')"),
			rule("conv_dec_to_hex", `(?i)\bCONV\s*\(\s*([^,]+?)\s*,\s*10\s*,\s*16\s*\)`,
				"TO_CHAR($1, 'X')"),
			rule("unix_timestamp", `(?i)\bUNIX_TIMESTAMP\(\)`, "DATE_PART(epoch_second, CURRENT_TIMESTAMP())"),
			rule("lateral_explode", `(?i)\bLATERAL\s+VIEW\s+EXPLODE\s*\(\s*([^)]+?)\)\s+[a-zA-Z_]\w*\s+AS\s+([a-zA-Z_]\w*)`,
				", LATERAL FLATTEN(input => $1) $2"),
			rule("lateral_array_flatten_cleanup", `(?i)\bLATERAL\s+ARRAY_FLATTEN\s*\(input\s*=>\s*([^)]+)\)`,
				"LATERAL FLATTEN(input => $1)"),
			rule("listagg", `(?i)\bCONCAT_WS\s*\(\s*''\s*,\s*COLLECT_LIST\s*\(`, "LISTAGG("),
			rule("map_from_arrays", `(?i)\bMAP_FROM_ARRAYS\s*\(`, "OBJECT_CONSTRUCT_KEEP_NULL("),
			rule("drop_using_delta", `(?i)\bUSING\s+DELTA`, ""),
			rule("cluster_by", `(?i)\bCLUSTER\s+BY\s*\(([^)]+)\)`, "CLUSTER BY ($1)"),
			rule("cast_long", `(?i)\bCAST\s*\(\s*([^)]+?)\s+AS\s+LONG\s*\)`, "CAST($1 AS NUMBER)"),
			rule("cast_string", `(?i)\bCAST\s*\(\s*([^)]+?)\s+AS\s+STRING\s*\)`, "CAST($1 AS VARCHAR)"),
			rule("array_type", `(?i)\bARRAY<\s*\w+\s*>`, "ARRAY"),
			rule("type_long", `(?i)\bLONG\b`, "NUMBER"),
			rule("type_string", `(?i)\bSTRING\b`, "VARCHAR"),
			rule("identifier_quote", "`", `"`),
		}}).Rewrite,
	}
}
