package dialect

// Databricks returns the identity dialect: the native Presto/Databricks-
// shaped rendering the compiler already produces needs no rewrite pass to
// run on this backend; only other targets carry a conversion table.
func Databricks() Dialect {
	return Dialect{
		Name: "databricks",
		Ops:  Presto(),
	}
}
