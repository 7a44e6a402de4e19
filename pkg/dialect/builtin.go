package dialect

// MySQL quotes with backticks and supports CREATE TABLE ... LIKE.
var MySQL = NewDialect("mysql").
	Identifiers("`", "`", "``").
	Aliases("mariadb").
	MySQLLexing().
	CreateLike().
	UnsignedTypes().
	Aggregates("json_arrayagg", "json_objectagg", "std").
	WithDataTypes(
		"TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT",
		"DECIMAL", "NUMERIC", "FLOAT", "DOUBLE", "BIT",
		"CHAR", "VARCHAR", "BINARY", "VARBINARY",
		"TINYTEXT", "TEXT", "MEDIUMTEXT", "LONGTEXT",
		"TINYBLOB", "BLOB", "MEDIUMBLOB", "LONGBLOB",
		"DATE", "TIME", "DATETIME", "TIMESTAMP", "YEAR",
		"ENUM", "SET", "JSON",
	).
	Build()

// Oracle quotes with double quotes and has no structural template clause.
var Oracle = NewDialect("oracle").
	Aggregates("collect", "xmlagg", "stats_mode").
	WithDataTypes(
		"NUMBER", "FLOAT", "BINARY_FLOAT", "BINARY_DOUBLE",
		"CHAR", "NCHAR", "VARCHAR2", "NVARCHAR2", "CLOB", "NCLOB", "BLOB", "RAW",
		"DATE", "TIMESTAMP", "INTERVAL",
	).
	Build()

// ANSI is the standard dialect, also used for PostgreSQL-flavoured DDL.
var ANSI = NewDialect("ansi").
	Aliases("postgres", "postgresql", "standard").
	Aggregates("array_agg", "bool_and", "bool_or", "every").
	WithDataTypes(
		"SMALLINT", "INTEGER", "BIGINT", "DECIMAL", "NUMERIC", "REAL", "DOUBLE PRECISION",
		"CHAR", "VARCHAR", "TEXT", "BOOLEAN", "DATE", "TIME", "TIMESTAMP",
	).
	Build()

func init() {
	Register(MySQL)
	Register(Oracle)
	Register(ANSI)
}
