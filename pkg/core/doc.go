// Package core defines the shared language of the leapschema system: the SQL
// syntax tree produced by pkg/parser and consumed by the catalog, the DDL
// ingestor and the name resolver.
//
// The Golden Rule: pkg/core imports ONLY pkg/token and stdlib.
// All other packages depend on core, not the reverse.
package core
