package output

// Structured output types for json and yaml modes.

// ObjectInfo describes one catalog object.
type ObjectInfo struct {
	Name    string       `json:"name" yaml:"name"`
	Type    string       `json:"type" yaml:"type"`
	Columns []ColumnInfo `json:"columns,omitempty" yaml:"columns,omitempty"`
}

// ColumnInfo describes one column of a table or view.
type ColumnInfo struct {
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type,omitempty" yaml:"type,omitempty"`
	NotNull    bool   `json:"not_null,omitempty" yaml:"not_null,omitempty"`
	PrimaryKey bool   `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	Definition string `json:"definition" yaml:"definition"`
}

// CatalogOutput is the listing of a schema.
type CatalogOutput struct {
	Schema    string       `json:"schema" yaml:"schema"`
	Dialect   string       `json:"dialect" yaml:"dialect"`
	Tables    int          `json:"tables" yaml:"tables"`
	Views     int          `json:"views" yaml:"views"`
	Objects   []ObjectInfo `json:"objects" yaml:"objects"`
	Functions []ObjectInfo `json:"functions" yaml:"functions"`
}

// StatementInfo is one applied DDL statement.
type StatementInfo struct {
	File    string `json:"file" yaml:"file"`
	Kind    string `json:"kind" yaml:"kind"`
	Changed bool   `json:"changed" yaml:"changed"`
	Text    string `json:"text" yaml:"text"`
}

// LoadOutput summarizes a load.
type LoadOutput struct {
	Schema     string          `json:"schema" yaml:"schema"`
	Dialect    string          `json:"dialect" yaml:"dialect"`
	Files      []string        `json:"files" yaml:"files"`
	Skipped    []string        `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Statements int             `json:"statements" yaml:"statements"`
	Changed    int             `json:"changed" yaml:"changed"`
	Tables     int             `json:"tables" yaml:"tables"`
	Views      int             `json:"views" yaml:"views"`
	BatchID    string          `json:"batch_id,omitempty" yaml:"batch_id,omitempty"`
	Applied    []StatementInfo `json:"applied" yaml:"applied"`
}

// ReferenceInfo is the resolution of one select item.
type ReferenceInfo struct {
	Item   string `json:"item" yaml:"item"`
	Table  string `json:"table,omitempty" yaml:"table,omitempty"`
	Column string `json:"column,omitempty" yaml:"column,omitempty"`
}

// FlattenEntry is one alias of a flattened FROM clause.
type FlattenEntry struct {
	Key   string `json:"key" yaml:"key"`
	Table string `json:"table" yaml:"table"`
	Type  string `json:"type" yaml:"type"`
}

// BatchInfo describes one recorded journal batch.
type BatchInfo struct {
	ID         string `json:"id" yaml:"id"`
	Dialect    string `json:"dialect" yaml:"dialect"`
	Statements int    `json:"statements" yaml:"statements"`
	CreatedAt  string `json:"created_at" yaml:"created_at"`
}
