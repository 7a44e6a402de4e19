package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractHeader(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    *Header
		wantErr string
	}{
		{
			name:    "no header",
			content: "CREATE TABLE t (id INT);",
		},
		{
			name:    "header not at top",
			content: "CREATE TABLE t (id INT);\n/*---\nskip: true\n---*/",
		},
		{
			name: "full header",
			content: `
/*---
description: order tables
dialect: mysql
tags: [sales, core]
meta:
  owner: data-team
---*/
CREATE TABLE t (id INT);`,
			want: &Header{
				Description: "order tables",
				Dialect:     "mysql",
				Tags:        []string{"sales", "core"},
				Meta:        map[string]any{"owner": "data-team"},
			},
		},
		{
			name:    "skip",
			content: "/*---\nskip: true\n---*/\n",
			want:    &Header{Skip: true},
		},
		{
			name:    "unknown field",
			content: "/*---\nmaterialized: table\n---*/",
			wantErr: `unknown field "materialized"`,
		},
		{
			name:    "invalid yaml",
			content: "/*---\ndialect: [unclosed\n---*/",
			wantErr: "invalid YAML",
		},
		{
			name:    "wrong type",
			content: "/*---\nskip: maybe\n---*/",
			wantErr: "failed to parse header",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractHeader(tt.content)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHeaderErrors_WithFile(t *testing.T) {
	err := &FrontmatterParseError{File: "a.sql", Message: "bad"}
	assert.Equal(t, "a.sql: bad", err.Error())

	unknown := &UnknownFieldError{File: "a.sql", Field: "x"}
	assert.Contains(t, unknown.Error(), `a.sql: unknown field "x"`)
}
