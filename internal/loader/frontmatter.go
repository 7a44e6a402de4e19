package loader

import (
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Header is the optional YAML block at the top of a DDL file:
//
//	/*---
//	dialect: mysql
//	description: order tables
//	---*/
//
// The block is an ordinary comment to the SQL parser, so it is left in
// place and line numbers stay intact.
type Header struct {
	Description string         `yaml:"description"`
	Dialect     string         `yaml:"dialect"` // file must be written in this dialect
	Skip        bool           `yaml:"skip"`    // exclude the file from loading
	Tags        []string       `yaml:"tags"`
	Meta        map[string]any `yaml:"meta"` // extension point for custom fields
}

// frontmatterPattern matches /*--- ... ---*/ blocks
var frontmatterPattern = regexp.MustCompile(`(?s)^\s*/\*---\s*\n(.*?)\s*---\*/`)

// ExtractHeader parses the header of content. It returns nil when the file
// has none.
func ExtractHeader(content string) (*Header, error) {
	matches := frontmatterPattern.FindStringSubmatch(content)
	if len(matches) < 2 {
		return nil, nil
	}

	var rawMap map[string]any
	if err := yaml.Unmarshal([]byte(matches[1]), &rawMap); err != nil {
		return nil, &FrontmatterParseError{Message: fmt.Sprintf("invalid YAML: %v", err)}
	}
	for field := range rawMap {
		if !knownFields[field] {
			return nil, &UnknownFieldError{Field: field}
		}
	}

	h := &Header{}
	if err := yaml.Unmarshal([]byte(matches[1]), h); err != nil {
		return nil, &FrontmatterParseError{Message: fmt.Sprintf("failed to parse header: %v", err)}
	}
	return h, nil
}

var knownFields = map[string]bool{
	"description": true,
	"dialect":     true,
	"skip":        true,
	"tags":        true,
	"meta":        true,
}

// FrontmatterParseError represents a header parsing error.
type FrontmatterParseError struct {
	File    string
	Message string
}

func (e *FrontmatterParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

// UnknownFieldError represents an error for unknown header fields.
type UnknownFieldError struct {
	File  string
	Field string
}

func (e *UnknownFieldError) Error() string {
	msg := fmt.Sprintf("unknown field %q in header, use \"meta\" field for custom fields", e.Field)
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, msg)
	}
	return msg
}
