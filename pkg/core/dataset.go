package core

import (
	"encoding/json"
	"fmt"
	"io"
)

// AttributePrefix is prepended to parameter keys when they become variable attributes.
const AttributePrefix = "original_"

// Dataset is a fully parsed ODF document.
type Dataset struct {
	// Source names where the document came from (usually its path).
	Source   string
	Metadata *MetadataTree
	Lines    []string
	Table    *Table
}

// Read parses an ODF document from r into a Dataset.
func Read(r io.Reader, source, marker string, opts TableOptions) (*Dataset, error) {
	tree, lines, err := ParseHeader(r, marker)
	if err != nil {
		return nil, err
	}
	table, err := BuildTable(tree, lines, opts)
	if err != nil {
		return nil, err
	}
	return &Dataset{Source: source, Metadata: tree, Lines: lines, Table: table}, nil
}

// GlobalAttributes renders every header section as a compact JSON string keyed
// by section name.
func (d *Dataset) GlobalAttributes() (map[string]string, error) {
	attrs := make(map[string]string, d.Metadata.Len())
	for _, name := range d.Metadata.Names() {
		v, _ := d.Metadata.Get(name)
		b, err := json.Marshal(v.Plain())
		if err != nil {
			return nil, fmt.Errorf("failed to encode section %s: %w", name, err)
		}
		attrs[name] = string(b)
	}
	return attrs, nil
}

// VariableAttributes returns the parameter definition of c with each key prefixed by AttributePrefix.
func (d *Dataset) VariableAttributes(c *Column) map[string]string {
	attrs := make(map[string]string, len(c.Attributes))
	for k, v := range c.Attributes {
		attrs[AttributePrefix+k] = v
	}
	return attrs
}
