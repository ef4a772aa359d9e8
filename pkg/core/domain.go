// Package core holds the ODF domain: the header metadata tree, the typed data
// table and the service that reads, converts and exports them.
package core

import "sort"

// DefaultHeaderMarker is the line that separates the ODF header from the data block.
const DefaultHeaderMarker = " -- DATA -- "

// AttributeRecord maps attribute keys to their (unquoted) string values.
type AttributeRecord map[string]string

// Keys returns the record keys in sorted order.
func (r AttributeRecord) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RawLine is a header line kept verbatim (comments, unrecognized content).
type RawLine string

// Entry is one element of a repeated or mixed section: either a record or a raw line.
type Entry struct {
	// Record is nil when the entry is a raw line.
	Record AttributeRecord
	Raw    RawLine
}

// IsRaw reports whether the entry holds a raw line instead of a record.
func (e Entry) IsRaw() bool {
	return e.Record == nil
}

// SectionKind tags the shape of a SectionValue.
type SectionKind int

const (
	// SectionSingle is a section that occurred once and holds only key/value lines.
	SectionSingle SectionKind = iota
	// SectionMany is a repeated section or one that carries raw lines.
	SectionMany
)

func (k SectionKind) String() string {
	if k == SectionSingle {
		return "single"
	}
	return "many"
}

// SectionValue is the value stored for a section name in a MetadataTree.
type SectionValue struct {
	Kind   SectionKind
	Single AttributeRecord
	Many   []Entry
}

// Records returns every AttributeRecord of the section in order, whatever its shape.
// Raw lines are skipped.
func (v SectionValue) Records() []AttributeRecord {
	if v.Kind == SectionSingle {
		if v.Single == nil {
			return nil
		}
		return []AttributeRecord{v.Single}
	}
	records := make([]AttributeRecord, 0, len(v.Many))
	for _, e := range v.Many {
		if !e.IsRaw() {
			records = append(records, e.Record)
		}
	}
	return records
}

// Plain converts the value to nested maps and slices of strings.
func (v SectionValue) Plain() any {
	if v.Kind == SectionSingle {
		return plainRecord(v.Single)
	}
	out := make([]any, 0, len(v.Many))
	for _, e := range v.Many {
		if e.IsRaw() {
			out = append(out, string(e.Raw))
			continue
		}
		out = append(out, plainRecord(e.Record))
	}
	return out
}

func plainRecord(r AttributeRecord) map[string]any {
	m := make(map[string]any, len(r))
	for k, val := range r {
		m[k] = val
	}
	return m
}

// MetadataTree is the parsed ODF header: section name to SectionValue.
type MetadataTree struct {
	sections map[string]SectionValue
	order    []string
}

// NewMetadataTree returns an empty tree.
func NewMetadataTree() *MetadataTree {
	return &MetadataTree{sections: make(map[string]SectionValue)}
}

// Get returns the value of a section.
func (t *MetadataTree) Get(name string) (SectionValue, bool) {
	v, ok := t.sections[name]
	return v, ok
}

// Set stores a section value, keeping first-appearance order.
func (t *MetadataTree) Set(name string, v SectionValue) {
	if _, ok := t.sections[name]; !ok {
		t.order = append(t.order, name)
	}
	t.sections[name] = v
}

// Names returns the section names in the order they first appeared.
func (t *MetadataTree) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of sections.
func (t *MetadataTree) Len() int {
	return len(t.order)
}

// Records returns the AttributeRecords of a section, or nil when the section is absent.
func (t *MetadataTree) Records(name string) []AttributeRecord {
	v, ok := t.sections[name]
	if !ok {
		return nil
	}
	return v.Records()
}

// Plain returns the tree as a nested map walkable by encoders and exporters.
func (t *MetadataTree) Plain() map[string]any {
	out := make(map[string]any, len(t.sections))
	for name, v := range t.sections {
		out[name] = v.Plain()
	}
	return out
}
