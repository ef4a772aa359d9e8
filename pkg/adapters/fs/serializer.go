package fs

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/odf/pkg/core"
)

// Serializer defines how to render a Dataset into a specific text format.
type Serializer interface {
	// Serialize converts the Dataset to bytes.
	Serialize(ds *core.Dataset) ([]byte, error)
}

// DefaultSerializers returns the standard set of serializers keyed by format name.
func DefaultSerializers() map[string]Serializer {
	return map[string]Serializer{
		"json": NewJSONSerializer(),
		"yaml": NewYAMLSerializer(),
		"csv":  NewCSVSerializer(),
	}
}

// Sidecar is the document written by the JSON and YAML serializers.
type Sidecar struct {
	Source   string         `json:"source" yaml:"source"`
	Rows     int            `json:"rows" yaml:"rows"`
	Columns  []SidecarField `json:"columns" yaml:"columns"`
	Metadata map[string]any `json:"metadata" yaml:"metadata"`
}

// SidecarField describes one table column.
type SidecarField struct {
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind" yaml:"kind"`
	Code string `json:"code" yaml:"code"`
}

func newSidecar(ds *core.Dataset) Sidecar {
	s := Sidecar{
		Source:   ds.Source,
		Rows:     ds.Table.Rows,
		Columns:  make([]SidecarField, 0, len(ds.Table.Columns)),
		Metadata: ds.Metadata.Plain(),
	}
	for _, c := range ds.Table.Columns {
		s.Columns = append(s.Columns, SidecarField{Name: c.Name, Kind: c.Kind.String(), Code: c.Code})
	}
	return s
}

// --- JSON Serializer ---

// JSONSerializer writes the metadata tree and column layout as indented JSON.
type JSONSerializer struct{}

// NewJSONSerializer creates a new JSON serializer.
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{}
}

func (s *JSONSerializer) Serialize(ds *core.Dataset) ([]byte, error) {
	return json.MarshalIndent(newSidecar(ds), "", "  ")
}

// --- YAML Serializer ---

type YAMLSerializer struct{}

// NewYAMLSerializer creates a new YAML serializer.
func NewYAMLSerializer() *YAMLSerializer {
	return &YAMLSerializer{}
}

func (s *YAMLSerializer) Serialize(ds *core.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(newSidecar(ds)); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// --- CSV Serializer ---

// CSVSerializer writes the typed table with a header row of column names.
type CSVSerializer struct{}

// NewCSVSerializer creates a new CSV serializer.
func NewCSVSerializer() *CSVSerializer {
	return &CSVSerializer{}
}

func (s *CSVSerializer) Serialize(ds *core.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(ds.Table.Names()); err != nil {
		return nil, err
	}

	row := make([]string, len(ds.Table.Columns))
	for i := 0; i < ds.Table.Rows; i++ {
		for j, c := range ds.Table.Columns {
			row[j] = FormatValue(c, i)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// FormatValue renders the value of column c at row i as text.
func FormatValue(c *core.Column, i int) string {
	switch c.Kind {
	case core.KindFloat:
		return strconv.FormatFloat(c.Floats[i], 'g', -1, 64)
	case core.KindInt:
		return strconv.FormatInt(c.Ints[i], 10)
	case core.KindTime:
		return c.Times[i].Format(time.RFC3339Nano)
	default:
		return c.Strings[i]
	}
}

// --- Exporter ---

// Exporter writes a serializer's output atomically, implementing core.Exporter.
type Exporter struct {
	name       string
	ext        string
	serializer Serializer
}

// NewExporter wraps s as a core.Exporter writing files with extension ext.
func NewExporter(name, ext string, s Serializer) *Exporter {
	return &Exporter{name: name, ext: ext, serializer: s}
}

func (e *Exporter) Name() string      { return e.name }
func (e *Exporter) Extension() string { return e.ext }

func (e *Exporter) Export(ctx context.Context, ds *core.Dataset, dest string) error {
	data, err := e.serializer.Serialize(ds)
	if err != nil {
		return err
	}
	return WriteFileAtomic(dest, data, 0644)
}

var _ core.Exporter = (*Exporter)(nil)
