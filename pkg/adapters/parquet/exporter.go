// Package parquet writes ODF tables as Parquet files.
package parquet

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	writerfile "github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/aretw0/odf/pkg/adapters/fs"
	"github.com/aretw0/odf/pkg/core"
)

// Exporter implements core.Exporter for Parquet.
type Exporter struct {
	// Parallelism is the number of goroutines used by the parquet writer.
	Parallelism int64
}

// NewExporter creates a Parquet exporter.
func NewExporter() *Exporter {
	return &Exporter{Parallelism: 4}
}

func (e *Exporter) Name() string      { return "parquet" }
func (e *Exporter) Extension() string { return ".parquet" }

// Export writes one OPTIONAL field per column. Header sections are stored as
// footer key/value metadata.
func (e *Exporter) Export(ctx context.Context, ds *core.Dataset, dest string) error {
	schemaDef, err := buildSchema(ds.Table)
	if err != nil {
		return err
	}

	f, err := fs.CreateAtomic(dest, 0644)
	if err != nil {
		return err
	}
	defer f.Abort()

	pfw := writerfile.NewWriterFile(f.File)
	pw, err := writer.NewJSONWriter(schemaDef, pfw, e.Parallelism)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i := 0; i < ds.Table.Rows; i++ {
		if err := ctx.Err(); err != nil {
			_ = pw.WriteStop()
			return err
		}
		row, err := json.Marshal(projectRow(ds.Table, i))
		if err != nil {
			_ = pw.WriteStop()
			return err
		}
		if err := pw.Write(string(row)); err != nil {
			_ = pw.WriteStop()
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	global, err := ds.GlobalAttributes()
	if err != nil {
		_ = pw.WriteStop()
		return err
	}
	for _, name := range ds.Metadata.Names() {
		value := global[name]
		pw.Footer.KeyValueMetadata = append(pw.Footer.KeyValueMetadata, &parquet.KeyValue{Key: name, Value: &value})
	}

	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return f.Commit()
}

func buildSchema(t *core.Table) (string, error) {
	fields := make([]map[string]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		fields = append(fields, map[string]string{
			"Tag": fmt.Sprintf("name=%s, %s, repetitiontype=OPTIONAL", c.Name, physicalType(c.Kind)),
		})
	}
	out := map[string]any{
		"Tag":    "name=parquet_go_root, repetitiontype=REQUIRED",
		"Fields": fields,
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func physicalType(k core.Kind) string {
	switch k {
	case core.KindFloat:
		return "type=DOUBLE"
	case core.KindInt:
		return "type=INT64"
	case core.KindTime:
		return "type=INT64, convertedtype=TIMESTAMP_MILLIS"
	default:
		return "type=BYTE_ARRAY, convertedtype=UTF8"
	}
}

func projectRow(t *core.Table, i int) map[string]any {
	row := make(map[string]any, len(t.Columns))
	for _, c := range t.Columns {
		switch c.Kind {
		case core.KindTime:
			row[c.Name] = c.Times[i].UnixMilli()
			continue
		case core.KindFloat:
			if v := c.Floats[i]; math.IsNaN(v) || math.IsInf(v, 0) {
				row[c.Name] = nil
				continue
			}
		}
		row[c.Name] = c.Value(i)
	}
	return row
}

var _ core.Exporter = (*Exporter)(nil)
