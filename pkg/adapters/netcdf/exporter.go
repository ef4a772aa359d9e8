// Package netcdf writes ODF datasets as NetCDF classic files.
package netcdf

import (
	"context"
	"fmt"
	"math"

	"github.com/ctessum/cdf"

	"github.com/aretw0/odf/pkg/adapters/fs"
	"github.com/aretw0/odf/pkg/core"
)

const (
	// RowDimension is the single dimension shared by every column variable.
	RowDimension = "row"
	// TimeUnits is the units attribute of time columns.
	TimeUnits = "seconds since 1970-01-01 00:00:00"
)

// Exporter implements core.Exporter for NetCDF.
type Exporter struct{}

// NewExporter creates a NetCDF exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

func (e *Exporter) Name() string      { return "netcdf" }
func (e *Exporter) Extension() string { return ".nc" }

// Export writes one variable per column along RowDimension. Parameter
// definitions become variable attributes and header sections global attributes.
func (e *Exporter) Export(ctx context.Context, ds *core.Dataset, dest string) error {
	data, err := columnData(ds.Table)
	if err != nil {
		return err
	}
	h, err := header(ds)
	if err != nil {
		return err
	}

	f, err := fs.CreateAtomic(dest, 0644)
	if err != nil {
		return err
	}
	defer f.Abort()

	nc, err := cdf.Create(f.File, h) // writes the header to f
	if err != nil {
		return fmt.Errorf("failed to write netcdf header: %w", err)
	}
	if ds.Table.Rows > 0 {
		for i, c := range ds.Table.Columns {
			if err := ctx.Err(); err != nil {
				return err
			}
			end := nc.Header.Lengths(c.Name)
			start := make([]int, len(end))
			w := nc.Writer(c.Name, start, end)
			if _, err := w.Write(data[i]); err != nil {
				return fmt.Errorf("failed to write variable %s: %w", c.Name, err)
			}
		}
	}
	if err := cdf.UpdateNumRecs(f.File); err != nil {
		return err
	}
	return f.Commit()
}

func header(ds *core.Dataset) (*cdf.Header, error) {
	h := cdf.NewHeader([]string{RowDimension}, []int{ds.Table.Rows})

	global, err := ds.GlobalAttributes()
	if err != nil {
		return nil, err
	}
	for _, name := range ds.Metadata.Names() {
		h.AddAttribute("", name, global[name])
	}
	h.AddAttribute("", "source", ds.Source)

	seen := make(map[string]bool, len(ds.Table.Columns))
	for _, c := range ds.Table.Columns {
		if seen[c.Name] {
			return nil, fmt.Errorf("duplicate variable %q", c.Name)
		}
		seen[c.Name] = true
	}
	for _, c := range ds.Table.Columns {
		h.AddVariable(c.Name, []string{RowDimension}, template(c.Kind))
		attrs := ds.VariableAttributes(c)
		for _, k := range c.Attributes.Keys() {
			key := core.AttributePrefix + k
			h.AddAttribute(c.Name, key, attrs[key])
		}
		if c.Kind == core.KindTime {
			h.AddAttribute(c.Name, "units", TimeUnits)
		}
	}
	h.Define()
	return h, nil
}

func template(k core.Kind) any {
	if k == core.KindInt {
		return []int32{0}
	}
	return []float64{0}
}

// columnData converts every column to the slice type its variable was declared with.
func columnData(t *core.Table) ([]any, error) {
	out := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		switch c.Kind {
		case core.KindFloat:
			out[i] = c.Floats
		case core.KindInt:
			vals := make([]int32, len(c.Ints))
			for j, v := range c.Ints {
				if v > math.MaxInt32 || v < math.MinInt32 {
					return nil, fmt.Errorf("column %s row %d: %d overflows a netcdf int", c.Name, j, v)
				}
				vals[j] = int32(v)
			}
			out[i] = vals
		case core.KindTime:
			vals := make([]float64, len(c.Times))
			for j, v := range c.Times {
				vals[j] = float64(v.UnixNano()) / 1e9
			}
			out[i] = vals
		default:
			return nil, fmt.Errorf("column %s (%s): %w", c.Name, c.Kind, core.ErrUnsupportedKind)
		}
	}
	return out, nil
}

var _ core.Exporter = (*Exporter)(nil)
