package platform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/odf/pkg/adapters/fs"
	"github.com/aretw0/odf/pkg/adapters/netcdf"
	"github.com/aretw0/odf/pkg/adapters/parquet"
	"github.com/aretw0/odf/pkg/core"
)

// DefaultFormat is used when no format is selected.
const DefaultFormat = "netcdf"

var formats = map[string]func() core.Exporter{
	"netcdf":  func() core.Exporter { return netcdf.NewExporter() },
	"parquet": func() core.Exporter { return parquet.NewExporter() },
	"json":    func() core.Exporter { return fs.NewExporter("json", ".json", fs.NewJSONSerializer()) },
	"yaml":    func() core.Exporter { return fs.NewExporter("yaml", ".yaml", fs.NewYAMLSerializer()) },
	"csv":     func() core.Exporter { return fs.NewExporter("csv", ".csv", fs.NewCSVSerializer()) },
}

var formatAliases = map[string]string{
	"nc":  "netcdf",
	"pq":  "parquet",
	"yml": "yaml",
}

// Formats returns the names of the built-in output formats.
func Formats() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewExporter returns the built-in exporter registered under name.
func NewExporter(name string) (core.Exporter, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := formatAliases[key]; ok {
		key = alias
	}
	factory, ok := formats[key]
	if !ok {
		return nil, fmt.Errorf("unknown format: %s (available: %s)", name, strings.Join(Formats(), ", "))
	}
	return factory(), nil
}

// New builds a conversion service from the given options.
//
//	svc, err := odf.New(odf.WithFormats("netcdf", "json"))
func New(opts ...Option) (*core.Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.err != nil {
		return nil, o.err
	}

	names := o.formats
	if len(names) == 0 && len(o.exporters) == 0 {
		names = []string{DefaultFormat}
	}

	var exporters []core.Exporter
	seen := make(map[string]bool)
	for _, name := range names {
		e, err := NewExporter(name)
		if err != nil {
			return nil, err
		}
		if seen[e.Name()] {
			continue
		}
		seen[e.Name()] = true
		exporters = append(exporters, e)
	}
	exporters = append(exporters, o.exporters...)

	table := o.table
	table.TypeMap = o.typeMap()

	return core.NewService(core.ServiceConfig{
		Marker:          o.marker,
		FallbackMarkers: o.fallbackMarkers,
		Table:           table,
		Exporters:       exporters,
		Publisher:       o.publisher,
		PublishPrefix:   o.publishPrefix,
		Events:          o.events,
		Logger:          o.logger,
	}), nil
}
