package platform

import (
	"log/slog"

	"github.com/aretw0/odf/pkg/core"
)

// options holds the internal configuration for the conversion service.
type options struct {
	logger          *slog.Logger
	marker          string
	fallbackMarkers []string
	table           core.TableOptions
	typeCodes       map[string]core.Kind
	replaceTypes    bool
	formats         []string
	exporters       []core.Exporter
	publisher       core.Publisher
	publishPrefix   string
	events          chan<- core.ConversionEvent
	err             error
}

// Option defines a functional option for configuring the service.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		table:     core.DefaultTableOptions(),
		typeCodes: make(map[string]core.Kind),
	}
}

// typeMap builds the effective type map from the defaults and registered codes.
func (o *options) typeMap() core.TypeMap {
	tm := core.DefaultTypeMap()
	if o.replaceTypes {
		tm = core.TypeMap{}
	}
	for code, kind := range o.typeCodes {
		tm[code] = kind
	}
	return tm
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHeaderMarker sets the line that terminates the header.
// Defaults to core.DefaultHeaderMarker.
func WithHeaderMarker(marker string) Option {
	return func(o *options) {
		o.marker = marker
	}
}

// WithFallbackMarkers sets terminators tried in order when the primary marker is never found.
func WithFallbackMarkers(markers ...string) Option {
	return func(o *options) {
		o.fallbackMarkers = append([]string(nil), markers...)
	}
}

// WithParameterSection sets the header section that defines the data columns.
func WithParameterSection(name string) Option {
	return func(o *options) {
		o.table.ParameterSection = name
	}
}

// WithNameField sets the parameter attribute used as column name.
func WithNameField(field string) Option {
	return func(o *options) {
		o.table.NameField = field
	}
}

// WithTypeField sets the parameter attribute holding the ODF format code.
func WithTypeField(field string) Option {
	return func(o *options) {
		o.table.TypeField = field
	}
}

// WithTypeCode registers (or overrides) the kind of an ODF format code.
func WithTypeCode(code string, kind core.Kind) Option {
	return func(o *options) {
		o.typeCodes[code] = kind
	}
}

// WithTypeMap replaces the default type map entirely.
func WithTypeMap(tm core.TypeMap) Option {
	return func(o *options) {
		o.replaceTypes = true
		o.typeCodes = make(map[string]core.Kind, len(tm))
		for code, kind := range tm {
			o.typeCodes[code] = kind
		}
	}
}

// WithColumnNames overrides the column names taken from the parameter section.
func WithColumnNames(names ...string) Option {
	return func(o *options) {
		o.table.ColumnNames = append([]string(nil), names...)
	}
}

// WithFormats selects the output formats by name (netcdf, parquet, json, yaml, csv).
// Defaults to netcdf.
func WithFormats(names ...string) Option {
	return func(o *options) {
		o.formats = append([]string(nil), names...)
	}
}

// WithExporter adds a custom exporter after the named formats.
func WithExporter(e core.Exporter) Option {
	return func(o *options) {
		o.exporters = append(o.exporters, e)
	}
}

// WithPublisher uploads every exported file under prefix.
func WithPublisher(p core.Publisher, prefix string) Option {
	return func(o *options) {
		o.publisher = p
		o.publishPrefix = prefix
	}
}

// WithEvents sends a ConversionEvent to ch after every conversion.
// Sends block until received or the conversion context is done.
func WithEvents(ch chan<- core.ConversionEvent) Option {
	return func(o *options) {
		o.events = ch
	}
}
