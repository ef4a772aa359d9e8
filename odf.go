package odf

import (
	"io"
	"log/slog"

	"github.com/aretw0/odf/internal/platform"
	"github.com/aretw0/odf/pkg/core"
)

// --- Types ---

// MetadataTree is the parsed header, keyed by section name.
type MetadataTree = core.MetadataTree

// Table is the typed data block.
type Table = core.Table

// Dataset bundles a header and its table.
type Dataset = core.Dataset

// Kind is the type of a table column.
type Kind = core.Kind

const (
	KindString = core.KindString
	KindFloat  = core.KindFloat
	KindInt    = core.KindInt
	KindTime   = core.KindTime
)

// DefaultHeaderMarker terminates the header when no other marker is configured.
const DefaultHeaderMarker = core.DefaultHeaderMarker

// --- Configuration ---

// Option defines a functional option for configuring the conversion service.
type Option = platform.Option

// Profile is a TOML conversion profile.
type Profile = platform.Profile

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithHeaderMarker sets the line that terminates the header.
func WithHeaderMarker(marker string) Option {
	return platform.WithHeaderMarker(marker)
}

// WithFallbackMarkers sets terminators tried when the primary marker is never found.
func WithFallbackMarkers(markers ...string) Option {
	return platform.WithFallbackMarkers(markers...)
}

// WithParameterSection sets the header section that defines the data columns.
func WithParameterSection(name string) Option {
	return platform.WithParameterSection(name)
}

// WithNameField sets the parameter attribute used as column name.
func WithNameField(field string) Option {
	return platform.WithNameField(field)
}

// WithTypeField sets the parameter attribute holding the format code.
func WithTypeField(field string) Option {
	return platform.WithTypeField(field)
}

// WithTypeCode registers the kind of a format code.
func WithTypeCode(code string, kind Kind) Option {
	return platform.WithTypeCode(code, kind)
}

// WithTypeMap replaces the default type map.
func WithTypeMap(tm core.TypeMap) Option {
	return platform.WithTypeMap(tm)
}

// WithColumnNames overrides the column names.
func WithColumnNames(names ...string) Option {
	return platform.WithColumnNames(names...)
}

// WithFormats selects the output formats by name.
func WithFormats(names ...string) Option {
	return platform.WithFormats(names...)
}

// WithExporter adds a custom exporter.
func WithExporter(e core.Exporter) Option {
	return platform.WithExporter(e)
}

// WithPublisher uploads every exported file under prefix.
func WithPublisher(p core.Publisher, prefix string) Option {
	return platform.WithPublisher(p, prefix)
}

// WithEvents sends a ConversionEvent to ch after every conversion.
func WithEvents(ch chan<- core.ConversionEvent) Option {
	return platform.WithEvents(ch)
}

// WithProfile applies a loaded conversion profile.
func WithProfile(p *Profile) Option {
	return platform.WithProfile(p)
}

// --- Factory ---

// New creates a conversion service.
func New(opts ...Option) (*core.Service, error) {
	return platform.New(opts...)
}

// LoadProfile decodes a TOML conversion profile.
func LoadProfile(path string) (*Profile, error) {
	return platform.LoadProfile(path)
}

// FindProfile looks upwards from dir for an odf.toml profile.
func FindProfile(dir string) (string, error) {
	return platform.FindProfile(dir)
}

// Formats lists the built-in output formats.
func Formats() []string {
	return platform.Formats()
}

// --- Parsing ---

// ParseHeader reads the header of r up to marker and returns the remaining data lines.
func ParseHeader(r io.Reader, marker string) (*MetadataTree, []string, error) {
	return core.ParseHeader(r, marker)
}

// BuildTable converts data lines into typed columns using the default table options.
func BuildTable(tree *MetadataTree, lines []string) (*Table, error) {
	return core.BuildTable(tree, lines, core.DefaultTableOptions())
}

// Read parses a whole document with the default marker and table options.
func Read(r io.Reader, source string) (*Dataset, error) {
	return core.Read(r, source, "", core.DefaultTableOptions())
}
