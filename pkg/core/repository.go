package core

import "context"

// Exporter defines the contract for writing a Dataset to a self-describing file.
// Adhering to this interface keeps the core independent of the output format
// (NetCDF, Parquet, sidecar JSON/YAML, etc).
type Exporter interface {
	// Name is the format name used in configuration (e.g. "netcdf").
	Name() string

	// Extension is appended to the source base name to build the output path.
	Extension() string

	// Export writes ds to dest, replacing any existing file.
	Export(ctx context.Context, ds *Dataset, dest string) error
}

// Publisher defines an interface for copying exported files to remote storage.
type Publisher interface {
	// Publish uploads the file at localPath under key.
	Publish(ctx context.Context, localPath, key string) error
}
