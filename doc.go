// Package odf reads Ocean Data Format (ODF) files and converts them to
// self-describing formats.
//
// An ODF file is a text header of named sections holding KEY = 'value'
// attributes, terminated by a marker line, followed by whitespace separated
// rows of data. The header becomes a MetadataTree; the PARAMETER_HEADER
// sections describe the columns of the data block, which becomes a typed Table.
//
// Features:
//
//   - **Header Parsing**: Sections that appear once collapse to a single record.
//   - **Typed Columns**: ODF format codes (DOUB, SING, INTE, SYTM) map to column kinds.
//   - **Exporters**: NetCDF, Parquet, JSON, YAML and CSV, written atomically.
//   - **Publishing**: Optional upload of exported files to S3-compatible storage.
//   - **Profiles**: Conversion settings loaded from odf.toml.
//
// Usage:
//
//	svc, err := odf.New(
//		odf.WithFormats("netcdf", "json"),
//		odf.WithLogger(logger),
//	)
//
//	written, err := svc.Convert(ctx, "CTD_2019001_001_1_DN.ODF", "./out")
package odf
