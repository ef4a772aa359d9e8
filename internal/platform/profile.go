package platform

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/aretw0/odf/pkg/adapters/objectstore"
	"github.com/aretw0/odf/pkg/core"
)

// Profile is a conversion profile loaded from TOML.
//
//	header_marker = " -- DATA -- "
//	formats = ["netcdf", "json"]
//
//	[type_codes]
//	CHAR = "string"
//
//	[publish]
//	endpoint = "http://localhost:9000"
//	bucket = "odf"
type Profile struct {
	HeaderMarker     string              `toml:"header_marker"`
	FallbackMarkers  []string            `toml:"fallback_markers"`
	ParameterSection string              `toml:"parameter_section"`
	NameField        string              `toml:"name_field"`
	TypeField        string              `toml:"type_field"`
	ColumnNames      []string            `toml:"column_names"`
	TypeCodes        map[string]string   `toml:"type_codes"`
	Formats          []string            `toml:"formats"`
	Publish          *objectstore.Config `toml:"publish"`
}

// LoadProfile decodes the TOML profile at path.
// Credentials in the publish table may reference environment variables as $VAR.
func LoadProfile(path string) (*Profile, error) {
	var p Profile
	md, err := toml.DecodeFile(path, &p)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("profile %s: unknown key %s", path, undecoded[0].String())
	}
	if p.Publish != nil {
		p.Publish.AccessKeyID = os.ExpandEnv(p.Publish.AccessKeyID)
		p.Publish.SecretAccessKey = os.ExpandEnv(p.Publish.SecretAccessKey)
	}
	for code, kind := range p.TypeCodes {
		if _, err := core.ParseKind(kind); err != nil {
			return nil, fmt.Errorf("profile %s: type code %s: %w", path, code, err)
		}
	}
	return &p, nil
}

// Options converts the profile into service options. Empty fields keep the defaults.
// Publishing is not configured here; see Profile.Publisher.
func (p *Profile) Options() []Option {
	var opts []Option
	if p.HeaderMarker != "" {
		opts = append(opts, WithHeaderMarker(p.HeaderMarker))
	}
	if len(p.FallbackMarkers) > 0 {
		opts = append(opts, WithFallbackMarkers(p.FallbackMarkers...))
	}
	if p.ParameterSection != "" {
		opts = append(opts, WithParameterSection(p.ParameterSection))
	}
	if p.NameField != "" {
		opts = append(opts, WithNameField(p.NameField))
	}
	if p.TypeField != "" {
		opts = append(opts, WithTypeField(p.TypeField))
	}
	if len(p.ColumnNames) > 0 {
		opts = append(opts, WithColumnNames(p.ColumnNames...))
	}
	for code, name := range p.TypeCodes {
		if kind, err := core.ParseKind(name); err == nil {
			opts = append(opts, WithTypeCode(code, kind))
		}
	}
	if len(p.Formats) > 0 {
		opts = append(opts, WithFormats(p.Formats...))
	}
	return opts
}

// Publisher creates the object-store publisher described by the [publish] table.
func (p *Profile) Publisher() (*objectstore.Publisher, string, error) {
	if p.Publish == nil {
		return nil, "", fmt.Errorf("profile has no [publish] table")
	}
	pub, err := objectstore.NewPublisher(*p.Publish)
	if err != nil {
		return nil, "", err
	}
	return pub, p.Publish.Prefix, nil
}

// WithProfile applies every setting of p, including publishing when configured.
// Errors creating the publisher surface from New.
func WithProfile(p *Profile) Option {
	return func(o *options) {
		for _, opt := range p.Options() {
			opt(o)
		}
		if p.Publish == nil {
			return
		}
		pub, prefix, err := p.Publisher()
		if err != nil {
			o.err = fmt.Errorf("invalid publish settings: %w", err)
			return
		}
		WithPublisher(pub, prefix)(o)
	}
}
