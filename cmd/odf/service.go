package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/odf"
)

// loadProfile returns the --profile file, or the nearest odf.toml when the flag is empty.
// A missing implicit profile is not an error.
func loadProfile() (*odf.Profile, error) {
	p := profilePath
	if p == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		found, err := odf.FindProfile(wd)
		if err != nil {
			return nil, nil
		}
		slog.Debug("using profile", "path", found)
		p = found
	}
	return odf.LoadProfile(p)
}

// serviceOptions builds the options shared by every command.
// Command-line flags override the profile.
func serviceOptions(formats []string, publish bool) ([]odf.Option, error) {
	opts := []odf.Option{odf.WithLogger(slog.Default())}

	profile, err := loadProfile()
	if err != nil {
		return nil, err
	}
	if profile != nil {
		opts = append(opts, profile.Options()...)
	}

	if publish {
		if profile == nil {
			return nil, fmt.Errorf("--publish requires a profile with a [publish] table")
		}
		pub, prefix, err := profile.Publisher()
		if err != nil {
			return nil, err
		}
		opts = append(opts, odf.WithPublisher(pub, prefix))
	}

	if marker != "" {
		opts = append(opts, odf.WithHeaderMarker(marker))
	}
	if len(formats) > 0 {
		opts = append(opts, odf.WithFormats(formats...))
	}
	return opts, nil
}
