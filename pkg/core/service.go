package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ServiceConfig holds everything a Service needs.
type ServiceConfig struct {
	// Marker is the header terminator. Empty means DefaultHeaderMarker.
	Marker string
	// FallbackMarkers are tried in order when Marker is never found.
	FallbackMarkers []string
	Table           TableOptions
	Exporters       []Exporter
	Publisher       Publisher
	// PublishPrefix is prepended to object keys when publishing.
	PublishPrefix string
	// Events, when set, receives one ConversionEvent per Convert call.
	Events chan<- ConversionEvent
	Logger *slog.Logger
}

// Service handles reading ODF files and exporting them.
type Service struct {
	cfg    ServiceConfig
	logger *slog.Logger

	mu        sync.RWMutex
	read      int
	converted int
	failed    int
}

// NewService creates a new Service.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{cfg: cfg, logger: logger}
}

// Exporters returns the configured exporters.
func (s *Service) Exporters() []Exporter {
	return s.cfg.Exporters
}

// Read parses a single document from r using the primary marker.
func (s *Service) Read(r io.Reader, source string) (*Dataset, error) {
	ds, err := Read(r, source, s.cfg.Marker, s.cfg.Table)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.read++
	s.mu.Unlock()
	return ds, nil
}

// ReadFile parses the ODF file at p. When the header terminator is missing it
// retries with each fallback marker in turn.
func (s *Service) ReadFile(p string) (*Dataset, error) {
	markers := append([]string{s.cfg.Marker}, s.cfg.FallbackMarkers...)

	var err error
	for i, marker := range markers {
		var ds *Dataset
		ds, err = s.readWithMarker(p, marker)
		if err == nil {
			return ds, nil
		}
		if !errors.Is(err, ErrUnterminatedHeader) {
			break
		}
		if i+1 < len(markers) {
			s.logger.Debug("header terminator not found, trying fallback", "path", p, "marker", markers[i+1])
		}
	}
	return nil, fmt.Errorf("failed to read %s: %w", p, err)
}

func (s *Service) readWithMarker(p, marker string) (*Dataset, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ds, err := Read(f, p, marker, s.cfg.Table)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.read++
	s.mu.Unlock()
	return ds, nil
}

// Export writes ds with every configured exporter into outDir and returns the written paths.
// An empty outDir writes next to the source file.
func (s *Service) Export(ctx context.Context, ds *Dataset, outDir string) ([]string, error) {
	if len(s.cfg.Exporters) == 0 {
		return nil, errors.New("no exporters configured")
	}
	if outDir == "" {
		outDir = filepath.Dir(ds.Source)
	}
	base := strings.TrimSuffix(filepath.Base(ds.Source), filepath.Ext(ds.Source))

	var written []string
	for _, e := range s.cfg.Exporters {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		dest := filepath.Join(outDir, base+e.Extension())
		if err := e.Export(ctx, ds, dest); err != nil {
			return written, fmt.Errorf("%s export of %s failed: %w", e.Name(), ds.Source, err)
		}
		s.logger.Debug("exported", "format", e.Name(), "dest", dest)

		if s.cfg.Publisher != nil {
			key := path.Join(s.cfg.PublishPrefix, filepath.Base(dest))
			if err := s.cfg.Publisher.Publish(ctx, dest, key); err != nil {
				return written, fmt.Errorf("failed to publish %s: %w", dest, err)
			}
			s.logger.Debug("published", "key", key)
		}
		written = append(written, dest)
	}
	return written, nil
}

// Convert reads the ODF file at p and exports it into outDir.
func (s *Service) Convert(ctx context.Context, p, outDir string) ([]string, error) {
	ds, err := s.ReadFile(p)
	var written []string
	if err == nil {
		written, err = s.Export(ctx, ds, outDir)
	}

	s.mu.Lock()
	if err != nil {
		s.failed++
	} else {
		s.converted++
	}
	s.mu.Unlock()

	event := ConversionEvent{Source: p, Err: err, Timestamp: time.Now()}
	if err != nil {
		s.logger.Error("conversion failed", "path", p, "error", err)
		s.emit(ctx, event)
		return nil, err
	}
	s.logger.Info("converted", "path", p, "rows", ds.Table.Rows, "columns", len(ds.Table.Columns))
	event.Outputs = written
	event.Rows = ds.Table.Rows
	s.emit(ctx, event)
	return written, nil
}

func (s *Service) emit(ctx context.Context, e ConversionEvent) {
	if s.cfg.Events == nil {
		return
	}
	select {
	case s.cfg.Events <- e:
	case <-ctx.Done():
	}
}
