package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Marker           string   `json:"marker"`
	FallbackMarkers  []string `json:"fallback_markers,omitempty"`
	ParameterSection string   `json:"parameter_section"`
	Exporters        []string `json:"exporters"`
	Publishing       bool     `json:"publishing"`
	Read             int      `json:"read"`
	Converted        int      `json:"converted"`
	Failed           int      `json:"failed"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exporters := make([]string, 0, len(s.cfg.Exporters))
	for _, e := range s.cfg.Exporters {
		exporters = append(exporters, e.Name())
	}

	marker := s.cfg.Marker
	if marker == "" {
		marker = DefaultHeaderMarker
	}

	return ServiceState{
		Marker:           marker,
		FallbackMarkers:  s.cfg.FallbackMarkers,
		ParameterSection: s.cfg.Table.withDefaults().ParameterSection,
		Exporters:        exporters,
		Publishing:       s.cfg.Publisher != nil,
		Read:             s.read,
		Converted:        s.converted,
		Failed:           s.failed,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
