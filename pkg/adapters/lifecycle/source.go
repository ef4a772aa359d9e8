package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/odf/pkg/core"
)

type conversionSource struct {
	events <-chan core.ConversionEvent
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits conversion events.
// It bridges the typed ConversionEvent channel to the generic lifecycle Event interface.
func NewSource(events <-chan core.ConversionEvent) lifecycle.Source {
	return &conversionSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
}

func (s *conversionSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start forwards events until the input closes or ctx is done, then closes Events.
func (s *conversionSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
