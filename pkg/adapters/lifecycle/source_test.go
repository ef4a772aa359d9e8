package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/odf/pkg/core"
)

func TestSource_Forwards(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan core.ConversionEvent, 2)
	src := NewSource(in)
	if err := src.Start(ctx); err != nil {
		t.Fatal(err)
	}

	in <- core.ConversionEvent{Source: "a.odf", Rows: 3, Outputs: []string{"a.nc"}}
	in <- core.ConversionEvent{Source: "b.odf", Err: errors.New("boom")}
	close(in)

	var got []string
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e, ok := <-src.Events():
			if !ok {
				if len(got) != 2 {
					t.Fatalf("expected 2 events, got %v", got)
				}
				if got[0] != "convert a.odf: 3 rows -> 1 files" || got[1] != "convert b.odf: boom" {
					t.Errorf("unexpected events %v", got)
				}
				return
			}
			got = append(got, e.String())
		case <-timeout:
			t.Fatal("timed out waiting for events")
		}
	}
}

func TestSource_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := NewSource(make(chan core.ConversionEvent))
	if err := src.Start(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()

	select {
	case _, ok := <-src.Events():
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("source did not stop")
	}
}
