package tui

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/integrators"
	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/record"
	"github.com/san-kum/threebody/internal/sim"
)

func TestLiveRendererDrawsEveryStep(t *testing.T) {
	sys, err := physics.New(
		[]float64{1, 1, 1},
		[][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		[][]float64{{0, 0, 0}, {0, 1, 0}, {-1, 0, 0}},
		1,
	)
	if err != nil {
		t.Fatal(err)
	}
	cfg := dynamo.Config{Dt: 0.001, Duration: 0.01}

	var buf bytes.Buffer
	live := NewLiveRenderer("reference", cfg.Steps(), 0)
	live.SetOutput(&buf)

	s := sim.New(sys, integrators.NewRK4())
	s.AddObserver(live)
	live.Start()
	if _, err := s.Run(context.Background(), cfg, nil); err != nil {
		t.Fatal(err)
	}
	live.Stop()

	if live.Frames() != cfg.Steps() {
		t.Errorf("expected %d frames, got %d", cfg.Steps(), live.Frames())
	}
	out := buf.String()
	for _, want := range []string{"reference", "100.0%", "r12=", hideCursor, showCursor} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestLiveRendererThrottles(t *testing.T) {
	recs := make([]record.Record, 50)
	for i := range recs {
		s := make(dynamo.State, physics.StateDim)
		s[0], s[3], s[6] = 1, -1, 0.5
		recs[i] = record.Record{Time: float64(i), State: s, Total: -1}
	}

	var buf bytes.Buffer
	live := NewLiveRenderer("throttled", len(recs), 1)
	live.SetOutput(&buf)
	for i, rec := range recs {
		live.OnStep(i, rec)
	}

	// first and last steps always draw; everything in between falls
	// inside the one-second frame window
	if live.Frames() != 2 {
		t.Errorf("expected 2 frames, got %d", live.Frames())
	}
}

func TestLiveRendererProjection(t *testing.T) {
	live := NewLiveRenderer("p", 1, 0)
	live.SetOutput(io.Discard)
	s := make(dynamo.State, physics.StateDim)
	s[0], s[3], s[7] = 1, -1, 1
	live.OnStep(0, record.Record{State: s})

	frame := strings.Join(func() []string {
		rows := make([]string, len(live.canvas))
		for i, row := range live.canvas {
			rows[i] = string(row)
		}
		return rows
	}(), "\n")
	for _, g := range glyphs {
		if !strings.ContainsRune(frame, g) {
			t.Errorf("body %c not drawn", g)
		}
	}

	if _, ok := live.project(1e9, 0); ok {
		t.Error("far point should be off canvas")
	}
}
