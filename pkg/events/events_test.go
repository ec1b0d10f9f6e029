package events

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridboard/pkg/grid"
)

// recorder captures event names in arrival order.
type recorder struct {
	NoopSink
	seen []string
}

func (r *recorder) OnDragStart(string, grid.Rect)        { r.seen = append(r.seen, "drag-start") }
func (r *recorder) OnColumnsChanged(int, int)            { r.seen = append(r.seen, "columns") }
func (r *recorder) OnBlockedPlacement(string, grid.Rect) { r.seen = append(r.seen, "blocked") }
func (r *recorder) OnReflowApplied(string, []grid.Block) { r.seen = append(r.seen, "reflow") }

func TestMultiSinkFansOut(t *testing.T) {
	a := &recorder{}
	b := &recorder{}
	m := NewMultiSink(a, nil, b)

	m.OnDragStart("x", grid.Rect{})
	m.OnColumnsChanged(6, 1)
	m.OnBlockedPlacement("x", grid.Rect{})
	m.OnReflowApplied("x", nil)

	want := []string{"drag-start", "columns", "blocked", "reflow"}
	for _, r := range []*recorder{a, b} {
		if len(r.seen) != len(want) {
			t.Fatalf("seen = %v, want %v", r.seen, want)
		}
		for i := range want {
			if r.seen[i] != want[i] {
				t.Errorf("seen[%d] = %s, want %s", i, r.seen[i], want[i])
			}
		}
	}
}

func TestNoopSinkImplementsSink(t *testing.T) {
	// Embedding NoopSink must satisfy the full interface.
	var _ Sink = NoopSink{}
	var _ Sink = &recorder{}
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	s := NewLogSink(logger)
	s.OnDragEnd("chart-1", grid.Rect{X: 0, Y: 0, W: 2, H: 2}, grid.Rect{X: 1, Y: 0, W: 2, H: 2}, true)
	s.OnColumnsChanged(6, 2)

	out := buf.String()
	if !strings.Contains(out, "drag end") || !strings.Contains(out, "chart-1") {
		t.Errorf("missing drag end record: %q", out)
	}
	if !strings.Contains(out, "columns changed") {
		t.Errorf("missing columns record: %q", out)
	}
}
