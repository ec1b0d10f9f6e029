// Package events defines the engine's outbound notification surface.
//
// Every interactive operation emits structured events - drag and resize
// lifecycles, keyboard steps, reflow results, expand/collapse, column
// changes, and blocked placements. Emissions are one-way and fire-and-
// forget: the engine never blocks on a listener and never inspects a
// listener's result.
//
// # Architecture
//
// The package uses a simple sink pattern:
//   - Define one Sink interface for all engine events
//   - Provide a no-op default implementation for embedding
//   - Compose multiple listeners with MultiSink
//
// Sinks are injected at construction time (the engine holds no ambient
// global registry), so two grid instances can report to entirely
// different listeners.
//
// # Usage
//
//	ctrl := interaction.New(model, interaction.Config{
//	    Sink: events.NewLogSink(logger),
//	})
//
// Listeners that only care about a few events embed NoopSink:
//
//	type persistTrigger struct {
//	    events.NoopSink
//	}
//
//	func (p *persistTrigger) OnReflowApplied(moved string, changed []grid.Block) {
//	    // schedule a save
//	}
package events

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridboard/pkg/grid"
)

// Sink receives structured notifications from the layout engine.
type Sink interface {
	// Drag lifecycle. committed is false when the drop was rejected and
	// the block reverted to from.
	OnDragStart(id string, from grid.Rect)
	OnDragEnd(id string, from, to grid.Rect, committed bool)

	// Resize lifecycle, mirroring drag.
	OnResizeStart(id string, from grid.Rect)
	OnResizeEnd(id string, from, to grid.Rect, committed bool)

	// Keyboard steps are synchronous: one event per committed step.
	OnKeyboardMove(id string, from, to grid.Rect)
	OnKeyboardResize(id string, from, to grid.Rect)

	// OnReflowApplied reports the blocks a commit-mode reflow displaced,
	// keyed off the block whose change triggered it.
	OnReflowApplied(moved string, changed []grid.Block)

	// Expand/collapse lifecycle.
	OnBlockExpanded(id string, from, to grid.Rect)
	OnBlockCollapsed(id string, restored grid.Rect)

	// OnColumnsChanged reports a column-count change and how many blocks
	// needed clamping to stay in bounds.
	OnColumnsChanged(columns, clamped int)

	// OnBlockedPlacement fires when a live candidate is rejected, for
	// transient UI feedback. Geometry is unchanged.
	OnBlockedPlacement(id string, candidate grid.Rect)
}

// =============================================================================
// No-op Implementation
// =============================================================================

// NoopSink is a Sink that ignores every event. Embed it to implement only
// the events a listener cares about.
type NoopSink struct{}

func (NoopSink) OnDragStart(string, grid.Rect)                  {}
func (NoopSink) OnDragEnd(string, grid.Rect, grid.Rect, bool)   {}
func (NoopSink) OnResizeStart(string, grid.Rect)                {}
func (NoopSink) OnResizeEnd(string, grid.Rect, grid.Rect, bool) {}
func (NoopSink) OnKeyboardMove(string, grid.Rect, grid.Rect)    {}
func (NoopSink) OnKeyboardResize(string, grid.Rect, grid.Rect)  {}
func (NoopSink) OnReflowApplied(string, []grid.Block)           {}
func (NoopSink) OnBlockExpanded(string, grid.Rect, grid.Rect)   {}
func (NoopSink) OnBlockCollapsed(string, grid.Rect)             {}
func (NoopSink) OnColumnsChanged(int, int)                      {}
func (NoopSink) OnBlockedPlacement(string, grid.Rect)           {}

// =============================================================================
// Logging Implementation
// =============================================================================

// LogSink writes every event to a structured logger at debug level.
type LogSink struct {
	logger *log.Logger
}

// NewLogSink creates a sink that logs events through logger.
func NewLogSink(logger *log.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) OnDragStart(id string, from grid.Rect) {
	s.logger.Debug("drag start", "block", id, "from", from)
}

func (s *LogSink) OnDragEnd(id string, from, to grid.Rect, committed bool) {
	s.logger.Debug("drag end", "block", id, "from", from, "to", to, "committed", committed)
}

func (s *LogSink) OnResizeStart(id string, from grid.Rect) {
	s.logger.Debug("resize start", "block", id, "from", from)
}

func (s *LogSink) OnResizeEnd(id string, from, to grid.Rect, committed bool) {
	s.logger.Debug("resize end", "block", id, "from", from, "to", to, "committed", committed)
}

func (s *LogSink) OnKeyboardMove(id string, from, to grid.Rect) {
	s.logger.Debug("keyboard move", "block", id, "from", from, "to", to)
}

func (s *LogSink) OnKeyboardResize(id string, from, to grid.Rect) {
	s.logger.Debug("keyboard resize", "block", id, "from", from, "to", to)
}

func (s *LogSink) OnReflowApplied(moved string, changed []grid.Block) {
	s.logger.Debug("reflow applied", "moved", moved, "displaced", len(changed))
}

func (s *LogSink) OnBlockExpanded(id string, from, to grid.Rect) {
	s.logger.Debug("block expanded", "block", id, "from", from, "to", to)
}

func (s *LogSink) OnBlockCollapsed(id string, restored grid.Rect) {
	s.logger.Debug("block collapsed", "block", id, "restored", restored)
}

func (s *LogSink) OnColumnsChanged(columns, clamped int) {
	s.logger.Debug("columns changed", "columns", columns, "clamped", clamped)
}

func (s *LogSink) OnBlockedPlacement(id string, candidate grid.Rect) {
	s.logger.Debug("blocked placement", "block", id, "candidate", candidate)
}

// =============================================================================
// Composition
// =============================================================================

// MultiSink fans every event out to each wrapped sink in order.
type MultiSink []Sink

// NewMultiSink composes sinks into one. Nil entries are dropped.
func NewMultiSink(sinks ...Sink) MultiSink {
	out := make(MultiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m MultiSink) OnDragStart(id string, from grid.Rect) {
	for _, s := range m {
		s.OnDragStart(id, from)
	}
}

func (m MultiSink) OnDragEnd(id string, from, to grid.Rect, committed bool) {
	for _, s := range m {
		s.OnDragEnd(id, from, to, committed)
	}
}

func (m MultiSink) OnResizeStart(id string, from grid.Rect) {
	for _, s := range m {
		s.OnResizeStart(id, from)
	}
}

func (m MultiSink) OnResizeEnd(id string, from, to grid.Rect, committed bool) {
	for _, s := range m {
		s.OnResizeEnd(id, from, to, committed)
	}
}

func (m MultiSink) OnKeyboardMove(id string, from, to grid.Rect) {
	for _, s := range m {
		s.OnKeyboardMove(id, from, to)
	}
}

func (m MultiSink) OnKeyboardResize(id string, from, to grid.Rect) {
	for _, s := range m {
		s.OnKeyboardResize(id, from, to)
	}
}

func (m MultiSink) OnReflowApplied(moved string, changed []grid.Block) {
	for _, s := range m {
		s.OnReflowApplied(moved, changed)
	}
}

func (m MultiSink) OnBlockExpanded(id string, from, to grid.Rect) {
	for _, s := range m {
		s.OnBlockExpanded(id, from, to)
	}
}

func (m MultiSink) OnBlockCollapsed(id string, restored grid.Rect) {
	for _, s := range m {
		s.OnBlockCollapsed(id, restored)
	}
}

func (m MultiSink) OnColumnsChanged(columns, clamped int) {
	for _, s := range m {
		s.OnColumnsChanged(columns, clamped)
	}
}

func (m MultiSink) OnBlockedPlacement(id string, candidate grid.Rect) {
	for _, s := range m {
		s.OnBlockedPlacement(id, candidate)
	}
}
