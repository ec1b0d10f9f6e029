// Package pkg provides the core libraries for Gridboard dashboard layout.
//
// # Overview
//
// Gridboard arranges dashboard blocks on an integer column/row grid. Blocks
// never overlap, a move or resize pushes displaced blocks downward, and the
// whole grid can be re-targeted to a different column count. The pkg
// directory is organized into four main areas:
//
//  1. [grid] - Domain logic (the model, reflow, interaction, expand/collapse)
//  2. [layout] - Serialization and persistent stores (memory, file, Redis, MongoDB)
//  3. [policy] - Configuration of grid geometry and behavior
//  4. [export] - SVG and PNG rendering of saved layouts
//
// # Architecture
//
// The typical data flow through Gridboard:
//
//	Pointer/Keyboard Input
//	         ↓
//	    [grid/interaction] package (sessions, previews, commits)
//	         ↓
//	    [grid] package (placement rules, invariants)
//	         ↓
//	    [grid/reflow] package (collision resolution)
//	         ↓
//	    [layout] package (persistence)
//
// # Quick Start
//
//	m, _ := grid.NewModel(12)
//	_ = m.Add(grid.Block{ID: "chart", Rect: grid.Rect{X: 0, Y: 0, W: 4, H: 2}})
//
//	engine, _ := reflow.New("push_down", 0)
//	ctrl, _ := interaction.New(m, interaction.Config{
//	    ContainerWidth: 1200,
//	    RowHeight:      80,
//	    Gap:            8,
//	    ReflowEnabled:  true,
//	    Reflow:         engine,
//	})
//	_, _ = ctrl.KeyboardMove(ctx, "chart", 1, 0)
//
// Supporting packages: [errors] for coded domain errors, [events] for
// observation hooks, [buildinfo] for version stamping.
package pkg
