// Package expand manages the single toggle-able "expanded" block of a grid:
// snapshotting its geometry, growing it to a configured target, cascading a
// push-down delta to the blocks beneath it, and restoring everything on
// collapse.
//
// The cascade is a direct delta shift, not a run of the general reflow
// engine: every block whose column span overlaps the target's and whose y
// is at or below the expanding block's top edge moves down by exactly the
// height gained, and moves back up by the same delta on collapse, floored
// at its own pre-expand row. If blocks are moved independently while one is
// expanded, the delta-based restoration is not guaranteed to reproduce the
// pre-expand layout exactly; that limitation is accepted rather than paid
// for with a full-grid snapshot.
package expand

import (
	"context"

	"github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/events"
	"github.com/matzehuels/gridboard/pkg/grid"
	"github.com/matzehuels/gridboard/pkg/layout"
)

// Mode selects how an expanded block relates to its neighbors.
type Mode string

const (
	// ModeOverlay grows the block in place; neighbors keep their rows and
	// the host renders the expanded block above them.
	ModeOverlay Mode = "overlay"

	// ModeReflow pushes the blocks beneath the expanding one downward by
	// the height gained.
	ModeReflow Mode = "reflow"
)

// ParseMode validates a mode name from configuration.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeOverlay, ModeReflow:
		return Mode(s), nil
	default:
		return "", errors.New(errors.ErrCodeInvalidPolicy, "expand mode must be %q or %q, got %q", ModeOverlay, ModeReflow, s)
	}
}

// Persister receives committed position batches; see the interaction
// package for the fire-and-forget contract.
type Persister interface {
	SavePositions(ctx context.Context, gridID string, updates []layout.Position) error
}

// Config wires the controller's collaborators and expand targets.
type Config struct {
	GridID string

	Mode Mode

	// FullWidth stretches the expanded block across all columns.
	FullWidth bool

	// MinRows is the minimum height of the expanded block, in rows.
	MinRows int

	// Sink receives expand/collapse events; nil defaults to a no-op sink.
	Sink events.Sink

	// Persister receives committed batches; nil disables persistence.
	Persister Persister
}

// State describes the currently expanded block. At most one exists per
// grid instance; it is created on expand and cleared on collapse.
type State struct {
	BlockID  string
	Original grid.Rect
	Mode     Mode
}

// Result reports the geometry an expand or collapse committed.
type Result struct {
	BlockID string
	From    grid.Rect
	To      grid.Rect

	// Shifted lists the neighbor blocks the cascade moved.
	Shifted []grid.Block

	// Positions is the complete persisted batch: the toggled block plus
	// every shifted neighbor.
	Positions []layout.Position
}

// Controller drives expand/collapse for one grid model.
type Controller struct {
	model *grid.Model
	cfg   Config
	sink  events.Sink

	state  *State
	deltaH int
	// preY records each shifted block's pre-expand row, the floor for the
	// collapse pull-up.
	preY map[string]int
}

// New creates a controller over model.
func New(model *grid.Model, cfg Config) (*Controller, error) {
	if _, err := ParseMode(string(cfg.Mode)); err != nil {
		return nil, err
	}
	if cfg.MinRows < 1 {
		return nil, errors.New(errors.ErrCodeInvalidPolicy, "min rows must be >= 1, got %d", cfg.MinRows)
	}
	if cfg.Sink == nil {
		cfg.Sink = events.NoopSink{}
	}
	return &Controller{model: model, cfg: cfg, sink: cfg.Sink}, nil
}

// Expanded returns the current expand state, if any.
func (c *Controller) Expanded() (State, bool) {
	if c.state == nil {
		return State{}, false
	}
	return *c.state, true
}

// Expand grows the block to its target rectangle, snapshotting the
// original for collapse. In reflow mode, every other block whose column
// span overlaps the target's and whose top edge is at or below the
// original's moves down by the height gained.
func (c *Controller) Expand(ctx context.Context, id string) (Result, error) {
	if c.state != nil {
		return Result{}, errors.New(errors.ErrCodeAlreadyExpanded, "block %q is already expanded", c.state.BlockID)
	}
	b, ok := c.model.Get(id)
	if !ok {
		return Result{}, errors.New(errors.ErrCodeUnknownBlock, "no block %q", id)
	}

	original := b.Rect
	target := original
	if c.cfg.FullWidth {
		target.X = 0
		target.W = c.model.Columns()
	}
	if target.H < c.cfg.MinRows {
		target.H = c.cfg.MinRows
	}

	if err := c.model.Apply(id, target); err != nil {
		return Result{}, err
	}

	c.state = &State{BlockID: id, Original: original, Mode: c.cfg.Mode}
	c.deltaH = target.H - original.H
	c.preY = make(map[string]int)

	res := Result{BlockID: id, From: original, To: target}

	if c.cfg.Mode == ModeReflow && c.deltaH > 0 {
		for _, other := range c.model.Blocks() {
			if other.ID == id {
				continue
			}
			if !other.Rect.SharesColumns(target) || other.Rect.Y < original.Y {
				continue
			}
			c.preY[other.ID] = other.Rect.Y
			r := other.Rect
			r.Y += c.deltaH
			if err := c.model.Apply(other.ID, r); err != nil {
				return Result{}, err
			}
			other.Rect = r
			res.Shifted = append(res.Shifted, other)
		}
	}

	c.sink.OnBlockExpanded(id, original, target)

	expanded, _ := c.model.Get(id)
	res.Positions = append([]layout.Position{layout.PositionOf(expanded)}, layout.PositionsOf(res.Shifted)...)
	c.persist(ctx, res.Positions)
	return res, nil
}

// Collapse restores the expanded block's original rectangle exactly and
// pulls each block the expand shifted back up by the same delta, floored
// at its own pre-expand row. A block that was removed while expanded is
// skipped; if the expanded block itself is gone, the state is simply
// cleared.
func (c *Controller) Collapse(ctx context.Context) (Result, error) {
	if c.state == nil {
		return Result{}, errors.New(errors.ErrCodeNotExpanded, "no block is expanded")
	}
	st := *c.state

	if !c.model.Contains(st.BlockID) {
		c.clear()
		return Result{BlockID: st.BlockID}, nil
	}

	expanded, _ := c.model.Get(st.BlockID)
	if err := c.model.Apply(st.BlockID, st.Original); err != nil {
		return Result{}, err
	}

	res := Result{BlockID: st.BlockID, From: expanded.Rect, To: st.Original}

	for _, other := range c.model.Blocks() {
		floor, shifted := c.preY[other.ID]
		if !shifted {
			continue
		}
		r := other.Rect
		r.Y -= c.deltaH
		if r.Y < floor {
			r.Y = floor
		}
		if r == other.Rect {
			continue
		}
		if err := c.model.Apply(other.ID, r); err != nil {
			return Result{}, err
		}
		other.Rect = r
		res.Shifted = append(res.Shifted, other)
	}

	c.sink.OnBlockCollapsed(st.BlockID, st.Original)

	restored, _ := c.model.Get(st.BlockID)
	res.Positions = append([]layout.Position{layout.PositionOf(restored)}, layout.PositionsOf(res.Shifted)...)
	c.persist(ctx, res.Positions)
	c.clear()
	return res, nil
}

func (c *Controller) clear() {
	c.state = nil
	c.deltaH = 0
	c.preY = nil
}

func (c *Controller) persist(ctx context.Context, positions []layout.Position) {
	if c.cfg.Persister == nil || len(positions) == 0 {
		return
	}
	_ = c.cfg.Persister.SavePositions(ctx, c.cfg.GridID, positions)
}
