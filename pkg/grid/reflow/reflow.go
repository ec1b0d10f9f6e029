// Package reflow resolves overlaps introduced by moving, resizing, or
// expanding a block, using a bounded relaxation over all blocks in the grid.
//
// Resolution is pluggable through the Strategy interface. The only strategy
// implemented today is push-down, which moves the lower-priority block of
// each overlapping pair downward until clear. The algorithm is a heuristic
// fixed point: deterministic for a fixed iteration order, guaranteed to
// terminate by an iteration cap, but not guaranteed to find a
// minimal-displacement solution. A configuration that fails to converge
// within the cap is committed in its best-effort, partially resolved state
// rather than looping forever.
//
// The engine runs in two modes. Preview computes the resolved layout on a
// detached copy of the model so a live drag can show the result without
// touching committed state; each call starts from the committed layout, so
// prior preview displacement resets frame by frame. Commit mutates the
// model and returns the changed blocks for batch persistence.
package reflow

import (
	"github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/grid"
)

// DefaultIterationCap bounds the relaxation passes per invocation.
// Dashboard-scale grids converge in a handful of passes; the cap is a
// safety valve for pathological configurations.
const DefaultIterationCap = 100

// StrategyPushDown is the name of the push-down resolution strategy.
const StrategyPushDown = "push_down"

// Strategy eliminates overlaps among a set of blocks, treating the moved
// block's rectangle as fixed. Implementations mutate blocks in place and
// report whether they converged within iterationCap passes.
type Strategy interface {
	// Name returns the strategy's configuration name.
	Name() string

	// Resolve runs the relaxation over blocks. The moved block (matched by
	// ID, may be empty) is never displaced. Iteration order over blocks
	// is the tie-break for pairs not involving the moved block, so callers
	// must pass a deterministically ordered slice.
	Resolve(blocks []grid.Block, movedID string, iterationCap int) (converged bool)
}

// NewStrategy returns the strategy registered under name. The empty name
// selects push-down.
func NewStrategy(name string) (Strategy, error) {
	switch name {
	case "", StrategyPushDown:
		return PushDown{}, nil
	default:
		return nil, errors.New(errors.ErrCodeUnknownStrategy, "unknown reflow strategy %q", name)
	}
}

// Engine applies a Strategy to a grid model in preview or commit mode.
type Engine struct {
	strategy Strategy
	cap      int
}

// New creates an engine with the named strategy and iteration cap.
// A cap below 1 selects DefaultIterationCap.
func New(strategyName string, iterationCap int) (*Engine, error) {
	s, err := NewStrategy(strategyName)
	if err != nil {
		return nil, err
	}
	if iterationCap < 1 {
		iterationCap = DefaultIterationCap
	}
	return &Engine{strategy: s, cap: iterationCap}, nil
}

// Strategy returns the engine's resolution strategy.
func (e *Engine) Strategy() Strategy { return e.strategy }

// Preview is the resolved layout for one frame of a live drag.
type Preview struct {
	// Rects holds the previewed rectangle of every block in the grid,
	// including unmoved ones, keyed by block ID.
	Rects map[string]grid.Rect

	// Changed lists the IDs of blocks whose previewed rect differs from
	// their committed rect, sorted by ID. The moved block is included.
	Changed []string

	// Converged is false when the relaxation hit its iteration cap.
	Converged bool
}

// Preview computes the layout that would result from placing the moved
// block at candidate and reflowing, without mutating m. The candidate must
// lie within the grid's columns.
func (e *Engine) Preview(m *grid.Model, movedID string, candidate grid.Rect) (Preview, error) {
	work := m.Clone()
	if err := work.Apply(movedID, candidate); err != nil {
		return Preview{}, err
	}

	blocks := work.Blocks()
	converged := e.strategy.Resolve(blocks, movedID, e.cap)

	p := Preview{
		Rects:     make(map[string]grid.Rect, len(blocks)),
		Converged: converged,
	}
	for _, b := range blocks {
		p.Rects[b.ID] = b.Rect
		if committed, ok := m.Get(b.ID); ok && committed.Rect != b.Rect {
			p.Changed = append(p.Changed, b.ID)
		}
	}
	return p, nil
}

// Commit reflows m in place after the block with movedID changed, and
// returns the blocks the relaxation displaced (sorted by ID; the moved
// block itself is not in the list). The returned set is what the caller
// hands to the persistence collaborator as one batch.
func (e *Engine) Commit(m *grid.Model, movedID string) ([]grid.Block, error) {
	if !m.Contains(movedID) {
		return nil, errors.New(errors.ErrCodeUnknownBlock, "no block %q", movedID)
	}

	blocks := m.Blocks()
	before := make(map[string]grid.Rect, len(blocks))
	for _, b := range blocks {
		before[b.ID] = b.Rect
	}

	e.strategy.Resolve(blocks, movedID, e.cap)

	var changed []grid.Block
	for _, b := range blocks {
		if b.Rect == before[b.ID] {
			continue
		}
		if err := m.Apply(b.ID, b.Rect); err != nil {
			return nil, err
		}
		changed = append(changed, b)
	}
	return changed, nil
}
