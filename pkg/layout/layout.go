// Package layout defines the serialization format for grid layouts and the
// persistence collaborator the engine hands committed positions to.
//
// The engine itself never blocks on persistence: it always produces the
// complete desired position set, and stores apply it as one batch so an
// external layer can retry idempotently. Storage backends mirror the usual
// deployment shapes:
//   - memory: in-process store for tests and the demo TUI
//   - file: JSON files for CLI usage
//   - redis: shared store for multi-instance deployments
//   - mongo: durable document store, one document per grid
//
// Grid IDs namespace layouts within a store; nested grids persist under
// their own IDs and never share state with their parent.
package layout

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/grid"
)

// Position is one block's committed rectangle on the wire.
type Position struct {
	BlockID string `json:"block_id" bson:"block_id"`
	X       int    `json:"x" bson:"x"`
	Y       int    `json:"y" bson:"y"`
	W       int    `json:"w" bson:"w"`
	H       int    `json:"h" bson:"h"`
}

// Rect converts the position to a grid rectangle.
func (p Position) Rect() grid.Rect {
	return grid.Rect{X: p.X, Y: p.Y, W: p.W, H: p.H}
}

// Layout is the canonical serialization format for one grid instance.
// The format is designed for round-trip fidelity: export → import produces
// an identical model.
type Layout struct {
	Columns int        `json:"columns" bson:"columns"`
	Blocks  []Position `json:"blocks" bson:"blocks"`
}

// PositionOf converts a block to its wire representation.
func PositionOf(b grid.Block) Position {
	return Position{
		BlockID: b.ID,
		X:       b.Rect.X,
		Y:       b.Rect.Y,
		W:       b.Rect.W,
		H:       b.Rect.H,
	}
}

// PositionsOf converts blocks to wire positions, preserving order.
func PositionsOf(blocks []grid.Block) []Position {
	out := make([]Position, len(blocks))
	for i, b := range blocks {
		out[i] = PositionOf(b)
	}
	return out
}

// FromModel snapshots a model into its serialization format, blocks sorted
// by ID for deterministic output.
func FromModel(m *grid.Model) Layout {
	return Layout{
		Columns: m.Columns(),
		Blocks:  PositionsOf(m.Blocks()),
	}
}

// ToModel builds a grid model from a persisted layout, applying defaults
// as the constraints of every block. It fails with INVALID_LAYOUT when the
// stored geometry violates the grid invariants - a persisted layout is
// expected to be consistent, and silently "fixing" it would hide storage
// corruption.
func ToModel(l Layout, defaults grid.Constraints) (*grid.Model, error) {
	m, err := grid.NewModel(l.Columns)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLayout, err, "layout columns")
	}
	for _, p := range l.Blocks {
		b := grid.Block{ID: p.BlockID, Rect: p.Rect(), Constraints: defaults}
		if err := m.Add(b); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidLayout, err, "layout block %s", p.BlockID)
		}
	}
	return m, nil
}

// Merge overlays position updates onto the layout. Updates for unknown
// block IDs are appended, so a merge can introduce blocks created by
// another collaborator. The result's blocks are sorted by ID.
func (l Layout) Merge(updates []Position) Layout {
	byID := make(map[string]Position, len(l.Blocks)+len(updates))
	for _, p := range l.Blocks {
		byID[p.BlockID] = p
	}
	for _, p := range updates {
		byID[p.BlockID] = p
	}

	out := Layout{Columns: l.Columns, Blocks: make([]Position, 0, len(byID))}
	for _, p := range byID {
		out.Blocks = append(out.Blocks, p)
	}
	slices.SortFunc(out.Blocks, func(a, b Position) int {
		return strings.Compare(a.BlockID, b.BlockID)
	})
	return out
}

// Marshal encodes the layout as indented JSON.
func (l Layout) Marshal() ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// Unmarshal decodes JSON bytes into a Layout.
func Unmarshal(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidLayout, err, "parse layout")
	}
	return l, nil
}
