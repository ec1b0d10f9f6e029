package grid

import (
	"slices"
	"strings"

	"github.com/matzehuels/gridboard/pkg/errors"
)

// Model holds the blocks of one grid instance and its column count.
//
// The zero value is not usable - construct with NewModel. A Model is driven
// by exactly one logical owner (an interaction controller or a service
// handler) and is not safe for concurrent mutation; this matches the
// engine's single-owner execution model and avoids locking on the hot path.
type Model struct {
	columns int
	blocks  map[string]*Block
}

// NewModel creates an empty grid model with the given column count.
func NewModel(columns int) (*Model, error) {
	if columns < 1 {
		return nil, errors.New(errors.ErrCodeInvalidColumns, "columns must be >= 1, got %d", columns)
	}
	return &Model{
		columns: columns,
		blocks:  make(map[string]*Block),
	}, nil
}

// Columns returns the grid's current column count.
func (m *Model) Columns() int { return m.columns }

// Len returns the number of blocks in the model.
func (m *Model) Len() int { return len(m.blocks) }

// Contains reports whether a block with the given ID exists.
func (m *Model) Contains(id string) bool {
	_, ok := m.blocks[id]
	return ok
}

// Get returns a copy of the block with the given ID.
func (m *Model) Get(id string) (Block, bool) {
	b, ok := m.blocks[id]
	if !ok {
		return Block{}, false
	}
	return *b, true
}

// Blocks returns copies of all blocks, sorted by ID for deterministic
// iteration. Sorted order is what makes reflow's tie-breaks reproducible.
func (m *Model) Blocks() []Block {
	out := make([]Block, 0, len(m.blocks))
	for _, b := range m.blocks {
		out = append(out, *b)
	}
	slices.SortFunc(out, func(a, b Block) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Add inserts a new block. The rect must lie in bounds and must not overlap
// any existing block - blocks are created by the host layout system, which
// is expected to hand the engine a consistent starting state.
func (m *Model) Add(b Block) error {
	if err := errors.ValidateBlockID(b.ID); err != nil {
		return err
	}
	if _, ok := m.blocks[b.ID]; ok {
		return errors.New(errors.ErrCodeDuplicateBlock, "block %q already exists", b.ID)
	}
	if !b.Rect.InBounds(m.columns) {
		return errors.New(errors.ErrCodeInvalidRect, "block %q rect %s out of bounds for %d columns", b.ID, b.Rect, m.columns)
	}
	for _, other := range m.blocks {
		if b.Rect.Overlaps(other.Rect) {
			return errors.New(errors.ErrCodeInvalidRect, "block %q rect %s overlaps block %q", b.ID, b.Rect, other.ID)
		}
	}
	cp := b
	m.blocks[b.ID] = &cp
	return nil
}

// Remove deletes a block and reports whether it existed. Removing a block
// never repositions the others.
func (m *Model) Remove(id string) bool {
	if _, ok := m.blocks[id]; !ok {
		return false
	}
	delete(m.blocks, id)
	return true
}

// CanPlace reports whether the block with the given ID could occupy r:
// r must lie within the grid's columns and must not overlap any other
// block. The block's own current rect is ignored, so a no-op placement
// is always allowed. Unknown IDs report false.
func (m *Model) CanPlace(id string, r Rect) bool {
	if !m.Contains(id) {
		return false
	}
	if !r.InBounds(m.columns) {
		return false
	}
	for otherID, other := range m.blocks {
		if otherID == id {
			continue
		}
		if r.Overlaps(other.Rect) {
			return false
		}
	}
	return true
}

// Place moves or resizes a block after full validation. It fails with
// UNKNOWN_BLOCK for a missing ID and INVALID_RECT when CanPlace rejects
// the rect, leaving the model untouched in both cases.
func (m *Model) Place(id string, r Rect) error {
	b, ok := m.blocks[id]
	if !ok {
		return errors.New(errors.ErrCodeUnknownBlock, "no block %q", id)
	}
	if !m.CanPlace(id, r) {
		return errors.New(errors.ErrCodeInvalidRect, "cannot place block %q at %s", id, r)
	}
	b.Rect = r
	return nil
}

// Apply sets a block's rect checking only the boundary invariant, not
// overlap. Reflow commits go through Apply: when the relaxation hits its
// iteration cap the best-effort result may still contain overlaps, and
// committing it is preferred over looping forever.
func (m *Model) Apply(id string, r Rect) error {
	b, ok := m.blocks[id]
	if !ok {
		return errors.New(errors.ErrCodeUnknownBlock, "no block %q", id)
	}
	if !r.InBounds(m.columns) {
		return errors.New(errors.ErrCodeInvalidRect, "rect %s out of bounds for %d columns", r, m.columns)
	}
	b.Rect = r
	return nil
}

// SetColumns changes the grid's column count, re-clamping every block so
// the boundary invariant holds: a block that no longer fits is first shifted
// left, then narrowed only if it is wider than the whole grid. It returns
// the full updated block list (sorted by ID) and the
// number of blocks that required clamping, so the caller can persist the
// complete layout and inform the user.
//
// Clamping can introduce new overlaps; SetColumns guarantees only the
// boundary invariant and never triggers reflow.
func (m *Model) SetColumns(n int) ([]Block, int, error) {
	if n < 1 {
		return nil, 0, errors.New(errors.ErrCodeInvalidColumns, "columns must be >= 1, got %d", n)
	}

	clamped := 0
	for _, b := range m.blocks {
		r := b.Rect
		if r.X < 0 {
			r.X = 0
		}
		// Shift left before narrowing: a block that still fits at its
		// width keeps it.
		if r.W > n {
			r.W = n
		}
		if r.X+r.W > n {
			r.X = n - r.W
		}
		if r != b.Rect {
			b.Rect = r
			clamped++
		}
	}
	m.columns = n

	return m.Blocks(), clamped, nil
}

// Clone returns a deep copy of the model. Preview reflow runs against a
// clone so the committed state is never touched mid-drag.
func (m *Model) Clone() *Model {
	cp := &Model{
		columns: m.columns,
		blocks:  make(map[string]*Block, len(m.blocks)),
	}
	for id, b := range m.blocks {
		bc := *b
		cp.blocks[id] = &bc
	}
	return cp
}

// Validate checks both model invariants: every rect in bounds and no two
// rects overlapping. It returns the first violation found, or nil.
func (m *Model) Validate() error {
	blocks := m.Blocks()
	for i, a := range blocks {
		if !a.Rect.InBounds(m.columns) {
			return errors.New(errors.ErrCodeInvalidRect, "block %q rect %s out of bounds for %d columns", a.ID, a.Rect, m.columns)
		}
		for _, b := range blocks[i+1:] {
			if a.Rect.Overlaps(b.Rect) {
				return errors.New(errors.ErrCodeInvalidRect, "blocks %q and %q overlap at %s / %s", a.ID, b.ID, a.Rect, b.Rect)
			}
		}
	}
	return nil
}
