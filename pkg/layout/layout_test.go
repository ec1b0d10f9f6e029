package layout

import (
	"context"
	"testing"

	"github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/grid"
)

func testLayout() Layout {
	return Layout{
		Columns: 4,
		Blocks: []Position{
			{BlockID: "a", X: 0, Y: 0, W: 2, H: 2},
			{BlockID: "b", X: 2, Y: 0, W: 2, H: 2},
		},
	}
}

func TestRoundTripModel(t *testing.T) {
	l := testLayout()

	m, err := ToModel(l, grid.Constraints{MinW: 1, MinH: 1})
	if err != nil {
		t.Fatalf("ToModel: %v", err)
	}
	if m.Columns() != 4 || m.Len() != 2 {
		t.Fatalf("model = %d columns, %d blocks", m.Columns(), m.Len())
	}

	back := FromModel(m)
	if back.Columns != l.Columns || len(back.Blocks) != len(l.Blocks) {
		t.Fatalf("round trip shape mismatch: %+v", back)
	}
	for i := range l.Blocks {
		if back.Blocks[i] != l.Blocks[i] {
			t.Errorf("block %d: %+v != %+v", i, back.Blocks[i], l.Blocks[i])
		}
	}
}

func TestToModelRejectsInconsistentLayout(t *testing.T) {
	l := Layout{
		Columns: 4,
		Blocks: []Position{
			{BlockID: "a", X: 0, Y: 0, W: 2, H: 2},
			{BlockID: "b", X: 1, Y: 1, W: 2, H: 2}, // overlaps a
		},
	}
	if _, err := ToModel(l, grid.Constraints{}); !errors.Is(err, errors.ErrCodeInvalidLayout) {
		t.Errorf("ToModel error = %v, want INVALID_LAYOUT", err)
	}
}

func TestMerge(t *testing.T) {
	l := testLayout()
	merged := l.Merge([]Position{
		{BlockID: "b", X: 2, Y: 2, W: 2, H: 2}, // update
		{BlockID: "c", X: 0, Y: 2, W: 1, H: 1}, // new block from a collaborator
	})

	if len(merged.Blocks) != 3 {
		t.Fatalf("merged has %d blocks, want 3", len(merged.Blocks))
	}
	if merged.Blocks[1].Y != 2 {
		t.Errorf("b not updated: %+v", merged.Blocks[1])
	}
	if merged.Blocks[2].BlockID != "c" {
		t.Errorf("blocks not sorted by ID: %+v", merged.Blocks)
	}

	// Merging is idempotent: replaying the same batch changes nothing.
	again := merged.Merge([]Position{{BlockID: "b", X: 2, Y: 2, W: 2, H: 2}})
	if len(again.Blocks) != 3 || again.Blocks[1] != merged.Blocks[1] {
		t.Errorf("replayed merge changed the layout: %+v", again)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	if _, err := s.Load(ctx, "dash"); !errors.Is(err, errors.ErrCodeUnknownGrid) {
		t.Errorf("Load(missing) error = %v, want UNKNOWN_GRID", err)
	}

	if err := s.SaveLayout(ctx, "dash", testLayout()); err != nil {
		t.Fatalf("SaveLayout: %v", err)
	}
	if err := s.SavePositions(ctx, "dash", []Position{{BlockID: "a", X: 0, Y: 2, W: 2, H: 2}}); err != nil {
		t.Fatalf("SavePositions: %v", err)
	}

	l, err := s.Load(ctx, "dash")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if l.Blocks[0].Y != 2 {
		t.Errorf("update not applied: %+v", l.Blocks[0])
	}

	if err := s.SavePositions(ctx, "other", nil); !errors.Is(err, errors.ErrCodeUnknownGrid) {
		t.Errorf("SavePositions(missing) error = %v, want UNKNOWN_GRID", err)
	}

	if err := s.Delete(ctx, "dash"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Load(ctx, "dash"); !errors.Is(err, errors.ErrCodeUnknownGrid) {
		t.Errorf("Load after delete error = %v, want UNKNOWN_GRID", err)
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer s.Close()

	if err := s.SaveLayout(ctx, "dash", testLayout()); err != nil {
		t.Fatalf("SaveLayout: %v", err)
	}
	if err := s.SavePositions(ctx, "dash", []Position{{BlockID: "b", X: 2, Y: 4, W: 2, H: 2}}); err != nil {
		t.Fatalf("SavePositions: %v", err)
	}

	l, err := s.Load(ctx, "dash")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(l.Blocks) != 2 || l.Blocks[1].Y != 4 {
		t.Errorf("loaded layout = %+v", l)
	}

	if _, err := s.Load(ctx, "missing"); !errors.Is(err, errors.ErrCodeUnknownGrid) {
		t.Errorf("Load(missing) error = %v, want UNKNOWN_GRID", err)
	}
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete(missing) = %v, want nil", err)
	}
}
