// Package grid implements the pure geometric core of the Gridboard layout
// engine: rectangles on an integer column/row grid, blocks with size
// constraints, and a model that maintains the non-overlap and boundary
// invariants over a set of blocks.
//
// # Invariants
//
// A Model maintains two invariants over committed state: no two distinct
// blocks' rectangles overlap, and every block satisfies
//
//	0 <= x, 0 <= y, x+w <= columns
//
// Placement validation is a boolean predicate (CanPlace), not an error:
// rejected geometry is a normal outcome that callers turn into a blocked
// visual state or a revert.
//
// # Ownership
//
// A Block's geometry belongs exclusively to the Model that contains it.
// Accessors return copies; mutation goes through Place, Apply, and
// SetColumns. The package is free of I/O and rendering concerns so its
// properties are testable in isolation.
//
// Collision checks scan every other block per call, O(n). Dashboards hold
// tens of blocks, not thousands, so no spatial index is used.
package grid
