package grid

import "fmt"

// Rect is an axis-aligned rectangle in integer grid cells.
// X/Y is the top-left cell; W/H the size in cells. Intervals are half-open:
// a rect occupies columns [X, X+W) and rows [Y, Y+H).
type Rect struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
	W int `json:"w" bson:"w"`
	H int `json:"h" bson:"h"`
}

// Right returns the exclusive right edge (X+W).
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the exclusive bottom edge (Y+H).
func (r Rect) Bottom() int { return r.Y + r.H }

// Valid reports whether the rect has non-negative position and positive size.
func (r Rect) Valid() bool {
	return r.X >= 0 && r.Y >= 0 && r.W >= 1 && r.H >= 1
}

// InBounds reports whether the rect lies entirely within a grid of the
// given column count. Rows are unbounded downward.
func (r Rect) InBounds(columns int) bool {
	return r.Valid() && r.Right() <= columns
}

// Overlaps reports whether two rects intersect, using half-open intervals:
// rects that merely share an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right() && r.Right() > o.X &&
		r.Y < o.Bottom() && r.Bottom() > o.Y
}

// SharesColumns reports whether the two rects' column spans intersect,
// regardless of their rows. Used by the expand cascade to find blocks
// in the shadow of an expanding block.
func (r Rect) SharesColumns(o Rect) bool {
	return r.X < o.Right() && r.Right() > o.X
}

// String formats the rect as "(x,y wxh)".
func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.W, r.H)
}
