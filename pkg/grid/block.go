package grid

// Constraints bound a block's size in grid cells. A zero Max means
// "unbounded"; Min values below 1 are treated as 1.
type Constraints struct {
	MinW int `json:"min_w,omitempty" bson:"min_w,omitempty"`
	MinH int `json:"min_h,omitempty" bson:"min_h,omitempty"`
	MaxW int `json:"max_w,omitempty" bson:"max_w,omitempty"`
	MaxH int `json:"max_h,omitempty" bson:"max_h,omitempty"`
}

// ClampW clamps a candidate width into the constraint range.
func (c Constraints) ClampW(w int) int {
	min := c.MinW
	if min < 1 {
		min = 1
	}
	if w < min {
		w = min
	}
	if c.MaxW > 0 && w > c.MaxW {
		w = c.MaxW
	}
	return w
}

// ClampH clamps a candidate height into the constraint range.
func (c Constraints) ClampH(h int) int {
	min := c.MinH
	if min < 1 {
		min = 1
	}
	if h < min {
		h = min
	}
	if c.MaxH > 0 && h > c.MaxH {
		h = c.MaxH
	}
	return h
}

// ClampSize clamps both dimensions of a rect, leaving position untouched.
func (c Constraints) ClampSize(r Rect) Rect {
	r.W = c.ClampW(r.W)
	r.H = c.ClampH(r.H)
	return r
}

// Block is a positioned rectangle on the grid with a stable identity.
// What a block renders is the host application's business; the engine only
// ever moves and resizes it.
type Block struct {
	ID          string      `json:"id" bson:"id"`
	Rect        Rect        `json:"rect" bson:"rect"`
	Constraints Constraints `json:"constraints,omitempty" bson:"constraints,omitempty"`
}
