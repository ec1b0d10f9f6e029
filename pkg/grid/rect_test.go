package grid

import "testing"

func TestRectOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want bool
	}{
		{
			name: "identical rects",
			a:    Rect{X: 0, Y: 0, W: 2, H: 2},
			b:    Rect{X: 0, Y: 0, W: 2, H: 2},
			want: true,
		},
		{
			name: "partial overlap",
			a:    Rect{X: 0, Y: 0, W: 2, H: 2},
			b:    Rect{X: 1, Y: 1, W: 2, H: 2},
			want: true,
		},
		{
			name: "shared vertical edge",
			a:    Rect{X: 0, Y: 0, W: 2, H: 2},
			b:    Rect{X: 2, Y: 0, W: 2, H: 2},
			want: false,
		},
		{
			name: "shared horizontal edge",
			a:    Rect{X: 0, Y: 0, W: 2, H: 2},
			b:    Rect{X: 0, Y: 2, W: 2, H: 2},
			want: false,
		},
		{
			name: "disjoint",
			a:    Rect{X: 0, Y: 0, W: 1, H: 1},
			b:    Rect{X: 5, Y: 5, W: 1, H: 1},
			want: false,
		},
		{
			name: "containment",
			a:    Rect{X: 0, Y: 0, W: 4, H: 4},
			b:    Rect{X: 1, Y: 1, W: 1, H: 1},
			want: true,
		},
		{
			name: "cross shape",
			a:    Rect{X: 1, Y: 0, W: 1, H: 3},
			b:    Rect{X: 0, Y: 1, W: 3, H: 1},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("%s.Overlaps(%s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			// Overlap is symmetric
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("%s.Overlaps(%s) = %v, want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestRectInBounds(t *testing.T) {
	tests := []struct {
		name    string
		r       Rect
		columns int
		want    bool
	}{
		{"fits exactly", Rect{X: 0, Y: 0, W: 4, H: 2}, 4, true},
		{"inside", Rect{X: 1, Y: 5, W: 2, H: 2}, 4, true},
		{"past right edge", Rect{X: 3, Y: 0, W: 2, H: 2}, 4, false},
		{"negative x", Rect{X: -1, Y: 0, W: 2, H: 2}, 4, false},
		{"negative y", Rect{X: 0, Y: -1, W: 2, H: 2}, 4, false},
		{"zero width", Rect{X: 0, Y: 0, W: 0, H: 2}, 4, false},
		{"zero height", Rect{X: 0, Y: 0, W: 2, H: 0}, 4, false},
		{"deep row is fine", Rect{X: 0, Y: 1000, W: 4, H: 2}, 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.InBounds(tt.columns); got != tt.want {
				t.Errorf("%s.InBounds(%d) = %v, want %v", tt.r, tt.columns, got, tt.want)
			}
		})
	}
}

func TestRectSharesColumns(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 4, H: 2}

	if !a.SharesColumns(Rect{X: 2, Y: 100, W: 2, H: 1}) {
		t.Error("columns [2,4) should intersect [0,4) regardless of rows")
	}
	if a.SharesColumns(Rect{X: 4, Y: 0, W: 2, H: 2}) {
		t.Error("columns [4,6) should not intersect half-open [0,4)")
	}
}

func TestConstraintsClamp(t *testing.T) {
	c := Constraints{MinW: 2, MinH: 1, MaxW: 6, MaxH: 4}

	tests := []struct {
		name string
		in   Rect
		want Rect
	}{
		{"within range", Rect{X: 0, Y: 0, W: 4, H: 2}, Rect{X: 0, Y: 0, W: 4, H: 2}},
		{"too wide", Rect{X: 0, Y: 0, W: 8, H: 2}, Rect{X: 0, Y: 0, W: 6, H: 2}},
		{"too narrow", Rect{X: 0, Y: 0, W: 1, H: 2}, Rect{X: 0, Y: 0, W: 2, H: 2}},
		{"too tall", Rect{X: 0, Y: 0, W: 4, H: 9}, Rect{X: 0, Y: 0, W: 4, H: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.ClampSize(tt.in); got != tt.want {
				t.Errorf("ClampSize(%s) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}

	// Zero-value constraints: only the implicit floor of 1 applies.
	var zero Constraints
	if got := zero.ClampSize(Rect{X: 0, Y: 0, W: 0, H: 50}); got != (Rect{X: 0, Y: 0, W: 1, H: 50}) {
		t.Errorf("zero constraints ClampSize = %s, want (0,0 1x50)", got)
	}
}
