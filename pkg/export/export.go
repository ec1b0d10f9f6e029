// Package export renders committed grid layouts to SVG and PNG, for
// sharing dashboards outside the host application. Rendering is a pure
// function of the layout snapshot; the engine itself never draws.
package export

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"io"

	"github.com/fogleman/gg"

	"github.com/matzehuels/gridboard/pkg/layout"
)

// Options controls the pixel geometry of a rendered layout.
type Options struct {
	// CellWidth is the width of one column in pixels.
	CellWidth int

	// RowHeight is the height of one row in pixels.
	RowHeight int

	// Gap is the spacing between blocks in pixels.
	Gap int

	// Padding is the outer margin in pixels.
	Padding int
}

// DefaultOptions matches the engine's default policy geometry.
func DefaultOptions() Options {
	return Options{
		CellWidth: 100,
		RowHeight: 80,
		Gap:       8,
		Padding:   16,
	}
}

// palette holds the block fill colors, assigned by ID hash so a block
// keeps its color across renders.
var palette = []string{
	"#4c6ef5", "#12b886", "#fa5252", "#fab005",
	"#7950f2", "#15aabf", "#e64980", "#40c057",
}

func colorFor(id string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return palette[h.Sum32()%uint32(len(palette))]
}

// frameSize computes the rendered image dimensions for a layout.
func frameSize(l layout.Layout, o Options) (w, h int) {
	rows := 0
	for _, p := range l.Blocks {
		if bottom := p.Y + p.H; bottom > rows {
			rows = bottom
		}
	}
	w = l.Columns*o.CellWidth + 2*o.Padding
	h = rows*o.RowHeight + 2*o.Padding
	if rows == 0 {
		h = o.RowHeight + 2*o.Padding
	}
	return w, h
}

// blockPixels converts a block position to its pixel rectangle, insetting
// by half the gap on each side.
func blockPixels(p layout.Position, o Options) (x, y, w, h float64) {
	half := float64(o.Gap) / 2
	x = float64(p.X*o.CellWidth+o.Padding) + half
	y = float64(p.Y*o.RowHeight+o.Padding) + half
	w = float64(p.W*o.CellWidth) - float64(o.Gap)
	h = float64(p.H*o.RowHeight) - float64(o.Gap)
	return x, y, w, h
}

// SVG renders the layout as a standalone SVG document.
func SVG(l layout.Layout, o Options) []byte {
	width, height := frameSize(l, o)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, `  <rect width="%d" height="%d" fill="#f8f9fa"/>`+"\n", width, height)

	for _, p := range l.Blocks {
		x, y, w, h := blockPixels(p, o)
		fmt.Fprintf(&buf, `  <g id="block-%s">`+"\n", p.BlockID)
		fmt.Fprintf(&buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="6" fill="%s" fill-opacity="0.85" stroke="#343a40"/>`+"\n",
			x, y, w, h, colorFor(p.BlockID))
		fmt.Fprintf(&buf, `    <text x="%.1f" y="%.1f" font-family="sans-serif" font-size="14" fill="#ffffff">%s</text>`+"\n",
			x+8, y+20, p.BlockID)
		buf.WriteString("  </g>\n")
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// PNG renders the layout as a PNG image and writes it to w.
func PNG(l layout.Layout, o Options, w io.Writer) error {
	width, height := frameSize(l, o)
	dc := gg.NewContext(width, height)

	dc.SetHexColor("#f8f9fa")
	dc.Clear()

	for _, p := range l.Blocks {
		x, y, bw, bh := blockPixels(p, o)
		dc.DrawRoundedRectangle(x, y, bw, bh, 6)
		dc.SetHexColor(colorFor(p.BlockID))
		dc.FillPreserve()
		dc.SetHexColor("#343a40")
		dc.SetLineWidth(1)
		dc.Stroke()
	}

	return dc.EncodePNG(w)
}
