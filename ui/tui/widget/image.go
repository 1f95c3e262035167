package widget

import (
	"fmt"
	"image"
	"image/color"

	"github.com/charmbracelet/lipgloss"

	"github.com/drake/tusk/images"
	"github.com/drake/tusk/ui/tui/canvas"
)

// Compile-time check that Image implements canvas.Widget
var _ canvas.Widget = (*Image)(nil)

const (
	upperHalf = "▀"
	lowerHalf = "▄"
)

// Image draws a bitmap with half-block cells, two pixel rows per cell. The
// bitmap is stretched to fill the size it is rendered at.
type Image struct {
	img image.Image

	// Scaling is the expensive part; renders at an unchanged size reuse it.
	last   canvas.Size
	cached *canvas.Canvas
}

// NewImage creates an image widget.
func NewImage(img image.Image) *Image {
	return &Image{img: img}
}

// Render implements canvas.Widget.
func (w *Image) Render(size canvas.Size, focus bool) *canvas.Canvas {
	rows := max(size.Rows, 1)
	if size.Cols < 1 {
		return canvas.New(0, rows)
	}
	if w.cached != nil && w.last == (canvas.Size{Cols: size.Cols, Rows: rows}) {
		return w.cached
	}

	px := images.Scale(w.img, size.Cols, rows*2)
	out := make([][]canvas.Cell, rows)
	for r := range out {
		row := make([]canvas.Cell, size.Cols)
		for c := range row {
			row[c] = halfBlock(px.NRGBAAt(c, 2*r), px.NRGBAAt(c, 2*r+1))
		}
		out[r] = row
	}

	w.last = canvas.Size{Cols: size.Cols, Rows: rows}
	w.cached = canvas.FromCells(size.Cols, out...)
	return w.cached
}

func halfBlock(top, bottom color.NRGBA) canvas.Cell {
	topVisible, bottomVisible := top.A >= 128, bottom.A >= 128
	switch {
	case topVisible && bottomVisible:
		return canvas.Cell{Text: upperHalf, FG: hex(top), BG: hex(bottom)}
	case topVisible:
		return canvas.Cell{Text: upperHalf, FG: hex(top)}
	case bottomVisible:
		return canvas.Cell{Text: lowerHalf, FG: hex(bottom)}
	default:
		return canvas.Blank("")
	}
}

func hex(c color.NRGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
