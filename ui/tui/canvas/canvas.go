// Package canvas provides immutable rendered surfaces for the TUI.
//
// A Canvas is a grid of cells. Widgets produce canvases from Render and
// composite widgets join them horizontally or combine them vertically.
// Operations never mutate their receiver.
package canvas

import "strings"

// Size is the space offered to a widget. Rows == 0 asks a flow widget to
// use as many rows as its content needs.
type Size struct {
	Cols int
	Rows int
}

// Widget is anything that can render itself onto a canvas.
type Widget interface {
	Render(size Size, focus bool) *Canvas
}

// Canvas is a rows x cols grid of cells. Every row is exactly cols wide.
type Canvas struct {
	cols int
	rows [][]Cell
}

// New creates a blank canvas.
func New(cols, rows int) *Canvas {
	if cols < 0 {
		cols = 0
	}
	c := &Canvas{cols: cols, rows: make([][]Cell, rows)}
	for i := range c.rows {
		c.rows[i] = blanks(cols, "")
	}
	return c
}

// FromCells creates a canvas from rows of cells, padding or trimming every
// row to cols.
func FromCells(cols int, rows ...[]Cell) *Canvas {
	c := &Canvas{cols: cols, rows: make([][]Cell, len(rows))}
	for i, row := range rows {
		c.rows[i] = cut(row, 0, cols)
	}
	return c
}

// FromString renders s as a single row of its natural width.
func FromString(s, attr string) *Canvas {
	row := Cells(s, attr)
	return &Canvas{cols: len(row), rows: [][]Cell{row}}
}

// Cols returns the canvas width.
func (c *Canvas) Cols() int { return c.cols }

// Rows returns the canvas height.
func (c *Canvas) Rows() int { return len(c.rows) }

// Cell returns the cell at col,row or a blank cell when out of range.
func (c *Canvas) Cell(col, row int) Cell {
	if row < 0 || row >= len(c.rows) || col < 0 || col >= c.cols {
		return Blank("")
	}
	return c.rows[row][col]
}

// Row returns a copy of one row's cells.
func (c *Canvas) Row(row int) []Cell {
	if row < 0 || row >= len(c.rows) {
		return nil
	}
	out := make([]Cell, len(c.rows[row]))
	copy(out, c.rows[row])
	return out
}

// Text returns the decoded content of every row.
func (c *Canvas) Text() []string {
	lines := make([]string, len(c.rows))
	var b strings.Builder
	for i, row := range c.rows {
		b.Reset()
		for _, cell := range row {
			b.WriteString(cell.Text)
		}
		lines[i] = b.String()
	}
	return lines
}

// Trim returns count rows starting at top.
func (c *Canvas) Trim(top, count int) *Canvas {
	if top < 0 {
		top = 0
	}
	end := top + count
	if end > len(c.rows) {
		end = len(c.rows)
	}
	if top > end {
		top = end
	}
	out := &Canvas{cols: c.cols, rows: make([][]Cell, end-top)}
	copy(out.rows, c.rows[top:end])
	return out
}

// PadTrimLeftRight adds blank columns (positive) or removes columns
// (negative) on each side.
func (c *Canvas) PadTrimLeftRight(left, right int) *Canvas {
	start := max(-left, 0)
	width := c.cols - start - max(-right, 0)
	if width < 0 {
		width = 0
	}
	padL, padR := max(left, 0), max(right, 0)
	out := &Canvas{cols: padL + width + padR, rows: make([][]Cell, len(c.rows))}
	for i, row := range c.rows {
		r := make([]Cell, 0, out.cols)
		r = append(r, blanks(padL, "")...)
		r = append(r, cut(row, start, width)...)
		r = append(r, blanks(padR, "")...)
		out.rows[i] = r
	}
	return out
}

// SliceCols returns cols columns starting at col, for every row.
func (c *Canvas) SliceCols(col, cols int) *Canvas {
	out := &Canvas{cols: cols, rows: make([][]Cell, len(c.rows))}
	for i, row := range c.rows {
		out.rows[i] = cut(row, col, cols)
	}
	return out
}

// Slice returns a one-row canvas holding cols columns of row from col.
func (c *Canvas) Slice(row, col, cols int) *Canvas {
	return c.Trim(row, 1).SliceCols(col, cols)
}

// Fit pads or trims the canvas on the right and bottom to exactly
// cols x rows.
func (c *Canvas) Fit(cols, rows int) *Canvas {
	out := &Canvas{cols: cols, rows: make([][]Cell, rows)}
	for i := range out.rows {
		if i < len(c.rows) {
			out.rows[i] = cut(c.rows[i], 0, cols)
		} else {
			out.rows[i] = blanks(cols, "")
		}
	}
	return out
}

// Equal reports whether both canvases hold identical cells.
func (c *Canvas) Equal(o *Canvas) bool {
	if c.cols != o.cols || len(c.rows) != len(o.rows) {
		return false
	}
	for i, row := range c.rows {
		for j, cell := range row {
			if cell != o.rows[i][j] {
				return false
			}
		}
	}
	return true
}

// Part is one column block of a horizontal join.
type Part struct {
	Canvas *Canvas
	// Attr replaces the default attribute of the part's cells.
	Attr string
	// Cols is the width the part occupies; 0 uses the canvas width.
	Cols int
}

// Join places parts side by side. Each part is fitted to its column span
// and to the height of the tallest part.
func Join(parts ...Part) *Canvas {
	rows, cols := 0, 0
	for _, p := range parts {
		rows = max(rows, p.Canvas.Rows())
		cols += p.width()
	}
	out := &Canvas{cols: cols, rows: make([][]Cell, rows)}
	for i := range out.rows {
		out.rows[i] = make([]Cell, 0, cols)
	}
	for _, p := range parts {
		fitted := p.Canvas.Fit(p.width(), rows)
		for i, row := range fitted.rows {
			for _, cell := range row {
				if cell.Attr == "" {
					cell.Attr = p.Attr
				}
				out.rows[i] = append(out.rows[i], cell)
			}
		}
	}
	return out
}

func (p Part) width() int {
	if p.Cols > 0 {
		return p.Cols
	}
	return p.Canvas.Cols()
}

// Combine stacks canvases vertically. Narrower canvases are padded to the
// widest one.
func Combine(parts ...*Canvas) *Canvas {
	cols, rows := 0, 0
	for _, p := range parts {
		cols = max(cols, p.Cols())
		rows += p.Rows()
	}
	out := &Canvas{cols: cols, rows: make([][]Cell, 0, rows)}
	for _, p := range parts {
		for _, row := range p.rows {
			out.rows = append(out.rows, cut(row, 0, cols))
		}
	}
	return out
}

func blanks(n int, attr string) []Cell {
	if n <= 0 {
		return nil
	}
	row := make([]Cell, n)
	for i := range row {
		row[i] = Blank(attr)
	}
	return row
}

// cut copies n columns of row starting at start. Columns past the end of
// row are blank; a wide cluster split by either edge becomes a blank cell.
func cut(row []Cell, start, n int) []Cell {
	if n <= 0 {
		return []Cell{}
	}
	out := make([]Cell, n)
	for i := range out {
		j := start + i
		if j < 0 || j >= len(row) {
			out[i] = Blank("")
			continue
		}
		out[i] = row[j]
	}
	if first := out[0]; first.continuation() {
		out[0] = Cell{Text: " ", Attr: first.Attr, FG: first.FG, BG: first.BG}
	}
	end := start + n
	if end >= 0 && end < len(row) && row[end].continuation() {
		last := out[n-1]
		out[n-1] = Cell{Text: " ", Attr: last.Attr, FG: last.FG, BG: last.BG}
	}
	return out
}
