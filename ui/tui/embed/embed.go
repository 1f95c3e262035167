package embed

import "github.com/drake/tusk/ui/tui/canvas"

// tail is the part of an embedded widget that wrapped onto following rows.
type tail struct {
	remaining int            // columns not yet shown
	canv      *canvas.Canvas // the widget's full one-row render
}

type segKind int

const (
	segText segKind = iota
	segHead
	segOrphan // continuation markers with no head before them
)

// segment is a column range [start, end) of one row.
type segment struct {
	kind       segKind
	start, end int
}

// embed builds row of src with every marker run replaced by its widget.
// It returns the tail to carry into the next row, if the last widget on
// this row was cut by the wrap.
func embed(src *canvas.Canvas, row int, cur *cursor, focus bool, tl *tail) (*canvas.Canvas, *tail, error) {
	cells := src.Row(row)
	var parts []canvas.Part
	text := func(start, end int) {
		if end > start {
			parts = append(parts, canvas.Part{Canvas: src.Slice(row, start, end-start), Cols: end - start})
		}
	}

	col := 0
	if tl != nil {
		// Alignment may pad the row before the continuation. Padding is
		// assumed to be plain spaces.
		pad := 0
		for pad < len(cells) && cells[pad].Text == " " {
			pad++
		}
		run := 0
		for pad+run < len(cells) && run < tl.remaining && isCont(cells[pad+run]) {
			run++
		}
		if run > 0 {
			text(0, pad)
			offset := tl.canv.Cols() - tl.remaining
			parts = append(parts, canvas.Part{Canvas: tl.canv.SliceCols(offset, run), Cols: run})
			col = pad + run
			if run < tl.remaining {
				text(col, len(cells))
				return join(parts), &tail{remaining: tl.remaining - run, canv: tl.canv}, nil
			}
		}
	}

	var next *tail
	for _, seg := range split(cells, col) {
		switch seg.kind {
		case segText:
			text(seg.start, seg.end)
		case segOrphan:
			parts = append(parts, canvas.Part{Canvas: canvas.New(seg.end-seg.start, 1), Cols: seg.end - seg.start})
		case segHead:
			rec, ok := cur.next()
			if !ok {
				return nil, nil, &LayoutError{Row: row, Marker: cur.pos, Records: len(cur.records)}
			}
			width := seg.end - seg.start
			if width > rec.Cols {
				return nil, nil, &LayoutError{Row: row, Marker: cur.pos - 1, Records: len(cur.records), Width: width, Want: rec.Cols}
			}
			c := rec.Widget.Render(canvas.Size{Cols: rec.Cols, Rows: 1}, focus).Fit(rec.Cols, 1)
			parts = append(parts, canvas.Part{Canvas: c.SliceCols(0, width), Cols: width})
			if width < rec.Cols {
				next = &tail{remaining: rec.Cols - width, canv: c}
			}
		}
	}
	return join(parts), next, nil
}

// split divides cells[from:] into text runs and marker runs. A marker run
// starts at a head marker and extends over the continuations that follow.
func split(cells []canvas.Cell, from int) []segment {
	var segs []segment
	for i := from; i < len(cells); i++ {
		kind := segText
		switch {
		case isHead(cells[i]):
			kind = segHead
		case isCont(cells[i]):
			kind = segOrphan
			if n := len(segs); n > 0 && segs[n-1].kind != segText {
				segs[n-1].end = i + 1
				continue
			}
		}
		if n := len(segs); n > 0 && kind == segText && segs[n-1].kind == segText {
			segs[n-1].end = i + 1
			continue
		}
		segs = append(segs, segment{kind: kind, start: i, end: i + 1})
	}
	return segs
}

func join(parts []canvas.Part) *canvas.Canvas {
	if len(parts) == 0 {
		return canvas.New(0, 1)
	}
	return canvas.Join(parts...)
}

func isHead(c canvas.Cell) bool { return firstRune(c.Text) == canvas.MarkerHead }
func isCont(c canvas.Cell) bool { return firstRune(c.Text) == canvas.MarkerCont }

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
