// Package textlayout wraps and aligns text into terminal rows.
package textlayout

import (
	"fmt"

	"github.com/drake/tusk/ui/tui/canvas"
)

// Align controls where a row's content sits within the available columns.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// ParseAlign converts "left", "center" or "right" to an Align.
func ParseAlign(s string) (Align, error) {
	switch s {
	case "left":
		return AlignLeft, nil
	case "center":
		return AlignCenter, nil
	case "right":
		return AlignRight, nil
	}
	return AlignLeft, fmt.Errorf("unknown alignment %q", s)
}

// Wrap controls what happens to text wider than the available columns.
type Wrap int

const (
	// WrapSpace breaks at spaces, falling back to cluster breaks for words
	// longer than a row.
	WrapSpace Wrap = iota
	// WrapAny breaks at any cluster boundary.
	WrapAny
	// WrapClip cuts each source line at the right edge.
	WrapClip
	// WrapEllipsis cuts like WrapClip and marks the cut with an ellipsis.
	WrapEllipsis
)

func (w Wrap) String() string {
	switch w {
	case WrapAny:
		return "any"
	case WrapClip:
		return "clip"
	case WrapEllipsis:
		return "ellipsis"
	default:
		return "space"
	}
}

// ParseWrap converts "space", "any", "clip" or "ellipsis" to a Wrap.
func ParseWrap(s string) (Wrap, error) {
	switch s {
	case "space":
		return WrapSpace, nil
	case "any":
		return WrapAny, nil
	case "clip":
		return WrapClip, nil
	case "ellipsis":
		return WrapEllipsis, nil
	}
	return WrapSpace, fmt.Errorf("unknown wrap mode %q", s)
}

// Clipping reports whether the mode keeps one row per source line.
func (w Wrap) Clipping() bool {
	return w == WrapClip || w == WrapEllipsis
}

// Ellipsis is drawn in the last column of a row cut by WrapEllipsis.
const Ellipsis = "…"

// Line is one laid-out row: Pad blank columns followed by clusters
// [Start, End) of the segmented text and an optional ellipsis.
type Line struct {
	Pad      int
	Start    int
	End      int
	Width    int // display width of the clusters
	Ellipsis bool
}

// Layout breaks clusters into rows of at most cols columns. Newline
// clusters always end a row. Every source line yields at least one row.
func Layout(clusters []canvas.Cluster, cols int, align Align, wrap Wrap) []Line {
	if cols < 1 {
		return nil
	}
	var lines []Line
	start := 0
	for i := 0; i <= len(clusters); i++ {
		if i < len(clusters) && !isNewline(clusters[i].Text) {
			continue
		}
		lines = append(lines, layoutLine(clusters, start, i, cols, wrap)...)
		start = i + 1
	}
	for i := range lines {
		lines[i].Pad = padding(lines[i], cols, align)
	}
	return lines
}

// LayoutString is Layout for plain text.
func LayoutString(s string, cols int, align Align, wrap Wrap) []Line {
	return Layout(canvas.Clusters(s), cols, align, wrap)
}

func layoutLine(cl []canvas.Cluster, from, to, cols int, wrap Wrap) []Line {
	switch wrap {
	case WrapClip:
		end, w := fit(cl, from, to, cols)
		return []Line{{Start: from, End: end, Width: w}}
	case WrapEllipsis:
		if end, w := fit(cl, from, to, cols); end == to {
			return []Line{{Start: from, End: end, Width: w}}
		}
		end, w := fit(cl, from, to, cols-1)
		return []Line{{Start: from, End: end, Width: w, Ellipsis: true}}
	}

	var out []Line
	p := from
	for {
		end, w := fit(cl, p, to, cols)
		if end == to {
			return append(out, Line{Start: p, End: to, Width: w})
		}
		switch {
		case wrap == WrapSpace && cl[end].Text == " ":
			out = append(out, span(cl, p, trimSpaces(cl, p, end)))
			// The break swallows the whole run of spaces.
			p = end + 1
			for p < to && cl[p].Text == " " {
				p++
			}
		case wrap == WrapSpace && lastSpace(cl, p, end) > p:
			sp := lastSpace(cl, p, end)
			out = append(out, span(cl, p, trimSpaces(cl, p, sp)))
			p = sp + 1
		case end == p:
			// A single cluster wider than the row gets a row of its own.
			out = append(out, span(cl, p, p+1))
			p++
		default:
			out = append(out, Line{Start: p, End: end, Width: w})
			p = end
		}
		if p >= to {
			return out
		}
	}
}

// fit returns the end of the longest run starting at from that fits in
// cols columns, and its width.
func fit(cl []canvas.Cluster, from, to, cols int) (int, int) {
	w := 0
	i := from
	for ; i < to; i++ {
		if w+cl[i].Width > cols {
			break
		}
		w += cl[i].Width
	}
	return i, w
}

func span(cl []canvas.Cluster, from, to int) Line {
	w := 0
	for _, c := range cl[from:to] {
		w += c.Width
	}
	return Line{Start: from, End: to, Width: w}
}

func lastSpace(cl []canvas.Cluster, from, to int) int {
	for i := to - 1; i >= from; i-- {
		if cl[i].Text == " " {
			return i
		}
	}
	return -1
}

func trimSpaces(cl []canvas.Cluster, from, to int) int {
	for to > from && cl[to-1].Text == " " {
		to--
	}
	return to
}

func padding(l Line, cols int, align Align) int {
	used := l.Width
	if l.Ellipsis {
		used++
	}
	free := cols - used
	if free <= 0 {
		return 0
	}
	switch align {
	case AlignRight:
		return free
	case AlignCenter:
		return free / 2
	default:
		return 0
	}
}

func isNewline(s string) bool {
	return s == "\n" || s == "\r\n"
}
