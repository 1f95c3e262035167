package textlayout

import (
	"strings"

	"github.com/drake/tusk/ui/tui/canvas"
)

// Compile-time check that Text implements canvas.Widget
var _ canvas.Widget = (*Text)(nil)

// Span is a run of text drawn with one palette attribute.
type Span struct {
	Attr string
	Text string
}

// Text is a flow widget that lays out styled text.
type Text struct {
	spans []Span
	align Align
	wrap  Wrap

	// Segmentation is recomputed only when the markup changes.
	clusters []canvas.Cluster
	attrs    []string
}

// New creates a left-aligned, space-wrapped Text.
func New(text string) *Text {
	t := &Text{}
	t.SetText(text)
	return t
}

// NewMarkup creates a Text from styled spans.
func NewMarkup(spans ...Span) *Text {
	t := &Text{}
	t.SetMarkup(spans...)
	return t
}

// SetText replaces the content with unstyled text.
func (t *Text) SetText(text string) {
	t.SetMarkup(Span{Text: text})
}

// SetMarkup replaces the content with styled spans.
func (t *Text) SetMarkup(spans ...Span) {
	t.spans = append(t.spans[:0], spans...)
	t.clusters = t.clusters[:0]
	t.attrs = t.attrs[:0]
	for _, s := range spans {
		for _, c := range canvas.Clusters(s.Text) {
			t.clusters = append(t.clusters, c)
			t.attrs = append(t.attrs, s.Attr)
		}
	}
}

// Text returns the content without attributes.
func (t *Text) Text() string {
	var b strings.Builder
	for _, s := range t.spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Markup returns a copy of the styled spans.
func (t *Text) Markup() []Span {
	return append([]Span(nil), t.spans...)
}

func (t *Text) SetAlign(a Align) { t.align = a }
func (t *Text) SetWrap(w Wrap)   { t.wrap = w }
func (t *Text) Align() Align     { return t.align }
func (t *Text) Wrap() Wrap       { return t.wrap }

// Lines lays the content out for cols columns.
func (t *Text) Lines(cols int) []Line {
	return Layout(t.clusters, cols, t.align, t.wrap)
}

// Pack returns the natural size: the widest source line and the number of
// source lines.
func (t *Text) Pack() (cols, rows int) {
	w := 0
	rows = 1
	for _, c := range t.clusters {
		if isNewline(c.Text) {
			cols = max(cols, w)
			w = 0
			rows++
			continue
		}
		w += c.Width
	}
	return max(cols, w), rows
}

// Render implements canvas.Widget. Every row is exactly size.Cols wide;
// when size.Rows is set the output is truncated or padded to it.
func (t *Text) Render(size canvas.Size, focus bool) *canvas.Canvas {
	if size.Cols < 1 {
		return canvas.New(0, size.Rows)
	}
	lines := t.Lines(size.Cols)
	rows := make([][]canvas.Cell, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, t.row(l))
	}
	c := canvas.FromCells(size.Cols, rows...)
	if size.Rows > 0 {
		c = c.Fit(size.Cols, size.Rows)
	}
	return c
}

func (t *Text) row(l Line) []canvas.Cell {
	row := make([]canvas.Cell, 0, l.Pad+l.Width+1)
	for range l.Pad {
		row = append(row, canvas.Blank(""))
	}
	attr := ""
	for i := l.Start; i < l.End; i++ {
		attr = t.attrs[i]
		row = canvas.AppendCluster(row, t.clusters[i], attr)
	}
	if l.Ellipsis {
		row = append(row, canvas.Cell{Text: Ellipsis, Attr: attr})
	}
	return row
}
