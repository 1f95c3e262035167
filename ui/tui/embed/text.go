package embed

import (
	"fmt"
	"strings"

	"github.com/drake/tusk/ui/tui/canvas"
	"github.com/drake/tusk/ui/tui/textlayout"
)

// Compile-time check that Text implements canvas.Widget
var _ canvas.Widget = (*Text)(nil)

// LayoutError reports placeholders that do not match the embedding
// records. It always indicates a caller bug, such as a template that
// references the same widget twice.
type LayoutError struct {
	Row     int // rendered row holding the placeholder
	Marker  int // ordinal of the placeholder among those resolved
	Records int // records supplied
	Width   int // set when the run is wider than its record
	Want    int
}

func (e *LayoutError) Error() string {
	if e.Want > 0 {
		return fmt.Sprintf("embed: placeholder %d on row %d spans %d columns, embedding declares %d",
			e.Marker, e.Row, e.Width, e.Want)
	}
	return fmt.Sprintf("embed: placeholder %d on row %d has no embedding (%d supplied)",
		e.Marker, e.Row, e.Records)
}

// Text is a flow widget showing a template with inline widgets.
type Text struct {
	layout   *textlayout.Text
	attr     string
	template string
	records  []Record

	// lineHeads[i] is the number of placeholders before source line i.
	lineHeads []int
}

// New creates an empty Text.
func New(align textlayout.Align, wrap textlayout.Wrap) *Text {
	l := textlayout.New("")
	l.SetAlign(align)
	l.SetWrap(wrap)
	return &Text{layout: l}
}

// SetText formats template with positional widgets. On error the previous
// content is kept.
func (t *Text) SetText(template string, widgets ...canvas.Widget) error {
	return t.SetTextNamed(template, nil, widgets...)
}

// SetTextNamed formats template with named and positional widgets.
func (t *Text) SetTextNamed(template string, named map[string]canvas.Widget, widgets ...canvas.Widget) error {
	text, records, err := Format(template, widgets, named)
	if err != nil {
		return err
	}
	t.template = template
	t.records = records
	t.lineHeads = headsPerLine(text)
	t.layout.SetMarkup(textlayout.Span{Attr: t.attr, Text: text})
	return nil
}

// Text returns the last template set.
func (t *Text) Text() string { return t.template }

// Records returns the embedding records of the current template.
func (t *Text) Records() []Record {
	return append([]Record(nil), t.records...)
}

// SetAttr sets the attribute of the literal text.
func (t *Text) SetAttr(attr string) {
	t.attr = attr
	spans := t.layout.Markup()
	for i := range spans {
		spans[i].Attr = attr
	}
	t.layout.SetMarkup(spans...)
}

func (t *Text) SetAlign(a textlayout.Align) { t.layout.SetAlign(a) }
func (t *Text) SetWrap(w textlayout.Wrap)   { t.layout.SetWrap(w) }

// Pack returns the natural size of the formatted text.
func (t *Text) Pack() (cols, rows int) { return t.layout.Pack() }

// Render implements canvas.Widget. It panics with a *LayoutError when the
// placeholders do not match the records; use Compose to get the error.
func (t *Text) Render(size canvas.Size, focus bool) *canvas.Canvas {
	c, err := t.Compose(size, focus)
	if err != nil {
		panic(err)
	}
	return c
}

// Compose renders the text and substitutes the embedded widgets.
func (t *Text) Compose(size canvas.Size, focus bool) (*canvas.Canvas, error) {
	src := t.layout.Render(size, focus)
	clipping := t.layout.Wrap().Clipping()
	cur := &cursor{records: t.records}

	var (
		parts  []*canvas.Canvas
		top, n int
		tl     *tail
	)
	flush := func() {
		if n > 0 {
			parts = append(parts, src.Trim(top, n))
			top += n
			n = 0
		}
	}

	for i, line := range src.Text() {
		if clipping {
			// One row per source line: anything clipped off the previous
			// row, split tails included, is gone.
			tl = nil
			if i < len(t.lineHeads) {
				cur.pos = t.lineHeads[i]
			}
		}
		if tl == nil && !strings.ContainsFunc(line, canvas.IsMarker) {
			n++
			continue
		}
		flush()

		row, next, err := embed(src, top, cur, focus, tl)
		if err != nil {
			return nil, err
		}
		parts = append(parts, row)
		tl = next
		top++
	}
	flush()

	// A tail still pending here was cut off by the row limit or by
	// clipping; it is dropped.
	if len(parts) == 1 {
		return parts[0], nil
	}
	if len(parts) == 0 {
		return src, nil
	}
	return canvas.Combine(parts...), nil
}

// cursor walks the embedding records in placeholder order.
type cursor struct {
	records []Record
	pos     int
}

func (c *cursor) next() (Record, bool) {
	if c.pos >= len(c.records) {
		return Record{}, false
	}
	r := c.records[c.pos]
	c.pos++
	return r, true
}

func headsPerLine(text string) []int {
	lines := strings.Split(text, "\n")
	heads := make([]int, len(lines))
	n := 0
	for i, l := range lines {
		heads[i] = n
		n += strings.Count(l, string(canvas.MarkerHead))
	}
	return heads
}
