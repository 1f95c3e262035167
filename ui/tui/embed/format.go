// Package embed renders text with inline widgets.
//
// A template such as "Hello {0:4}!" is formatted into ordinary text where
// every embedding point is replaced by a run of reserved marker runes, one
// per column the widget occupies. The text is wrapped like any other, then
// each marker run is swapped for the matching widget's render. A widget
// whose run was broken across two rows is sliced so the two halves line up
// with the wrapped text.
package embed

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/drake/tusk/ui/tui/canvas"
)

var (
	ErrMissingWidth     = errors.New("missing width")
	ErrInvalidWidth     = errors.New("width is not an integer")
	ErrNonPositiveWidth = errors.New("width must be positive")
	ErrUnknownEmbedding = errors.New("no widget supplied")
	ErrMixedNumbering   = errors.New("cannot mix automatic and manual numbering")
	ErrUnbalancedBrace  = errors.New("unbalanced brace")
	ErrReservedRune     = errors.New("template contains a reserved marker rune")
)

// FormatError reports a template that cannot be formatted.
type FormatError struct {
	Index  int    // positional index, or -1
	Name   string // named embedding, if any
	Offset int    // byte offset of the field in the template
	Err    error
}

func (e *FormatError) Error() string {
	switch {
	case e.Name != "":
		return fmt.Sprintf("embed: embedding %q at offset %d: %v", e.Name, e.Offset, e.Err)
	case e.Index >= 0:
		return fmt.Sprintf("embed: embedding %d at offset %d: %v", e.Index, e.Offset, e.Err)
	default:
		return fmt.Sprintf("embed: template offset %d: %v", e.Offset, e.Err)
	}
}

func (e *FormatError) Unwrap() error { return e.Err }

// Record pairs an embedded widget with the columns it occupies.
type Record struct {
	Cols   int
	Widget canvas.Widget
}

// Format substitutes marker runs for the embedding fields of template.
//
// Fields are {index:width}, {name:width} or {:width} for automatic
// numbering; {{ and }} are literal braces. Records are returned in order
// of each embedding's first occurrence. A repeated field emits another
// marker run without a new record.
func Format(template string, positional []canvas.Widget, named map[string]canvas.Widget) (string, []Record, error) {
	if i := strings.IndexFunc(template, canvas.IsMarker); i >= 0 {
		return "", nil, &FormatError{Index: -1, Offset: i, Err: ErrReservedRune}
	}

	f := formatter{positional: positional, named: named, seen: make(map[string]bool)}
	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); {
		switch c := template[i]; {
		case strings.HasPrefix(template[i:], "{{"):
			b.WriteByte('{')
			i += 2
		case strings.HasPrefix(template[i:], "}}"):
			b.WriteByte('}')
			i += 2
		case c == '{':
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				return "", nil, &FormatError{Index: -1, Offset: i, Err: ErrUnbalancedBrace}
			}
			field := template[i+1 : i+end]
			if strings.ContainsRune(field, '{') {
				return "", nil, &FormatError{Index: -1, Offset: i, Err: ErrUnbalancedBrace}
			}
			cols, err := f.field(field, i)
			if err != nil {
				return "", nil, err
			}
			b.WriteRune(canvas.MarkerHead)
			for range cols - 1 {
				b.WriteRune(canvas.MarkerCont)
			}
			i += end + 1
		case c == '}':
			return "", nil, &FormatError{Index: -1, Offset: i, Err: ErrUnbalancedBrace}
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), f.records, nil
}

const (
	numberingUnset = iota
	numberingAuto
	numberingManual
)

type formatter struct {
	positional []canvas.Widget
	named      map[string]canvas.Widget
	records    []Record
	seen       map[string]bool
	next       int
	numbering  int
}

// field resolves one {name:width} field and returns its width.
func (f *formatter) field(field string, offset int) (int, error) {
	name, spec, _ := strings.Cut(field, ":")
	fe := &FormatError{Index: -1, Offset: offset}

	var (
		w   canvas.Widget
		key string
	)
	switch {
	case name == "":
		if f.numbering == numberingManual {
			fe.Index = f.next
			fe.Err = ErrMixedNumbering
			return 0, fe
		}
		f.numbering = numberingAuto
		fe.Index = f.next
		f.next++
	case isIndex(name):
		if f.numbering == numberingAuto {
			fe.Err = ErrMixedNumbering
			return 0, fe
		}
		f.numbering = numberingManual
		n, err := strconv.Atoi(name)
		if err != nil {
			// Too large for any widget list.
			fe.Name = name
			fe.Err = ErrUnknownEmbedding
			return 0, fe
		}
		fe.Index = n
	default:
		fe.Name = name
	}

	if fe.Name != "" {
		w = f.named[fe.Name]
		key = "name:" + fe.Name
	} else {
		if fe.Index < len(f.positional) {
			w = f.positional[fe.Index]
		}
		key = "index:" + strconv.Itoa(fe.Index)
	}

	cols, err := parseWidth(spec)
	if err != nil {
		fe.Err = err
		return 0, fe
	}
	if w == nil {
		fe.Err = ErrUnknownEmbedding
		return 0, fe
	}

	if !f.seen[key] {
		f.seen[key] = true
		f.records = append(f.records, Record{Cols: cols, Widget: w})
	}
	return cols, nil
}

func parseWidth(spec string) (int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, ErrMissingWidth
	}
	n, err := strconv.Atoi(spec)
	if err != nil {
		return 0, ErrInvalidWidth
	}
	if n <= 0 {
		return 0, ErrNonPositiveWidth
	}
	return n, nil
}

func isIndex(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
