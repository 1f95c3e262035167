package canvas

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rivo/uniseg"
)

// Reserved marker runes. They come from the private-use area so they never
// collide with display text, and they always measure exactly one column.
// The embed package substitutes runs of them for inline widgets.
const (
	MarkerHead rune = '\uE000'
	MarkerCont rune = '\uE001'
)

// IsMarker reports whether r belongs to the reserved marker alphabet.
func IsMarker(r rune) bool {
	return r == MarkerHead || r == MarkerCont
}

// Cell is one column of a canvas row.
type Cell struct {
	// Text is a single grapheme cluster. It is empty for the right half of
	// a wide cluster.
	Text string
	// Attr names a palette entry; "" is the default attribute.
	Attr string
	// FG and BG override the palette colors when set (used by images).
	FG, BG lipgloss.TerminalColor
}

// Blank returns a space cell with the given attribute.
func Blank(attr string) Cell {
	return Cell{Text: " ", Attr: attr}
}

// continuation reports whether the cell is the right half of a wide cluster.
func (c Cell) continuation() bool {
	return c.Text == ""
}

// Cluster is a grapheme cluster with its display width.
type Cluster struct {
	Text  string
	Width int
}

// Clusters splits s into grapheme clusters measured in display columns.
func Clusters(s string) []Cluster {
	out := make([]Cluster, 0, len(s))
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		str := g.Str()
		out = append(out, Cluster{Text: str, Width: clusterWidth(str)})
	}
	return out
}

// Width returns the display width of s.
func Width(s string) int {
	w := 0
	for _, c := range Clusters(s) {
		w += c.Width
	}
	return w
}

func clusterWidth(s string) int {
	for _, r := range s {
		if IsMarker(r) {
			return 1
		}
		break
	}
	w := uniseg.StringWidth(s)
	if w > 2 {
		w = 2
	}
	return w
}

// AppendCluster appends the cells for c to row. Zero-width clusters are
// dropped; wide clusters take a second, empty cell.
func AppendCluster(row []Cell, c Cluster, attr string) []Cell {
	switch c.Width {
	case 0:
		return row
	case 1:
		return append(row, Cell{Text: c.Text, Attr: attr})
	default:
		return append(row, Cell{Text: c.Text, Attr: attr}, Cell{Attr: attr})
	}
}

// Cells converts s to a row of cells with a single attribute.
func Cells(s, attr string) []Cell {
	var row []Cell
	for _, c := range Clusters(s) {
		row = AppendCluster(row, c, attr)
	}
	return row
}
