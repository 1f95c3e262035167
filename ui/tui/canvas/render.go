package canvas

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette maps attribute names to styles.
type Palette map[string]lipgloss.Style

// Style returns the style for attr, or an unstyled style when attr is unknown.
func (p Palette) Style(attr string) lipgloss.Style {
	if s, ok := p[attr]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

// Render converts the canvas to a string of ANSI-styled lines. Adjacent
// cells sharing a style are written as one run.
func (c *Canvas) Render(p Palette) string {
	var b strings.Builder
	b.Grow(len(c.rows) * (c.cols + 1))

	var run strings.Builder
	for i, row := range c.rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j := 0; j < len(row); {
			key := row[j]
			run.Reset()
			k := j
			for ; k < len(row) && sameStyle(row[k], key); k++ {
				run.WriteString(row[k].Text)
			}
			b.WriteString(p.paint(key, run.String()))
			j = k
		}
	}
	return b.String()
}

func (p Palette) paint(key Cell, text string) string {
	if key.Attr == "" && key.FG == nil && key.BG == nil {
		return text
	}
	style := p.Style(key.Attr)
	if key.FG != nil {
		style = style.Foreground(key.FG)
	}
	if key.BG != nil {
		style = style.Background(key.BG)
	}
	return style.Render(text)
}

func sameStyle(a, b Cell) bool {
	return a.Attr == b.Attr && a.FG == b.FG && a.BG == b.BG
}
