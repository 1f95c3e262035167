package util

import (
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// VisibleLen returns the visible display width of a string (excluding ANSI codes).
func VisibleLen(s string) int {
	return runewidth.StringWidth(ansi.Strip(s))
}

// Truncate cuts a styled string to width columns, marking the cut with an
// ellipsis.
func Truncate(s string, width int) string {
	if VisibleLen(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}
