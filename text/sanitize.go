// Package text cleans strings that arrive from the network before they
// reach the layout engine.
package text

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/text/unicode/norm"

	"github.com/drake/tusk/ui/tui/canvas"
)

// Sanitize strips ANSI escape sequences, drops control characters and the
// runes reserved for embedding markers, and returns the result in NFC.
// Newlines and tabs survive; tabs become a single space.
func Sanitize(s string) string {
	s = ansi.Strip(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r == '\t':
			return ' '
		case canvas.IsMarker(r), unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
	return norm.NFC.String(s)
}

// SanitizeLine is Sanitize with newlines folded into spaces, for
// single-row fields such as display names.
func SanitizeLine(s string) string {
	return strings.ReplaceAll(Sanitize(s), "\n", " ")
}
