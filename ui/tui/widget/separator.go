package widget

import (
	"strings"

	"github.com/drake/tusk/ui/style"
	"github.com/drake/tusk/ui/tui/layout"
)

var (
	_ layout.Renderer = (*Separator)(nil)
	_ layout.Renderer = (*Status)(nil)
	_ layout.Renderer = (*Compose)(nil)
)

// Separator is a one-row rule between the timeline and the status bar.
type Separator struct {
	width int
	style style.Styles
}

// NewSeparator creates a new separator.
func NewSeparator(styles style.Styles) *Separator {
	return &Separator{style: styles}
}

// View implements layout.Renderer.
func (s *Separator) View() string {
	return s.style.Separator.Render(strings.Repeat("─", s.width))
}

// SetWidth implements layout.Renderer.
func (s *Separator) SetWidth(w int) {
	s.width = w
}

// Height implements layout.Renderer.
func (s *Separator) Height() int {
	return 1
}
