// Package layout stacks fixed-height components above and below the
// timeline.
package layout

// Renderer is a component whose height follows from its width.
type Renderer interface {
	SetWidth(w int)
	Height() int
	View() string
}
