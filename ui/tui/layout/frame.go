package layout

import "strings"

// Stack is a column of renderers drawn top to bottom. Renderers with no
// height are skipped.
type Stack []Renderer

// Height returns the total height of the stack.
func (s Stack) Height() int {
	h := 0
	for _, r := range s {
		h += r.Height()
	}
	return h
}

// SetWidth sets the width of every renderer.
func (s Stack) SetWidth(w int) {
	for _, r := range s {
		r.SetWidth(w)
	}
}

// View joins the views of the visible renderers.
func (s Stack) View() string {
	var parts []string
	for _, r := range s {
		if r.Height() > 0 {
			parts = append(parts, r.View())
		}
	}
	return strings.Join(parts, "\n")
}

// Frame divides the terminal into a header, a body and a footer. The body
// gets whatever rows the stacks leave, but never fewer than MinBody.
type Frame struct {
	MinBody int

	width  int
	height int
}

// NewFrame creates a frame whose body keeps at least minBody rows.
func NewFrame(minBody int) *Frame {
	return &Frame{MinBody: max(minBody, 1)}
}

// Resize sets the terminal size.
func (f *Frame) Resize(width, height int) {
	f.width = width
	f.height = height
}

// Width returns the terminal width.
func (f *Frame) Width() int { return f.width }

// Body sizes both stacks to the frame width and returns the body height.
func (f *Frame) Body(header, footer Stack) int {
	header.SetWidth(f.width)
	footer.SetWidth(f.width)
	return max(f.height-header.Height()-footer.Height(), f.MinBody)
}

// Join draws the header, the body and the footer in order.
func (f *Frame) Join(header Stack, body string, footer Stack) string {
	parts := make([]string, 0, 3)
	if v := header.View(); v != "" {
		parts = append(parts, v)
	}
	parts = append(parts, body)
	if v := footer.View(); v != "" {
		parts = append(parts, v)
	}
	return strings.Join(parts, "\n")
}
