package widget

import (
	"github.com/drake/tusk/ui/tui/canvas"
)

// Compile-time check that Control implements canvas.Widget
var _ canvas.Widget = (*Control)(nil)

// Capability is a set of behaviours a Control responds to.
type Capability uint8

const (
	Clickable Capability = 1 << iota
	Checkable
	Editable
)

// Has reports whether every capability in want is set.
func (c Capability) Has(want Capability) bool { return c&want == want }

// Control is a focusable one-row widget: a button, a checkbox, an edit
// field, or a combination of these.
//
// Buttons and checkboxes draw as "< label >" and "[X] label" and are four
// columns wider than their label. Edit fields draw the label as a caption
// followed by the value.
type Control struct {
	label   string
	caps    Capability
	checked bool
	value   []rune

	OnClick  func(*Control)
	OnChange func(*Control)
}

// NewButton creates a clickable control.
func NewButton(label string, onClick func(*Control)) *Control {
	return &Control{label: label, caps: Clickable, OnClick: onClick}
}

// NewCheckBox creates a checkable control.
func NewCheckBox(label string, checked bool, onChange func(*Control)) *Control {
	return &Control{label: label, caps: Checkable, checked: checked, OnChange: onChange}
}

// NewEditBox creates an editable control with a caption.
func NewEditBox(caption, value string, onChange func(*Control)) *Control {
	return &Control{label: caption, caps: Editable, value: []rune(value), OnChange: onChange}
}

// NewControl creates a control with an arbitrary capability set.
func NewControl(label string, caps Capability) *Control {
	return &Control{label: label, caps: caps}
}

func (c *Control) Label() string            { return c.label }
func (c *Control) SetLabel(label string)    { c.label = label }
func (c *Control) Capabilities() Capability { return c.caps }
func (c *Control) Checked() bool            { return c.checked }
func (c *Control) Value() string            { return string(c.value) }

// SetChecked sets the check state without firing OnChange.
func (c *Control) SetChecked(v bool) { c.checked = v }

// SetValue replaces the edit value without firing OnChange.
func (c *Control) SetValue(v string) { c.value = []rune(v) }

// Pack returns the natural size of the control.
func (c *Control) Pack() (cols, rows int) {
	return canvas.Width(c.text(false)), 1
}

// HandleKey applies a key press and reports whether it was consumed. Keys
// use bubbletea's names: "enter", " ", "backspace", or printable runes.
func (c *Control) HandleKey(key string) bool {
	switch key {
	case "enter":
		switch {
		case c.caps.Has(Clickable):
			c.click()
		case c.caps.Has(Checkable):
			c.toggle()
		default:
			return false
		}
		return true
	case " ", "space":
		if c.caps.Has(Editable) {
			c.insert(' ')
			return true
		}
		if c.caps.Has(Checkable) {
			c.toggle()
			return true
		}
		if c.caps.Has(Clickable) {
			c.click()
			return true
		}
		return false
	case "backspace":
		if !c.caps.Has(Editable) || len(c.value) == 0 {
			return false
		}
		c.value = c.value[:len(c.value)-1]
		c.changed()
		return true
	}

	if !c.caps.Has(Editable) {
		return false
	}
	runes := []rune(key)
	if len(runes) != 1 || canvas.IsMarker(runes[0]) || runes[0] < ' ' {
		return false
	}
	c.insert(runes[0])
	return true
}

// Click activates the control as if enter was pressed.
func (c *Control) Click() { c.HandleKey("enter") }

func (c *Control) click() {
	if c.OnClick != nil {
		c.OnClick(c)
	}
}

func (c *Control) toggle() {
	c.checked = !c.checked
	c.changed()
}

func (c *Control) insert(r rune) {
	c.value = append(c.value, r)
	c.changed()
}

func (c *Control) changed() {
	if c.OnChange != nil {
		c.OnChange(c)
	}
}

// Render implements canvas.Widget. The whole row, padding included, takes
// the control's attribute so a focused control is highlighted edge to edge.
func (c *Control) Render(size canvas.Size, focus bool) *canvas.Canvas {
	attr := c.attr(focus)
	row := canvas.Cells(c.text(focus), attr)
	for w := canvas.Width(c.text(focus)); w < size.Cols; w++ {
		row = append(row, canvas.Blank(attr))
	}
	rows := max(size.Rows, 1)
	return canvas.FromCells(size.Cols, row).Fit(size.Cols, rows)
}

func (c *Control) attr(focus bool) string {
	base := "button"
	if c.caps.Has(Editable) {
		base = "editbox"
	}
	if focus {
		return base + "_focused"
	}
	return base
}

func (c *Control) text(focus bool) string {
	switch {
	case c.caps.Has(Editable):
		s := c.label + string(c.value)
		if focus {
			s += " "
		}
		return s
	case c.caps.Has(Checkable):
		if c.checked {
			return "[X] " + c.label
		}
		return "[ ] " + c.label
	default:
		return "< " + c.label + " >"
	}
}
