package widget

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/drake/tusk/api"
	"github.com/drake/tusk/ui/style"
	"github.com/drake/tusk/ui/tui/canvas"
	"github.com/drake/tusk/ui/tui/embed"
	"github.com/drake/tusk/ui/tui/textlayout"
)

const composeAreaHeight = 4

// Compose is the panel for writing a status: a text area above a row of
// controls drawn inline in one embed.Text.
type Compose struct {
	area       textarea.Model
	post       *Control
	sensitive  *Control
	visibility *Control
	warning    *Control
	controls   *embed.Text

	focus   int // 0 is the text area, then the controls in row order
	visible int // index into api.Visibilities
	submit  bool

	palette canvas.Palette
	styles  style.Styles
	width   int
}

// NewCompose creates an empty compose panel.
func NewCompose(styles style.Styles, palette canvas.Palette) *Compose {
	ta := textarea.New()
	ta.Placeholder = "What's on your mind?"
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.SetHeight(composeAreaHeight)
	ta.Focus()

	c := &Compose{
		area:     ta,
		palette:  palette,
		styles:   styles,
		controls: embed.New(textlayout.AlignLeft, textlayout.WrapClip),
	}
	c.post = NewButton("Post", func(*Control) { c.submit = true })
	c.sensitive = NewCheckBox("Sensitive", false, func(*Control) { c.layout() })
	c.visibility = NewButton(api.Visibilities[0], func(b *Control) {
		c.visible = (c.visible + 1) % len(api.Visibilities)
		b.SetLabel(api.Visibilities[c.visible])
		c.layout()
	})
	c.warning = NewEditBox("CW: ", "", func(*Control) { c.layout() })
	c.layout()
	return c
}

// focusable draws a control focused only while it holds the panel focus.
type focusable struct {
	c       *Control
	focused func() bool
}

func (f focusable) Render(size canvas.Size, _ bool) *canvas.Canvas {
	return f.c.Render(size, f.focused())
}

// active lists the focusable controls in row order.
func (c *Compose) active() []*Control {
	ctrls := []*Control{c.post, c.sensitive, c.visibility}
	if c.sensitive.Checked() {
		ctrls = append(ctrls, c.warning)
	}
	return ctrls
}

// layout rebuilds the control row after a control changed width.
func (c *Compose) layout() {
	named := make(map[string]canvas.Widget)
	var parts []string
	for i, ctrl := range c.active() {
		name := fmt.Sprintf("c%d", i)
		cols, _ := ctrl.Pack()
		if ctrl.Capabilities().Has(Editable) {
			cols++ // room for the cursor
		}
		named[name] = focusable{c: ctrl, focused: func() bool { return c.focus == i+1 }}
		parts = append(parts, fmt.Sprintf("{%s:%d}", name, cols))
	}
	c.controls.SetTextNamed(strings.Join(parts, "  "), named)
	if c.focus > len(c.active()) {
		c.focus = len(c.active())
	}
}

// Update forwards a key to the focused element. tab and shift+tab move
// the focus.
func (c *Compose) Update(msg tea.KeyMsg) tea.Cmd {
	n := len(c.active()) + 1
	switch msg.String() {
	case "tab":
		c.setFocus((c.focus + 1) % n)
		return nil
	case "shift+tab":
		c.setFocus((c.focus + n - 1) % n)
		return nil
	}

	if c.focus == 0 {
		var cmd tea.Cmd
		c.area, cmd = c.area.Update(msg)
		return cmd
	}
	c.active()[c.focus-1].HandleKey(msg.String())
	return nil
}

func (c *Compose) setFocus(i int) {
	c.focus = i
	if i == 0 {
		c.area.Focus()
	} else {
		c.area.Blur()
	}
}

// Focus returns the index of the focused element, 0 for the text area.
func (c *Compose) Focus() int { return c.focus }

// TakeSubmit reports whether Post was clicked since the last call.
func (c *Compose) TakeSubmit() bool {
	s := c.submit
	c.submit = false
	return s
}

// Params returns the status to post.
func (c *Compose) Params() api.StatusParams {
	p := api.StatusParams{
		Status:     strings.TrimSpace(c.area.Value()),
		Visibility: api.Visibilities[c.visible],
		Sensitive:  c.sensitive.Checked(),
	}
	if p.Sensitive {
		p.SpoilerText = strings.TrimSpace(c.warning.Value())
	}
	return p
}

// SetText replaces the text being written.
func (c *Compose) SetText(s string) { c.area.SetValue(s) }

// Reset clears the panel for the next post.
func (c *Compose) Reset() {
	c.area.Reset()
	c.sensitive.SetChecked(false)
	c.warning.SetValue("")
	c.visible = 0
	c.visibility.SetLabel(api.Visibilities[0])
	c.setFocus(0)
	c.submit = false
	c.layout()
}

// ControlRow renders the control row as text, for tests and previews.
func (c *Compose) ControlRow(width int) string {
	return c.controls.Render(canvas.Size{Cols: width, Rows: 1}, false).Text()[0]
}

// View implements layout.Renderer.
func (c *Compose) View() string {
	title := c.styles.ComposeTitle.Render(" New post ") +
		c.styles.Muted.Render("  ctrl+s send · tab next · esc cancel")
	row := c.controls.Render(canvas.Size{Cols: c.width, Rows: 1}, false)
	return title + "\n" + c.area.View() + "\n" + row.Render(c.palette)
}

// SetWidth implements layout.Renderer.
func (c *Compose) SetWidth(w int) {
	c.width = w
	c.area.SetWidth(w)
}

// Height implements layout.Renderer.
func (c *Compose) Height() int {
	return composeAreaHeight + 2
}
