package widget

import (
	"testing"

	"github.com/drake/tusk/ui/tui/canvas"
	"github.com/drake/tusk/ui/tui/embed"
	"github.com/drake/tusk/ui/tui/textlayout"
)

func TestControlWidthIsLabelPlusFour(t *testing.T) {
	for _, c := range []*Control{NewButton("Post", nil), NewCheckBox("Sensitive", false, nil)} {
		cols, rows := c.Pack()
		if cols != canvas.Width(c.Label())+4 || rows != 1 {
			t.Errorf("%q Pack() = %d, %d", c.Label(), cols, rows)
		}
	}
}

func TestButtonRender(t *testing.T) {
	b := NewButton("OK", nil)
	c := b.Render(canvas.Size{Cols: 8}, false)
	if got := c.Text()[0]; got != "< OK >  " {
		t.Fatalf("row = %q", got)
	}
	for col := range 8 {
		if attr := c.Cell(col, 0).Attr; attr != "button" {
			t.Fatalf("col %d attr = %q", col, attr)
		}
	}
	if attr := b.Render(canvas.Size{Cols: 6}, true).Cell(0, 0).Attr; attr != "button_focused" {
		t.Errorf("focused attr = %q", attr)
	}
}

func TestButtonClick(t *testing.T) {
	clicks := 0
	b := NewButton("Post", func(*Control) { clicks++ })
	for _, key := range []string{"enter", " ", "x"} {
		b.HandleKey(key)
	}
	if clicks != 2 {
		t.Fatalf("clicks = %d, want 2", clicks)
	}
}

func TestCheckBoxToggle(t *testing.T) {
	changes := 0
	cb := NewCheckBox("Sensitive", false, func(*Control) { changes++ })
	if !cb.HandleKey(" ") || !cb.Checked() {
		t.Fatal("space did not check")
	}
	if got := cb.Render(canvas.Size{Cols: 13}, false).Text()[0]; got != "[X] Sensitive" {
		t.Errorf("row = %q", got)
	}
	cb.HandleKey("enter")
	if cb.Checked() || changes != 2 {
		t.Fatalf("checked = %v, changes = %d", cb.Checked(), changes)
	}
}

func TestEditBox(t *testing.T) {
	var last string
	e := NewEditBox("CW: ", "", func(c *Control) { last = c.Value() })
	for _, key := range []string{"s", "p", "o", "i", "l", "backspace", " ", "x"} {
		if !e.HandleKey(key) {
			t.Fatalf("key %q not consumed", key)
		}
	}
	if e.Value() != "spoi x" || last != "spoi x" {
		t.Fatalf("value = %q, last = %q", e.Value(), last)
	}
	if e.HandleKey("enter") {
		t.Error("enter consumed by a plain edit box")
	}
	if got := e.Render(canvas.Size{Cols: 10}, false).Text()[0]; got != "CW: spoi x" {
		t.Errorf("row = %q", got)
	}
	if attr := e.Render(canvas.Size{Cols: 10}, true).Cell(0, 0).Attr; attr != "editbox_focused" {
		t.Errorf("focused attr = %q", attr)
	}
}

func TestClickableEditBox(t *testing.T) {
	submitted := ""
	c := NewControl("> ", Clickable|Editable)
	c.OnClick = func(c *Control) { submitted = c.Value() }
	c.HandleKey("h")
	c.HandleKey("i")
	c.HandleKey("enter")
	if submitted != "hi" {
		t.Fatalf("submitted = %q", submitted)
	}
}

func TestControlEmbedsInline(t *testing.T) {
	txt := embed.New(textlayout.AlignLeft, textlayout.WrapSpace)
	if err := txt.SetText("Press {0:8} now", NewButton("Post", nil)); err != nil {
		t.Fatal(err)
	}
	c := txt.Render(canvas.Size{Cols: 20}, false)
	if got := c.Text()[0]; got != "Press < Post > now  " {
		t.Fatalf("row = %q", got)
	}
}
