package widget

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/drake/tusk/ui/style"
	"github.com/drake/tusk/ui/tui/canvas"
)

// line is a one-row item.
type line string

func (l line) Render(size canvas.Size, focus bool) *canvas.Canvas {
	return canvas.FromString(string(l), "").Fit(size.Cols, 1)
}

func viewRows(v *Viewport) []string {
	rows := strings.Split(ansi.Strip(v.View()), "\n")
	for i, r := range rows {
		rows[i] = strings.TrimRight(r, " ")
	}
	return rows
}

func newTestViewport(width, height int, items ...string) *Viewport {
	v := NewViewport(style.DefaultPalette())
	v.SetSize(width, height)
	for _, it := range items {
		v.Append(line(it))
	}
	return v
}

func TestViewportShowsNewestAtBottom(t *testing.T) {
	v := newTestViewport(6, 3, "one", "two", "three")

	rows := viewRows(v)
	want := []string{"──────", "three", "──────"}
	if strings.Join(rows, "|") != strings.Join(want, "|") {
		t.Fatalf("rows = %q, want %q", rows, want)
	}
	if v.Mode() != ModeLive {
		t.Error("expected live mode")
	}
}

func TestViewportPadsShortContent(t *testing.T) {
	v := newTestViewport(6, 4, "one")
	rows := viewRows(v)
	if len(rows) != 4 || rows[0] != "" || rows[2] != "one" {
		t.Fatalf("rows = %q", rows)
	}
}

func TestViewportScrollAndNewLines(t *testing.T) {
	v := newTestViewport(6, 2, "a", "b", "c")

	v.ScrollUp(2)
	if v.Mode() != ModeScrolled || v.Offset() != 2 {
		t.Fatalf("mode %v offset %d", v.Mode(), v.Offset())
	}

	v.Append(line("d"))
	if v.NewLineCount() != 2 || v.Offset() != 4 {
		t.Errorf("new lines %d offset %d, want 2 and 4", v.NewLineCount(), v.Offset())
	}
	if rows := viewRows(v); rows[0] != "b" {
		t.Errorf("window moved: %q", rows)
	}

	v.GotoBottom()
	if v.Mode() != ModeLive || v.NewLineCount() != 0 {
		t.Error("GotoBottom should return to live mode")
	}
}

func TestViewportPrependKeepsWindow(t *testing.T) {
	v := newTestViewport(6, 2, "b", "c")
	v.ScrollUp(1)
	before := viewRows(v)

	v.Prepend(line("a"))
	if after := viewRows(v); strings.Join(after, "|") != strings.Join(before, "|") {
		t.Errorf("window moved from %q to %q", before, after)
	}
	if v.Len() != 3 {
		t.Errorf("Len = %d", v.Len())
	}
}

func TestViewportGotoTopAndAtTop(t *testing.T) {
	v := newTestViewport(6, 2, "a", "b", "c")
	if v.AtTop() {
		t.Fatal("AtTop at bottom of a long list")
	}
	v.GotoTop()
	if !v.AtTop() {
		t.Fatal("not at top after GotoTop")
	}
	if rows := viewRows(v); rows[0] != "a" {
		t.Errorf("top rows = %q", rows)
	}
	v.PageDown()
	if v.AtTop() {
		t.Error("still at top after PageDown")
	}
}

func TestViewportLimitDropsOldest(t *testing.T) {
	v := newTestViewport(6, 10, "a", "b", "c")
	v.SetLimit(2)
	if v.Len() != 2 || v.Items()[0] != line("b") {
		t.Fatalf("items = %v", v.Items())
	}
}

func TestViewportRerendersOnResize(t *testing.T) {
	v := newTestViewport(10, 1, "abcdefgh")
	v.SetSize(4, 2)
	rows := viewRows(v)
	if rows[0] != "abcd" || rows[1] != "────" {
		t.Errorf("rows = %q", rows)
	}
}

func TestScrollModeString(t *testing.T) {
	if ModeLive.String() != "live" || ModeScrolled.String() != "scrolled" {
		t.Error("unexpected ScrollMode names")
	}
}
