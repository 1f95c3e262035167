package canvas

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestClustersMeasureMarkersAsOneColumn(t *testing.T) {
	s := string([]rune{MarkerHead, MarkerCont, MarkerCont})
	if w := Width(s); w != 3 {
		t.Fatalf("marker run width = %d, want 3", w)
	}
	if w := Width("日本"); w != 4 {
		t.Fatalf("wide text width = %d, want 4", w)
	}
}

func TestFromStringWideClusters(t *testing.T) {
	c := FromString("a日b", "")
	if c.Cols() != 4 {
		t.Fatalf("cols = %d, want 4", c.Cols())
	}
	if got := c.Text()[0]; got != "a日b" {
		t.Fatalf("text = %q", got)
	}
}

func TestTrim(t *testing.T) {
	c := FromCells(3, Cells("abc", ""), Cells("def", ""), Cells("ghi", ""))
	got := c.Trim(1, 5).Text()
	if len(got) != 2 || got[0] != "def" || got[1] != "ghi" {
		t.Fatalf("Trim(1, 5) = %q", got)
	}
	if rows := c.Trim(5, 1).Rows(); rows != 0 {
		t.Fatalf("Trim past end rows = %d, want 0", rows)
	}
}

func TestPadTrimLeftRight(t *testing.T) {
	c := FromString("abcdef", "")
	tests := []struct {
		left, right int
		want        string
	}{
		{0, 0, "abcdef"},
		{-2, 0, "cdef"},
		{0, -2, "abcd"},
		{-2, -3, "c"},
		{2, 1, "  abcdef "},
		{-6, 0, ""},
	}
	for _, tt := range tests {
		got := c.PadTrimLeftRight(tt.left, tt.right)
		if text := got.Text()[0]; text != tt.want {
			t.Errorf("PadTrimLeftRight(%d, %d) = %q, want %q", tt.left, tt.right, text, tt.want)
		}
		if got.Cols() != len(tt.want) {
			t.Errorf("PadTrimLeftRight(%d, %d) cols = %d", tt.left, tt.right, got.Cols())
		}
	}
}

func TestCutThroughWideClusterLeavesBlank(t *testing.T) {
	c := FromString("a日b", "x")

	left := c.SliceCols(0, 2)
	if got := left.Text()[0]; got != "a " {
		t.Fatalf("left half = %q, want %q", got, "a ")
	}
	right := c.SliceCols(2, 2)
	if got := right.Text()[0]; got != " b" {
		t.Fatalf("right half = %q, want %q", got, " b")
	}
	if attr := right.Cell(0, 0).Attr; attr != "x" {
		t.Fatalf("blanked cell lost attr: %q", attr)
	}
}

func TestJoinAppliesAttrAndWidth(t *testing.T) {
	a := FromString("ab", "")
	b := FromString("xyz", "keep")
	j := Join(Part{Canvas: a, Attr: "left", Cols: 3}, Part{Canvas: b, Cols: 2})

	if j.Cols() != 5 || j.Rows() != 1 {
		t.Fatalf("size = %dx%d, want 5x1", j.Cols(), j.Rows())
	}
	if got := j.Text()[0]; got != "ab xy" {
		t.Fatalf("text = %q", got)
	}
	if attr := j.Cell(0, 0).Attr; attr != "left" {
		t.Errorf("default attr not mapped: %q", attr)
	}
	if attr := j.Cell(3, 0).Attr; attr != "keep" {
		t.Errorf("explicit attr overwritten: %q", attr)
	}
}

func TestJoinPadsShorterParts(t *testing.T) {
	tall := FromCells(1, Cells("a", ""), Cells("b", ""))
	short := FromString("c", "")
	j := Join(Part{Canvas: tall}, Part{Canvas: short})
	got := j.Text()
	if len(got) != 2 || got[0] != "ac" || got[1] != "b " {
		t.Fatalf("join = %q", got)
	}
}

func TestCombine(t *testing.T) {
	c := Combine(FromString("ab", ""), FromString("cdef", ""))
	got := c.Text()
	if c.Cols() != 4 || got[0] != "ab  " || got[1] != "cdef" {
		t.Fatalf("combine = %q (cols %d)", got, c.Cols())
	}
}

func TestSliceReassembles(t *testing.T) {
	c := FromString("0123456789", "img")
	for split := 1; split < 10; split++ {
		joined := Join(Part{Canvas: c.SliceCols(0, split)}, Part{Canvas: c.SliceCols(split, 10-split)})
		if !joined.Equal(c) {
			t.Fatalf("split at %d does not reassemble: %q", split, joined.Text())
		}
	}
}

func TestRenderGroupsRuns(t *testing.T) {
	row := append(Cells("ab", ""), Cells("cd", "bold")...)
	row = append(row, Cell{Text: "▀", FG: lipgloss.Color("#ff0000"), BG: lipgloss.Color("#0000ff")})
	c := FromCells(5, row)

	out := c.Render(Palette{"bold": lipgloss.NewStyle().Bold(true)})
	if !strings.HasPrefix(out, "ab") {
		t.Fatalf("unstyled prefix missing: %q", out)
	}
	if !strings.Contains(out, "cd") || !strings.Contains(out, "▀") {
		t.Fatalf("styled runs missing: %q", out)
	}
}

func TestEqual(t *testing.T) {
	a := FromString("abc", "x")
	b := FromString("abc", "x")
	if !a.Equal(b) {
		t.Fatal("identical canvases not equal")
	}
	if a.Equal(FromString("abc", "y")) {
		t.Fatal("attr difference ignored")
	}
}
