package widget

import (
	"image"
	"image/color"
	"testing"

	"github.com/drake/tusk/ui/tui/canvas"
	"github.com/drake/tusk/ui/tui/textlayout"
)

type fakeImages map[string]image.Image

func (f fakeImages) Cached(url string) (image.Image, bool) {
	img, ok := f[url]
	return img, ok
}

func solid(c color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := range 4 {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

var blob = Emoji{Shortcode: "blob", URL: "https://example.org/blob.png"}

func TestEmojiTextUsesCachedImages(t *testing.T) {
	src := fakeImages{blob.URL: solid(color.NRGBA{R: 255, A: 255})}
	e := NewEmojiText("hi :blob: {there}", []Emoji{blob}, EmojiOptions{Images: src})
	if e.Images() != 1 {
		t.Fatalf("Images() = %d, want 1", e.Images())
	}

	c := e.Render(canvas.Size{Cols: 20}, false)
	row := c.Row(0)
	for col := 3; col < 5; col++ {
		if row[col].Text != upperHalf || row[col].FG == nil {
			t.Errorf("col %d = %+v, want an image cell", col, row[col])
		}
	}
	if got, want := c.Text()[0], "hi "+upperHalf+upperHalf+" {there}       "; got != want {
		t.Errorf("row = %q, want %q", got, want)
	}
}

func TestEmojiTextFallsBackToShortcode(t *testing.T) {
	tests := []struct {
		name string
		opts EmojiOptions
	}{
		{"no image source", EmojiOptions{}},
		{"not cached yet", EmojiOptions{Images: fakeImages{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEmojiText("hi :blob:", []Emoji{blob}, tt.opts)
			if e.Images() != 0 {
				t.Fatalf("Images() = %d", e.Images())
			}
			if got := e.Render(canvas.Size{Cols: 9}, false).Text()[0]; got != "hi :blob:" {
				t.Fatalf("row = %q", got)
			}
		})
	}
}

func TestEmojiTextUnknownShortcodeStaysText(t *testing.T) {
	src := fakeImages{blob.URL: solid(color.NRGBA{G: 255, A: 255})}
	e := NewEmojiText(":nope: :blob:", []Emoji{blob}, EmojiOptions{Images: src})
	c := e.Render(canvas.Size{Cols: 9}, false)
	if got := c.Text()[0][:7]; got != ":nope: " {
		t.Fatalf("row = %q", c.Text()[0])
	}
	if e.Images() != 1 {
		t.Fatalf("Images() = %d", e.Images())
	}
}

func TestEmojiTextGray(t *testing.T) {
	src := fakeImages{blob.URL: solid(color.NRGBA{R: 255, A: 255})}
	e := NewEmojiText(":blob:", []Emoji{blob}, EmojiOptions{Images: src, Gray: true})
	cell := e.Render(canvas.Size{Cols: 2}, false).Cell(0, 0)
	if cell.FG == nil {
		t.Fatal("emoji cell has no colour")
	}
	r, g, b, _ := cell.FG.RGBA()
	if r != g || g != b {
		t.Fatalf("gray emoji has colour %d %d %d", r, g, b)
	}
}

func TestImageHalfBlocks(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	// bottom pixel stays transparent
	c := NewImage(img).Render(canvas.Size{Cols: 1, Rows: 1}, false)
	cell := c.Cell(0, 0)
	if cell.Text != upperHalf || cell.BG != nil {
		t.Fatalf("cell = %+v", cell)
	}

	empty := NewImage(image.NewNRGBA(image.Rect(0, 0, 2, 2))).Render(canvas.Size{Cols: 2}, false)
	if got := empty.Text()[0]; got != "  " {
		t.Fatalf("transparent image = %q", got)
	}
}

func TestFallbackTextDrawsPlainOnLayoutError(t *testing.T) {
	f := newFallbackText("a b", "", textlayout.AlignLeft, textlayout.WrapSpace)
	img := NewImage(solid(color.NRGBA{G: 255, A: 255}))
	// One record placed twice cannot be laid out.
	if err := f.setText("{0:2} {0:2}", nil, img); err != nil {
		t.Fatalf("setText: %v", err)
	}
	if _, err := f.Compose(canvas.Size{Cols: 10}, false); err == nil {
		t.Fatal("Compose accepted a repeated record")
	}
	if got := f.Render(canvas.Size{Cols: 5}, false).Text()[0]; got != "a b  " {
		t.Errorf("row = %q, want the plain text", got)
	}
}

func TestEmojiTextRejectedTemplateDrawsPlain(t *testing.T) {
	text := "odd " + string(canvas.MarkerHead) + "text"
	e := NewEmojiText(text, nil, EmojiOptions{})
	if e.Images() != 0 {
		t.Fatalf("Images() = %d", e.Images())
	}
	if got := e.Render(canvas.Size{Cols: 8}, false).Text()[0]; got != "odd text" {
		t.Errorf("row = %q", got)
	}
	if cols, rows := e.Pack(); cols != 8 || rows != 1 {
		t.Errorf("Pack() = %d, %d", cols, rows)
	}
	if e.Text() != text {
		t.Errorf("Text() = %q", e.Text())
	}
}
