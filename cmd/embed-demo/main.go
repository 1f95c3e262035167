// embed-demo is a testbed for text with embedded widgets.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/drake/tusk/ui/style"
	"github.com/drake/tusk/ui/tui/canvas"
	"github.com/drake/tusk/ui/tui/embed"
	"github.com/drake/tusk/ui/tui/textlayout"
	"github.com/drake/tusk/ui/tui/widget"
)

var (
	aligns = []textlayout.Align{textlayout.AlignLeft, textlayout.AlignCenter, textlayout.AlignRight}
	wraps  = []textlayout.Wrap{textlayout.WrapSpace, textlayout.WrapAny, textlayout.WrapClip, textlayout.WrapEllipsis}
)

func main() {
	scenario := flag.String("scenario", "controls", "Demo scenario (controls, emoji, long)")
	width := flag.Int("width", 40, "Initial text width")
	flag.Parse()

	text, err := setupScenario(*scenario)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Available: controls, emoji, long")
		os.Exit(1)
	}

	m := model{
		text:    text,
		palette: style.DefaultPalette(),
		styles:  style.DefaultStyles(),
		width:   *width,
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// swatch is a solid block of colour with a lighter lower half.
func swatch(c color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	light := color.NRGBA{R: c.R/2 + 128, G: c.G/2 + 128, B: c.B/2 + 128, A: 255}
	for y := range 8 {
		for x := range 8 {
			if y < 4 {
				img.SetNRGBA(x, y, c)
			} else {
				img.SetNRGBA(x, y, light)
			}
		}
	}
	return img
}

func setupScenario(name string) (*embed.Text, error) {
	t := embed.New(textlayout.AlignLeft, textlayout.WrapSpace)
	switch name {
	case "controls":
		save := widget.NewButton("Save", nil)
		draft := widget.NewCheckBox("Draft", false, nil)
		nameBox := widget.NewEditBox("Name: ", "tusk", nil)
		return t, t.SetTextNamed(
			"Press {save:8} to keep your changes, tick {draft:9} to hold them back, "+
				"and pick a colour {0:2} or {1:2}. Your {name:10} is shown on every post.",
			map[string]canvas.Widget{"save": save, "draft": draft, "name": nameBox},
			widget.NewImage(swatch(color.NRGBA{R: 200, G: 40, B: 40, A: 255})),
			widget.NewImage(swatch(color.NRGBA{R: 40, G: 90, B: 200, A: 255})),
		)
	case "emoji":
		return t, t.SetText("Custom emoji such as {:2} sit on the baseline {:2} of ordinary text, "+
			"even {:2} when the line wraps around them.",
			widget.NewImage(swatch(color.NRGBA{R: 250, G: 200, B: 30, A: 255})),
			widget.NewImage(swatch(color.NRGBA{R: 30, G: 180, B: 90, A: 255})),
			widget.NewImage(swatch(color.NRGBA{R: 160, G: 60, B: 200, A: 255})),
		)
	case "long":
		// A widget wider than the text wraps across rows.
		return t, t.SetText("Before {:30} after.",
			widget.NewButton("a rather long button label", nil))
	}
	return nil, fmt.Errorf("unknown scenario: %s", name)
}

type model struct {
	text    *embed.Text
	palette canvas.Palette
	styles  style.Styles
	width   int
	align   int
	wrap    int
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left":
			m.width = max(m.width-1, 1)
		case "right":
			m.width++
		case "a":
			m.align = (m.align + 1) % len(aligns)
			m.text.SetAlign(aligns[m.align])
		case "w":
			m.wrap = (m.wrap + 1) % len(wraps)
			m.text.SetWrap(wraps[m.wrap])
		}
	}
	return m, nil
}

func (m model) View() string {
	header := m.styles.ComposeTitle.Render(" embed demo ") + m.styles.Muted.Render(fmt.Sprintf(
		"  width %d · align %s · wrap %s   ←/→ width · a align · w wrap · q quit",
		m.width, aligns[m.align], wraps[m.wrap]))

	c, err := m.text.Compose(canvas.Size{Cols: m.width}, false)
	if err != nil {
		return header + "\n\n" + m.styles.Error.Render(err.Error())
	}
	ruler := m.styles.Muted.Render(strings.Repeat("·", m.width))
	return header + "\n\n" + ruler + "\n" + c.Render(m.palette) + "\n" + ruler
}
