package widget

import (
	"strings"

	"github.com/drake/tusk/ui/tui/canvas"
)

// ScrollMode indicates whether viewport is live or scrolled back.
type ScrollMode int

const (
	ModeLive ScrollMode = iota
	ModeScrolled
)

func (m ScrollMode) String() string {
	if m == ModeScrolled {
		return "scrolled"
	}
	return "live"
}

// DefaultItemLimit bounds the number of items a viewport keeps.
const DefaultItemLimit = 2000

// Viewport renders a window into a list of canvas widgets, oldest first.
// Items are rendered once per width and kept as styled lines.
type Viewport struct {
	items   []canvas.Widget
	limit   int
	palette canvas.Palette

	lines []string // rendered rows of all items, separators included
	dirty bool

	offset     int // Lines from bottom (0 = showing newest)
	height     int
	width      int
	mode       ScrollMode
	newLines   int
	cacheValid bool
	cachedView string
}

// NewViewport creates a viewport drawing with palette.
func NewViewport(palette canvas.Palette) *Viewport {
	return &Viewport{
		palette: palette,
		limit:   DefaultItemLimit,
		mode:    ModeLive,
	}
}

// SetLimit changes the item limit. Excess oldest items are dropped.
func (v *Viewport) SetLimit(n int) {
	if n > 0 {
		v.limit = n
		v.trim()
	}
}

// Len returns the number of items.
func (v *Viewport) Len() int { return len(v.items) }

// Items returns the items, oldest first.
func (v *Viewport) Items() []canvas.Widget { return v.items }

// Append adds newer items at the bottom.
func (v *Viewport) Append(items ...canvas.Widget) {
	if len(items) == 0 {
		return
	}
	v.items = append(v.items, items...)
	added := 0
	if !v.dirty && v.width > 0 {
		for _, it := range items {
			rows := v.render(it)
			added += len(rows)
			v.lines = append(v.lines, rows...)
		}
	} else {
		v.dirty = true
	}
	v.trim()
	v.OnNewLines(added)
}

// Prepend adds older items at the top. The visible window does not move.
func (v *Viewport) Prepend(items ...canvas.Widget) {
	if len(items) == 0 {
		return
	}
	v.items = append(append([]canvas.Widget(nil), items...), v.items...)
	if !v.dirty && v.width > 0 {
		var rows []string
		for _, it := range items {
			rows = append(rows, v.render(it)...)
		}
		v.lines = append(rows, v.lines...)
	} else {
		v.dirty = true
	}
	v.cacheValid = false
}

// SetItems replaces all items, for example after a refresh.
func (v *Viewport) SetItems(items []canvas.Widget) {
	v.items = append([]canvas.Widget(nil), items...)
	v.trim()
	v.Invalidate()
}

// Invalidate forces every item to be rendered again, for example when
// images arrive or the palette changes.
func (v *Viewport) Invalidate() {
	v.dirty = true
	v.cacheValid = false
}

func (v *Viewport) trim() {
	if over := len(v.items) - v.limit; over > 0 {
		v.items = v.items[over:]
		v.dirty = true
		v.cacheValid = false
	}
}

// render draws one item followed by a separator row.
func (v *Viewport) render(item canvas.Widget) []string {
	c := item.Render(canvas.Size{Cols: v.width}, false)
	rows := strings.Split(c.Render(v.palette), "\n")
	if c.Rows() == 0 {
		rows = nil
	}
	sep := canvas.FromString(strings.Repeat("─", v.width), "muted")
	return append(rows, sep.Render(v.palette))
}

func (v *Viewport) ensureLines() {
	if !v.dirty {
		return
	}
	v.lines = v.lines[:0]
	if v.width > 0 {
		for _, it := range v.items {
			v.lines = append(v.lines, v.render(it)...)
		}
	}
	v.dirty = false
	v.clampOffset()
}

func (v *Viewport) maxOffset() int {
	return max(len(v.lines)-v.height, 0)
}

func (v *Viewport) clampOffset() {
	if v.offset > v.maxOffset() {
		v.offset = v.maxOffset()
	}
	if v.offset <= 0 {
		v.offset = 0
		v.mode = ModeLive
		v.newLines = 0
	}
}

// View returns the visible rows.
func (v *Viewport) View() string {
	v.ensureLines()
	if v.cacheValid {
		return v.cachedView
	}

	if v.height <= 0 {
		v.cachedView = ""
		v.cacheValid = true
		return v.cachedView
	}

	var b strings.Builder
	b.Grow(v.height * (v.width + 1))

	totalLines := len(v.lines)
	endIdx := totalLines - v.offset
	if endIdx > totalLines {
		endIdx = totalLines
	}

	startIdx := endIdx - v.height
	if startIdx < 0 {
		startIdx = 0
	}

	visibleCount := endIdx - startIdx
	emptyLines := v.height - visibleCount

	for i := 0; i < emptyLines; i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
	}

	for i := startIdx; i < endIdx; i++ {
		if emptyLines > 0 || i > startIdx {
			b.WriteByte('\n')
		}
		b.WriteString(v.lines[i])
	}

	v.cachedView = b.String()
	v.cacheValid = true
	return v.cachedView
}

// SetSize sets the window size. A new width renders every item again.
func (v *Viewport) SetSize(width, height int) {
	if width != v.width {
		v.dirty = true
	}
	if width != v.width || height != v.height {
		v.width = width
		v.height = height
		v.cacheValid = false
	}
}

// OnNewLines is called when lines are added.
func (v *Viewport) OnNewLines(count int) {
	switch v.mode {
	case ModeLive:
		v.cacheValid = false
	case ModeScrolled:
		v.offset += count
		v.newLines += count
		v.cacheValid = false
	}
}

// PageUp scrolls up one page.
func (v *Viewport) PageUp() {
	v.ScrollUp(v.height - 1)
}

// PageDown scrolls down one page.
func (v *Viewport) PageDown() {
	v.ScrollDown(v.height - 1)
}

// ScrollUp scrolls up by N lines (toward older content).
func (v *Viewport) ScrollUp(lines int) {
	v.ensureLines()
	v.offset += max(lines, 1)
	if v.offset > v.maxOffset() {
		v.offset = v.maxOffset()
	}
	if v.offset > 0 {
		v.mode = ModeScrolled
	}
	v.cacheValid = false
}

// ScrollDown scrolls down by N lines (toward newer content).
func (v *Viewport) ScrollDown(lines int) {
	v.offset -= max(lines, 1)
	if v.offset <= 0 {
		v.offset = 0
		v.mode = ModeLive
		v.newLines = 0
	}
	v.cacheValid = false
}

// GotoBottom returns to live mode.
func (v *Viewport) GotoBottom() {
	v.offset = 0
	v.mode = ModeLive
	v.newLines = 0
	v.cacheValid = false
}

// GotoTop scrolls to the oldest line.
func (v *Viewport) GotoTop() {
	v.ensureLines()
	v.offset = v.maxOffset()
	if v.offset > 0 {
		v.mode = ModeScrolled
	}
	v.cacheValid = false
}

// AtTop reports whether the oldest line is visible.
func (v *Viewport) AtTop() bool {
	v.ensureLines()
	return v.offset >= v.maxOffset()
}

// Mode returns the current scroll mode.
func (v *Viewport) Mode() ScrollMode {
	return v.mode
}

// Offset returns the number of lines hidden below the window.
func (v *Viewport) Offset() int {
	return v.offset
}

// NewLineCount returns lines added while scrolled.
func (v *Viewport) NewLineCount() int {
	return v.newLines
}
