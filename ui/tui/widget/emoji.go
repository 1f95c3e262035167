package widget

import (
	"image"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/drake/tusk/images"
	"github.com/drake/tusk/ui/tui/canvas"
	"github.com/drake/tusk/ui/tui/embed"
	"github.com/drake/tusk/ui/tui/textlayout"
)

// Compile-time check that EmojiText implements canvas.Widget
var _ canvas.Widget = (*EmojiText)(nil)

// EmojiCols is the width of an inline emoji image.
const EmojiCols = 2

// Emoji is a server custom emoji.
type Emoji struct {
	Shortcode string
	URL       string
}

// ImageSource looks up decoded images without blocking.
type ImageSource interface {
	Cached(url string) (image.Image, bool)
}

// EmojiOptions configures NewEmojiText.
type EmojiOptions struct {
	// Images supplies cached emoji bitmaps. When nil, for example on a
	// terminal that cannot draw images, shortcodes stay as text.
	Images ImageSource
	Gray   bool
	Attr   string
	Align  textlayout.Align
	Wrap   textlayout.Wrap
}

// EmojiText shows text in which :shortcode: references to custom emoji are
// replaced by small images. A shortcode whose image is not cached yet is
// shown as text; rebuilding the widget once the image arrives picks it up.
type EmojiText struct {
	text   *fallbackText
	plain  string
	images int
}

// NewEmojiText creates an EmojiText. It never fetches.
func NewEmojiText(text string, emojis []Emoji, opts EmojiOptions) *EmojiText {
	t := newFallbackText(text, opts.Attr, opts.Align, opts.Wrap)
	e := &EmojiText{text: t, plain: text}

	template, widgets := emojiTemplate(text, emojis, opts)
	e.images = len(widgets)
	if t.setText(template, nil, widgets...) != nil {
		e.images = 0
	}
	return e
}

// Text returns the source text.
func (e *EmojiText) Text() string { return e.plain }

// Images returns the number of shortcodes drawn as images.
func (e *EmojiText) Images() int { return e.images }

// Pack returns the natural size.
func (e *EmojiText) Pack() (cols, rows int) {
	if e.text.failed {
		return e.text.plain.Pack()
	}
	return e.text.Pack()
}

// Render implements canvas.Widget.
func (e *EmojiText) Render(size canvas.Size, focus bool) *canvas.Canvas {
	return e.text.Render(size, focus)
}

func emojiTemplate(text string, emojis []Emoji, opts EmojiOptions) (string, []canvas.Widget) {
	re := shortcodePattern(emojis)
	if re == nil || opts.Images == nil {
		return escapeBraces(text), nil
	}
	urls := make(map[string]string, len(emojis))
	for _, e := range emojis {
		urls[e.Shortcode] = e.URL
	}

	var (
		b       strings.Builder
		widgets []canvas.Widget
		last    int
	)
	for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
		code := text[m[2]:m[3]]
		img, ok := opts.Images.Cached(urls[code])
		if !ok {
			continue
		}
		if opts.Gray {
			img = images.Gray(img)
		}
		b.WriteString(escapeBraces(text[last:m[0]]))
		b.WriteString("{" + strconv.Itoa(len(widgets)) + ":" + strconv.Itoa(EmojiCols) + "}")
		widgets = append(widgets, NewImage(img))
		last = m[1]
	}
	b.WriteString(escapeBraces(text[last:]))
	return b.String(), widgets
}

// shortcodePattern matches any known :shortcode:, longest first.
func shortcodePattern(emojis []Emoji) *regexp.Regexp {
	codes := make([]string, 0, len(emojis))
	for _, e := range emojis {
		if e.Shortcode != "" {
			codes = append(codes, regexp.QuoteMeta(e.Shortcode))
		}
	}
	if len(codes) == 0 {
		return nil
	}
	sort.Slice(codes, func(i, j int) bool { return len(codes[i]) > len(codes[j]) })
	return regexp.MustCompile(":(" + strings.Join(codes, "|") + "):")
}

// fallbackText is an embed.Text that draws plain text instead when its
// template is rejected or its widgets cannot be placed.
type fallbackText struct {
	*embed.Text
	plain  *textlayout.Text
	failed bool
}

// newFallbackText prepares plain, stripped of marker runes, as the
// fallback.
func newFallbackText(plain, attr string, align textlayout.Align, wrap textlayout.Wrap) *fallbackText {
	t := embed.New(align, wrap)
	t.SetAttr(attr)
	p := textlayout.NewMarkup(textlayout.Span{Attr: attr, Text: strings.Map(dropMarkers, plain)})
	p.SetAlign(align)
	p.SetWrap(wrap)
	return &fallbackText{Text: t, plain: p}
}

func (f *fallbackText) setText(template string, named map[string]canvas.Widget, widgets ...canvas.Widget) error {
	err := f.SetTextNamed(template, named, widgets...)
	f.failed = err != nil
	return err
}

// Render implements canvas.Widget.
func (f *fallbackText) Render(size canvas.Size, focus bool) *canvas.Canvas {
	if !f.failed {
		if c, err := f.Compose(size, focus); err == nil {
			return c
		}
	}
	return f.plain.Render(size, focus)
}

func escapeBraces(s string) string {
	return strings.NewReplacer("{", "{{", "}", "}}").Replace(s)
}

func dropMarkers(r rune) rune {
	if canvas.IsMarker(r) {
		return -1
	}
	return r
}
