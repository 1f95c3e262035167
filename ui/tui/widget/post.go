package widget

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/drake/tusk/api"
	"github.com/drake/tusk/richtext"
	"github.com/drake/tusk/ui/tui/canvas"
	"github.com/drake/tusk/ui/tui/textlayout"
)

// Compile-time check that Post implements canvas.Widget
var _ canvas.Widget = (*Post)(nil)

const timeLayout = "Jan 02 15:04"

// PostOptions configures NewPost.
type PostOptions struct {
	Images ImageSource
	Gray   bool
	Align  textlayout.Align
	Wrap   textlayout.Wrap
}

// Post renders one timeline entry: an optional reblog line, the author
// header with custom emoji, the content (behind a content warning when
// the status has one), media and counters.
type Post struct {
	status   *api.Status
	opts     PostOptions
	reblog   string
	header   *EmojiText
	body     canvas.Widget
	warning  *fallbackText
	revealed bool
}

// NewPost creates the widget for s. Reblogs show the original status.
func NewPost(s *api.Status, opts PostOptions) *Post {
	orig := s.Original()
	p := &Post{status: s, opts: opts}
	if orig != s {
		p.reblog = "♺ " + s.Account.Name() + " boosted"
	}

	header := orig.Account.Name() + " @" + orig.Account.Acct
	p.header = NewEmojiText(header, emojis(orig.Account.Emojis), EmojiOptions{
		Images: opts.Images,
		Gray:   opts.Gray,
		Attr:   "display_name",
		Wrap:   textlayout.WrapEllipsis,
	})

	p.body = p.content(orig)
	if orig.SpoilerText != "" {
		p.warning = newFallbackText("CW: "+orig.SpoilerText, "sensitive", opts.Align, opts.Wrap)
		p.warning.setText("CW: "+escape(orig.SpoilerText)+" {show:8}",
			map[string]canvas.Widget{"show": NewButton("show", nil)})
	}
	return p
}

// content picks the body widget. Statuses with custom emoji in their text
// are drawn through EmojiText when images are available; everything else
// keeps hashtag and mention highlighting.
func (p *Post) content(s *api.Status) canvas.Widget {
	if p.opts.Images != nil && len(s.Emojis) > 0 {
		var paras []string
		for _, para := range richtext.Paragraphs(s.Content) {
			paras = append(paras, strings.Join(para, "\n"))
		}
		return NewEmojiText(strings.Join(paras, "\n\n"), emojis(s.Emojis), EmojiOptions{
			Images: p.opts.Images,
			Gray:   p.opts.Gray,
			Align:  p.opts.Align,
			Wrap:   p.opts.Wrap,
		})
	}
	t := textlayout.NewMarkup(richtext.Markup(s.Content, true)...)
	t.SetAlign(p.opts.Align)
	t.SetWrap(p.opts.Wrap)
	return t
}

// Status returns the status shown.
func (p *Post) Status() *api.Status { return p.status }

// SetRevealed shows or hides content behind a content warning.
func (p *Post) SetRevealed(v bool) { p.revealed = v }

// Revealed reports whether the content warning is lifted.
func (p *Post) Revealed() bool { return p.revealed || p.warning == nil }

// PlainText returns the author and text of the status, for filters.
func (p *Post) PlainText() string {
	orig := p.status.Original()
	var b strings.Builder
	b.WriteString(orig.SpoilerText)
	for _, para := range richtext.Paragraphs(orig.Content) {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.Join(para, "\n"))
	}
	return b.String()
}

// EmojiURLs lists the custom emoji images the post can show.
func (p *Post) EmojiURLs() []string {
	orig := p.status.Original()
	var urls []string
	for _, e := range emojis(slices.Concat(orig.Account.Emojis, orig.Emojis)) {
		urls = append(urls, e.URL)
	}
	return urls
}

// Render implements canvas.Widget.
func (p *Post) Render(size canvas.Size, focus bool) *canvas.Canvas {
	cols := size.Cols
	if cols < 1 {
		return canvas.New(0, 0)
	}
	orig := p.status.Original()
	var rows []*canvas.Canvas

	if p.reblog != "" {
		rows = append(rows, canvas.FromString(p.reblog, "reblog").Fit(cols, 1))
	}
	rows = append(rows, p.headerRow(orig, cols, focus))

	if p.warning != nil {
		rows = append(rows, p.warning.Render(canvas.Size{Cols: cols}, focus))
	}
	if p.Revealed() {
		rows = append(rows, p.body.Render(canvas.Size{Cols: cols}, focus))
		for _, a := range orig.MediaAttachments {
			rows = append(rows, canvas.FromString(mediaLine(a), "muted").Fit(cols, 1))
		}
	}

	counts := fmt.Sprintf("↩ %d  ♺ %d  ★ %d", orig.RepliesCount, orig.ReblogsCount, orig.FavouritesCount)
	rows = append(rows, canvas.FromString(counts, "muted").Fit(cols, 1))
	return canvas.Combine(rows...)
}

func (p *Post) headerRow(s *api.Status, cols int, focus bool) *canvas.Canvas {
	stamp := ""
	if !s.CreatedAt.IsZero() {
		stamp = s.CreatedAt.In(time.Local).Format(timeLayout)
	}
	sw := canvas.Width(stamp)
	if stamp == "" || sw+2 > cols {
		return p.header.Render(canvas.Size{Cols: cols, Rows: 1}, focus)
	}
	name := p.header.Render(canvas.Size{Cols: cols - sw - 1, Rows: 1}, focus)
	return canvas.Join(
		canvas.Part{Canvas: name, Cols: cols - sw - 1},
		canvas.Part{Canvas: canvas.New(1, 1), Cols: 1},
		canvas.Part{Canvas: canvas.FromString(stamp, "status_time"), Cols: sw},
	)
}

func mediaLine(a api.Attachment) string {
	what := a.Description
	if what == "" {
		what = a.URL
	}
	return "[" + a.Type + "] " + what
}

func emojis(in []api.Emoji) []Emoji {
	out := make([]Emoji, 0, len(in))
	for _, e := range in {
		url := e.StaticURL
		if url == "" {
			url = e.URL
		}
		out = append(out, Emoji{Shortcode: e.Shortcode, URL: url})
	}
	return out
}

func escape(s string) string {
	return escapeBraces(strings.Map(dropMarkers, s))
}
