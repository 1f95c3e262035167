// Package richtext converts status HTML into wrapped terminal text.
package richtext

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/mattn/go-runewidth"
	"golang.org/x/net/html"

	"github.com/drake/tusk/text"
	"github.com/drake/tusk/ui/tui/textlayout"
)

var ErrUnknownRenderMode = errors.New("unknown render mode; specify plaintext or markdown")

// Line is one output line as styled spans.
type Line []textlayout.Span

// String returns the line without attributes.
func (l Line) String() string {
	var b strings.Builder
	for _, s := range l {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Paragraphs splits HTML into paragraphs of lines. <p> starts a paragraph,
// <br> a line. Text in spans of class "invisible" is dropped and spans of
// class "ellipsis" are followed by "…", which is how servers shorten links.
func Paragraphs(src string) [][]string {
	z := html.NewTokenizer(strings.NewReader(src))

	var (
		paras     [][]string
		para      []string
		line      strings.Builder
		spans     []string // class of each open span
		invisible int
	)
	endLine := func() {
		if l := strings.TrimSpace(collapse(line.String())); l != "" {
			para = append(para, l)
		}
		line.Reset()
	}
	endPara := func() {
		endLine()
		if len(para) > 0 {
			paras = append(paras, para)
		}
		para = nil
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if !errors.Is(z.Err(), io.EOF) {
				return paras
			}
			endPara()
			return paras
		case html.TextToken:
			if invisible == 0 {
				line.WriteString(text.Sanitize(string(z.Text())))
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "p":
				endPara()
			case "br":
				endLine()
			case "span":
				if tt == html.SelfClosingTagToken {
					continue
				}
				class := attr(tok, "class")
				spans = append(spans, class)
				if hasClass(class, "invisible") {
					invisible++
				}
			}
		case html.EndTagToken:
			tok := z.Token()
			switch tok.Data {
			case "p":
				endPara()
			case "span":
				if n := len(spans); n > 0 {
					class := spans[n-1]
					spans = spans[:n-1]
					if hasClass(class, "invisible") {
						invisible--
					}
					if hasClass(class, "ellipsis") && invisible == 0 {
						line.WriteString("…")
					}
				}
			}
		}
	}
}

// Wrap breaks line into rows of at most cols display columns, at spaces
// where possible.
func Wrap(line string, cols int) []string {
	return wrap(line, cols, true)
}

// wrap breaks at spaces only. Words wider than cols are cut when split is
// set and otherwise get a row of their own.
func wrap(line string, cols int, split bool) []string {
	if cols < 1 {
		return []string{line}
	}
	var (
		out []string
		cur strings.Builder
		w   int
	)
	flush := func() {
		out = append(out, cur.String())
		cur.Reset()
		w = 0
	}
	for _, word := range strings.Fields(line) {
		ww := runewidth.StringWidth(word)
		if w > 0 && w+1+ww <= cols {
			cur.WriteByte(' ')
			cur.WriteString(word)
			w += 1 + ww
			continue
		}
		if w > 0 {
			flush()
		}
		for split && ww > cols {
			head := runewidth.Truncate(word, cols, "")
			if head == "" {
				// a single rune wider than cols
				head = string([]rune(word)[:1])
			}
			out = append(out, head)
			word = word[len(head):]
			ww = runewidth.StringWidth(word)
		}
		cur.WriteString(word)
		w = ww
	}
	if w > 0 || len(out) == 0 {
		flush()
	}
	return out
}

var (
	hashtagPattern = regexp.MustCompile(`#[\p{L}\p{N}_]+`)
	mentionPattern = regexp.MustCompile(`@[\p{L}\p{N}_]+(@[\p{L}\p{N}_.-]*[\p{L}\p{N}])?`)
)

// Highlight marks hashtags with the "hashtag" attribute and mentions with
// "account".
func Highlight(s string) Line {
	type match struct {
		start, end int
		attr       string
	}
	var ms []match
	for _, m := range hashtagPattern.FindAllStringIndex(s, -1) {
		ms = append(ms, match{m[0], m[1], "hashtag"})
	}
	for _, m := range mentionPattern.FindAllStringIndex(s, -1) {
		ms = append(ms, match{m[0], m[1], "account"})
	}
	if len(ms) == 0 {
		return Line{{Text: s}}
	}
	// order by start; drop overlaps
	for i := 1; i < len(ms); i++ {
		for j := i; j > 0 && ms[j].start < ms[j-1].start; j-- {
			ms[j], ms[j-1] = ms[j-1], ms[j]
		}
	}

	var line Line
	pos := 0
	for _, m := range ms {
		if m.start < pos {
			continue
		}
		if m.start > pos {
			line = append(line, textlayout.Span{Text: s[pos:m.start]})
		}
		line = append(line, textlayout.Span{Attr: m.attr, Text: s[m.start:m.end]})
		pos = m.end
	}
	if pos < len(s) {
		line = append(line, textlayout.Span{Text: s[pos:]})
	}
	return line
}

// Plaintext renders HTML as lines wrapped to cols, with an empty line
// between paragraphs.
func Plaintext(src string, cols int, highlight bool) []Line {
	var out []Line
	for i, para := range Paragraphs(src) {
		if i > 0 {
			out = append(out, Line{})
		}
		for _, l := range para {
			for _, sub := range Wrap(l, cols) {
				if highlight {
					out = append(out, Highlight(sub))
				} else {
					out = append(out, Line{{Text: sub}})
				}
			}
		}
	}
	return out
}

// Markup renders HTML as unwrapped spans for a textlayout.Text, which
// wraps them itself. Paragraphs are separated by a blank line.
func Markup(src string, highlight bool) []textlayout.Span {
	var spans []textlayout.Span
	for i, para := range Paragraphs(src) {
		if i > 0 {
			spans = append(spans, textlayout.Span{Text: "\n\n"})
		}
		for j, l := range para {
			if j > 0 {
				spans = append(spans, textlayout.Span{Text: "\n"})
			}
			if highlight {
				spans = append(spans, Highlight(l)...)
			} else {
				spans = append(spans, textlayout.Span{Text: l})
			}
		}
	}
	return spans
}

// ToText renders HTML in the named mode. "" and "plaintext" are the same.
func ToText(src string, cols int, mode string, highlight bool) ([]Line, error) {
	switch mode {
	case "", "plaintext":
		return Plaintext(src, cols, highlight), nil
	case "markdown":
		return Markdown(src, cols, highlight)
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownRenderMode, mode)
}

// Markdown renders HTML as GitHub flavored markdown wrapped to cols.
// Code blocks and table rows are left as they are, and links are never
// split. List items and quotes wrap under their marker.
func Markdown(src string, cols int, highlight bool) ([]Line, error) {
	conv := md.NewConverter("", true, &md.Options{CodeBlockStyle: "fenced"})
	conv.Use(plugin.GitHubFlavored())
	out, err := conv.ConvertString(src)
	if err != nil {
		return nil, fmt.Errorf("convert to markdown: %w", err)
	}

	var (
		lines []Line
		fence bool
	)
	add := func(s string) {
		if highlight && !fence {
			lines = append(lines, Highlight(s))
		} else {
			lines = append(lines, Line{{Text: s}})
		}
	}
	for _, l := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(l)
		if strings.HasPrefix(trimmed, "```") {
			fence = !fence
			add(l)
			continue
		}
		if fence || trimmed == "" || strings.HasPrefix(trimmed, "|") || strings.HasPrefix(l, "    ") {
			add(l)
			continue
		}
		prefix := blockPrefix.FindString(l)
		indent := continuation(prefix)
		width := max(cols-runewidth.StringWidth(prefix), 1)
		for i, sub := range wrap(l[len(prefix):], width, false) {
			if i == 0 {
				add(prefix + sub)
			} else {
				add(indent + sub)
			}
		}
	}
	return lines, nil
}

// blockPrefix matches the list markers and quote marks that open a
// markdown line.
var blockPrefix = regexp.MustCompile(`^\s*(?:(?:[-*+]|\d+[.)]|>)\s+)*`)

// continuation returns the prefix for wrapped lines of a block opened by
// prefix: quote marks repeat, list markers become spaces.
func continuation(prefix string) string {
	var b strings.Builder
	for _, f := range strings.Fields(prefix) {
		if f == ">" {
			b.WriteString("> ")
		} else {
			b.WriteString(strings.Repeat(" ", runewidth.StringWidth(f)+1))
		}
	}
	lead := prefix[:len(prefix)-len(strings.TrimLeft(prefix, " \t"))]
	return lead + b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(class, want string) bool {
	for _, c := range strings.Fields(class) {
		if c == want {
			return true
		}
	}
	return false
}
