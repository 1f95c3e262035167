package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/drake/tusk/api"
	"github.com/drake/tusk/lua"
	"github.com/drake/tusk/ui/style"
	"github.com/drake/tusk/ui/tui/canvas"
	"github.com/drake/tusk/ui/tui/layout"
	"github.com/drake/tusk/ui/tui/widget"
)

// Prefetch queues image URLs for background loading.
type Prefetch interface {
	Request(url string)
}

// modelConfig holds what the model needs from the outside world.
type modelConfig struct {
	ctx      context.Context
	source   Source
	account  string
	lua      *lua.Engine
	host     *luaHost
	images   widget.ImageSource // nil when images cannot be drawn
	prefetch Prefetch
	palette  canvas.Palette
	logger   *slog.Logger
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	// Layout
	frame *layout.Frame

	// Widgets
	viewport  *widget.Viewport
	status    *widget.Status
	separator *widget.Separator
	compose   *widget.Compose
	styles    style.Styles
	palette   canvas.Palette

	// Collaborators
	ctx      context.Context
	source   Source
	lua      *lua.Engine
	host     *luaHost
	images   widget.ImageSource
	prefetch Prefetch
	logger   *slog.Logger

	// Timeline state, oldest first
	statuses  []*api.Status
	seen      map[string]bool
	emojiURLs map[string]bool
	revealed  bool

	// State
	account     string
	composing   bool
	loading     bool
	more        bool
	width       int
	height      int
	quitting    bool
	initialized bool
}

func newModel(cfg modelConfig) Model {
	styles := style.DefaultStyles()
	if cfg.palette == nil {
		cfg.palette = style.DefaultPalette()
	}
	if cfg.host == nil {
		cfg.host = newLuaHost(cfg.palette)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.ctx == nil {
		cfg.ctx = context.Background()
	}

	status := widget.NewStatus(styles)
	status.SetAccount(cfg.account)

	m := Model{
		frame:     layout.NewFrame(1),
		viewport:  widget.NewViewport(cfg.palette),
		status:    status,
		separator: widget.NewSeparator(styles),
		compose:   widget.NewCompose(styles, cfg.palette),
		styles:    styles,
		palette:   cfg.palette,
		ctx:       cfg.ctx,
		source:    cfg.source,
		lua:       cfg.lua,
		host:      cfg.host,
		images:    cfg.images,
		prefetch:  cfg.prefetch,
		logger:    cfg.logger,
		seen:      make(map[string]bool),
		emojiURLs: make(map[string]bool),
		account:   cfg.account,
		more:      true,
	}
	m.applyHost()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.source == nil {
		return nil
	}
	return m.fetch(false)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.frame.Resize(msg.Width, msg.Height)
		m.initialized = true
		m.pushState()
		return m, nil

	case timelineMsg:
		m.loading = false
		m.status.SetLoading(false)
		if msg.err != nil {
			if errors.Is(msg.err, io.EOF) {
				m.more = false
				m.status.SetMessage("end of timeline", false)
				return m, nil
			}
			m.logger.Warn("timeline fetch failed", "older", msg.older, "err", msg.err)
			m.status.SetMessage(msg.err.Error(), true)
			return m, nil
		}
		if msg.older && len(msg.statuses) == 0 {
			m.more = false
		}
		return m, m.insert(msg.statuses, msg.older)

	case postedMsg:
		m.loading = false
		m.status.SetLoading(false)
		if msg.err != nil {
			m.logger.Warn("post failed", "err", msg.err)
			m.status.SetMessage("post failed: "+msg.err.Error(), true)
			m.composing = true
			return m, nil
		}
		m.compose.Reset()
		m.status.SetMessage("posted", false)
		if msg.status == nil {
			return m, nil
		}
		return m, m.insert([]api.Status{*msg.status}, false)

	case imageLoadedMsg:
		if m.emojiURLs[string(msg)] {
			m.rebuild()
		}
		return m, nil

	case notifyMsg:
		m.status.SetMessage(string(msg), false)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	if m.composing {
		return m.handleComposeKey(msg)
	}

	if key := keyToString(msg); key != "" && m.lua != nil && m.lua.HandleKeyBind(key) {
		cmd := m.applyHost()
		return m, cmd
	}

	switch msg.String() {
	case "pgup", "b":
		return m.runAction("page_up")
	case "pgdown", " ", "f":
		return m.runAction("page_down")
	case "up", "k":
		m.viewport.ScrollUp(1)
		return m, m.afterScroll()
	case "down", "j":
		m.viewport.ScrollDown(1)
		return m, m.afterScroll()
	case "home", "g":
		return m.runAction("top")
	case "end", "G":
		return m.runAction("bottom")
	case "r":
		return m.runAction("refresh")
	case "c":
		return m.runAction("compose")
	case "v":
		return m.runAction("reveal")
	case "q":
		return m.runAction("quit")
	}
	return m, nil
}

func (m Model) handleComposeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.composing = false
		return m, nil
	case "ctrl+s":
		return m.runAction("post")
	}
	cmd := m.compose.Update(msg)
	if m.compose.TakeSubmit() {
		m2, postCmd := m.runAction("post")
		return m2, tea.Batch(cmd, postCmd)
	}
	return m, cmd
}

// runAction performs a named action. Keys and tusk.action share it.
func (m Model) runAction(name string) (Model, tea.Cmd) {
	switch name {
	case "refresh":
		return m, m.fetch(false)
	case "older":
		return m, m.fetch(true)
	case "compose":
		m.composing = true
	case "post":
		p := m.compose.Params()
		if p.Status == "" {
			m.status.SetMessage("nothing to post", true)
			return m, nil
		}
		m.composing = false
		return m, m.post(p)
	case "quit":
		m.quitting = true
		return m, tea.Quit
	case "top":
		m.viewport.GotoTop()
		return m, m.afterScroll()
	case "bottom":
		m.viewport.GotoBottom()
		return m, m.afterScroll()
	case "page_up":
		m.viewport.PageUp()
		return m, m.afterScroll()
	case "page_down":
		m.viewport.PageDown()
		return m, m.afterScroll()
	case "reveal":
		m.revealed = !m.revealed
		m.rebuild()
	}
	return m, nil
}

// applyHost applies what Lua queued during the last call.
func (m *Model) applyHost() tea.Cmd {
	events, changed := m.host.drain()
	if changed {
		m.rebuild()
	}
	var cmds []tea.Cmd
	for _, ev := range events {
		if ev.notify != "" {
			m.status.SetMessage(ev.notify, false)
			continue
		}
		next, cmd := m.runAction(ev.action)
		*m = next
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// afterScroll updates the scroll indicator and loads older statuses once
// the top is reached.
func (m *Model) afterScroll() tea.Cmd {
	m.updateScrollState()
	if m.viewport.Mode() == widget.ModeScrolled && m.viewport.AtTop() && m.more && !m.loading {
		return m.fetch(true)
	}
	return nil
}

func (m *Model) fetch(older bool) tea.Cmd {
	if m.source == nil || m.loading {
		return nil
	}
	m.loading = true
	m.status.SetLoading(true)
	ctx, src := m.ctx, m.source
	return func() tea.Msg {
		var (
			page []api.Status
			err  error
		)
		if older {
			page, err = src.Older(ctx)
		} else {
			page, err = src.Newest(ctx)
		}
		return timelineMsg{statuses: page, older: older, err: err}
	}
}

func (m *Model) post(p api.StatusParams) tea.Cmd {
	if m.source == nil {
		return nil
	}
	m.loading = true
	m.status.SetLoading(true)
	ctx, src := m.ctx, m.source
	return func() tea.Msg {
		s, err := src.Post(ctx, p)
		return postedMsg{status: s, err: err}
	}
}

// insert adds a page to the timeline. Pages arrive newest first; the
// viewport holds the oldest first.
func (m *Model) insert(page []api.Status, older bool) tea.Cmd {
	var fresh []*api.Status
	for i := len(page) - 1; i >= 0; i-- {
		s := &page[i]
		if m.seen[s.ID] {
			continue
		}
		m.seen[s.ID] = true
		fresh = append(fresh, s)
	}
	if len(fresh) == 0 {
		return nil
	}

	var widgets []canvas.Widget
	for _, s := range fresh {
		p := m.newPost(s)
		if m.lua != nil {
			m.lua.CallHook("status", s.Original().Account.Acct, p.PlainText())
		}
		if m.hidden(p) {
			continue
		}
		widgets = append(widgets, p)
	}

	if older {
		m.statuses = append(fresh, m.statuses...)
		m.viewport.Prepend(widgets...)
	} else {
		m.statuses = append(m.statuses, fresh...)
		m.viewport.Append(widgets...)
	}
	cmd := m.applyHost()
	m.updateScrollState()
	return cmd
}

func (m *Model) newPost(s *api.Status) *widget.Post {
	opts := m.options()
	po := widget.PostOptions{
		Gray:  opts.GrayEmoji,
		Align: opts.Align,
		Wrap:  opts.Wrap,
	}
	if opts.Images && m.images != nil {
		po.Images = m.images
	}
	p := widget.NewPost(s, po)
	p.SetRevealed(m.revealed)

	for _, url := range p.EmojiURLs() {
		m.emojiURLs[url] = true
		if po.Images == nil || m.prefetch == nil {
			continue
		}
		if _, ok := m.images.Cached(url); !ok {
			m.prefetch.Request(url)
		}
	}
	return p
}

func (m *Model) hidden(p *widget.Post) bool {
	return m.lua != nil && m.lua.Hidden(p.PlainText())
}

// rebuild recreates every post, for example after the options changed
// or an emoji image arrived.
func (m *Model) rebuild() {
	items := make([]canvas.Widget, 0, len(m.statuses))
	for _, s := range m.statuses {
		p := m.newPost(s)
		if !m.hidden(p) {
			items = append(items, p)
		}
	}
	m.viewport.SetItems(items)
}

func (m *Model) options() lua.Options {
	if m.lua == nil {
		return lua.DefaultOptions()
	}
	return m.lua.Options()
}

func (m *Model) updateScrollState() {
	m.status.SetScrollMode(m.viewport.Mode(), m.viewport.NewLineCount())
	m.pushState()
}

func (m *Model) pushState() {
	if m.lua == nil {
		return
	}
	m.lua.UpdateState(lua.ClientState{
		Account:     m.account,
		ScrollMode:  m.viewport.Mode().String(),
		ScrollLines: m.viewport.Offset(),
		Statuses:    len(m.statuses),
		Width:       m.width,
		Height:      m.height,
	})
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if !m.initialized {
		return "Loading..."
	}

	footer := layout.Stack{m.separator, m.status}
	if m.composing {
		footer = slices.Insert(footer, 0, layout.Renderer(m.compose))
	}

	m.viewport.SetSize(m.frame.Width(), m.frame.Body(nil, footer))
	return m.frame.Join(nil, m.viewport.View(), footer)
}

func keyToString(msg tea.KeyMsg) string {
	if msg.Type == tea.KeyRunes && len(msg.Runes) > 0 && !msg.Alt {
		return string(msg.Runes)
	}
	return msg.String()
}
