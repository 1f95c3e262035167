package widget

import (
	"fmt"
	"strings"

	"github.com/drake/tusk/ui/style"
	"github.com/drake/tusk/ui/tui/util"
)

// Status displays the account, loading state, messages and scroll mode.
type Status struct {
	account    string
	loading    bool
	message    string
	isError    bool
	scrollMode ScrollMode
	newLines   int
	width      int
	styles     style.Styles
}

// NewStatus creates a new status widget.
func NewStatus(styles style.Styles) *Status {
	return &Status{styles: styles}
}

// View implements layout.Renderer.
func (s *Status) View() string {
	// Left: account
	var left string
	if s.account != "" {
		left = s.styles.StatusAccount.Render("● " + s.account)
	} else {
		left = s.styles.StatusOffline.Render("● Offline")
	}
	if s.loading {
		left += " " + s.styles.StatusLoading.Render("Loading…")
	}
	if s.message != "" {
		st := s.styles.Muted
		if s.isError {
			st = s.styles.Error
		}
		left += "  " + st.Render(s.message)
	}

	// Right: Scroll mode
	var right string
	switch s.scrollMode {
	case ModeLive:
		right = s.styles.StatusLive.Render("LIVE")
	case ModeScrolled:
		if s.newLines > 0 {
			right = s.styles.StatusScrolled.Render(fmt.Sprintf("SCROLLED (%d new)", s.newLines))
		} else {
			right = s.styles.StatusScrolled.Render("SCROLLED")
		}
	}

	room := s.width - util.VisibleLen(right) - 3
	if room > 0 {
		left = util.Truncate(left, room)
	}

	padding := s.width - util.VisibleLen(left) - util.VisibleLen(right) - 2
	if padding < 1 {
		padding = 1
	}

	return left + strings.Repeat(" ", padding) + right
}

// SetWidth implements layout.Renderer.
func (s *Status) SetWidth(w int) {
	s.width = w
}

// Height implements layout.Renderer.
func (s *Status) Height() int {
	return 1
}

// SetAccount sets the logged-in account, empty when offline.
func (s *Status) SetAccount(account string) {
	s.account = account
}

// SetLoading toggles the loading indicator.
func (s *Status) SetLoading(v bool) {
	s.loading = v
}

// SetMessage shows a message until the next one.
func (s *Status) SetMessage(text string, isError bool) {
	s.message = text
	s.isError = isError
}

// Message returns the current message.
func (s *Status) Message() string {
	return s.message
}

// SetScrollMode updates the scroll mode indicator.
func (s *Status) SetScrollMode(mode ScrollMode, newLines int) {
	s.scrollMode = mode
	s.newLines = newLines
}
