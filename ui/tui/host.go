package tui

import (
	"fmt"

	"github.com/drake/tusk/lua"
	"github.com/drake/tusk/ui/style"
	"github.com/drake/tusk/ui/tui/canvas"
)

// Compile-time check that luaHost implements lua.Host
var _ lua.Host = (*luaHost)(nil)

// actions are the names tusk.action accepts.
var actions = map[string]bool{
	"refresh":   true,
	"older":     true,
	"compose":   true,
	"post":      true,
	"quit":      true,
	"top":       true,
	"bottom":    true,
	"page_up":   true,
	"page_down": true,
	"reveal":    true,
}

// hostEvent is a request from Lua, applied by the model after the Lua
// call returns. Exactly one field is set.
type hostEvent struct {
	notify string
	action string
}

// luaHost queues what init.lua asks for. Lua only runs inside Update, so
// the model drains the queue on the same goroutine.
type luaHost struct {
	palette canvas.Palette
	events  []hostEvent
	changed bool
}

func newLuaHost(palette canvas.Palette) *luaHost {
	return &luaHost{palette: palette}
}

func (h *luaHost) Notify(text string) {
	h.events = append(h.events, hostEvent{notify: text})
}

func (h *luaHost) Action(name string) error {
	if !actions[name] {
		return fmt.Errorf("unknown action %q", name)
	}
	h.events = append(h.events, hostEvent{action: name})
	return nil
}

func (h *luaHost) SetPalette(attr, spec string) error {
	st, err := style.ParseStyle(spec)
	if err != nil {
		return err
	}
	h.palette[attr] = st
	return nil
}

func (h *luaHost) OnConfigChange() {
	h.changed = true
}

// drain returns the queued events and whether the configuration changed.
func (h *luaHost) drain() ([]hostEvent, bool) {
	events, changed := h.events, h.changed
	h.events, h.changed = nil, false
	return events, changed
}
