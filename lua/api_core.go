package lua

import (
	"fmt"

	glua "github.com/yuin/gopher-lua"

	"github.com/drake/tusk/ui/tui/textlayout"
)

// Options are the display settings init.lua can change with tusk.set.
type Options struct {
	GrayEmoji  bool
	Wrap       textlayout.Wrap
	Align      textlayout.Align
	ImageCache int    // entries in the image LRU
	RenderMode string // status body rendering, see richtext.ToText
	Images     bool   // draw emoji and avatars when the terminal can
}

// DefaultOptions returns the settings used when init.lua sets nothing.
func DefaultOptions() Options {
	return Options{
		Wrap:       textlayout.WrapSpace,
		Align:      textlayout.AlignLeft,
		ImageCache: 256,
		RenderMode: "plaintext",
		Images:     true,
	}
}

// Options returns the current settings.
func (e *Engine) Options() Options { return e.options }

// registerCoreFuncs registers tusk.notify, tusk.action, tusk.palette,
// tusk.set and tusk.on.
func (e *Engine) registerCoreFuncs() {
	// tusk.notify(text): show text in the status bar
	e.L.SetField(e.tusk, "notify", e.L.NewFunction(func(L *glua.LState) int {
		e.host.Notify(L.CheckString(1))
		return 0
	}))

	// tusk.action(name): run a client action
	e.L.SetField(e.tusk, "action", e.L.NewFunction(func(L *glua.LState) int {
		if err := e.host.Action(L.CheckString(1)); err != nil {
			L.RaiseError("%s", err.Error())
		}
		return 0
	}))

	// tusk.palette(attr, spec): restyle a palette attribute
	e.L.SetField(e.tusk, "palette", e.L.NewFunction(func(L *glua.LState) int {
		if err := e.host.SetPalette(L.CheckString(1), L.CheckString(2)); err != nil {
			L.RaiseError("%s", err.Error())
		}
		e.host.OnConfigChange()
		return 0
	}))

	// tusk.set(option, value)
	e.L.SetField(e.tusk, "set", e.L.NewFunction(func(L *glua.LState) int {
		if err := e.setOption(L.CheckString(1), L.CheckAny(2)); err != nil {
			L.RaiseError("%s", err.Error())
		}
		e.host.OnConfigChange()
		return 0
	}))

	// tusk.on(event, fn): register a hook. Events are "loaded", "error"
	// and "status" (called with the author and text of each new status).
	e.L.SetField(e.tusk, "on", e.L.NewFunction(func(L *glua.LState) int {
		event := L.CheckString(1)
		e.hooks[event] = append(e.hooks[event], L.CheckFunction(2))
		return 0
	}))
}

func (e *Engine) setOption(name string, v glua.LValue) error {
	switch name {
	case "gray_emoji":
		e.options.GrayEmoji = glua.LVAsBool(v)
	case "images":
		e.options.Images = glua.LVAsBool(v)
	case "wrap":
		w, err := textlayout.ParseWrap(v.String())
		if err != nil {
			return err
		}
		e.options.Wrap = w
	case "align":
		a, err := textlayout.ParseAlign(v.String())
		if err != nil {
			return err
		}
		e.options.Align = a
	case "image_cache":
		n, ok := v.(glua.LNumber)
		if !ok || n < 1 {
			return fmt.Errorf("image_cache must be a positive number")
		}
		e.options.ImageCache = int(n)
	case "render":
		switch mode := v.String(); mode {
		case "plaintext", "markdown":
			e.options.RenderMode = mode
		default:
			return fmt.Errorf("unknown render mode %q", mode)
		}
	default:
		return fmt.Errorf("unknown option %q", name)
	}
	return nil
}

// CallHook calls every function registered for event with string
// arguments. A failing hook is reported through the "error" hook, or
// to the host when the error hook itself fails.
func (e *Engine) CallHook(event string, args ...string) {
	if e.L == nil {
		return
	}
	for _, fn := range e.hooks[event] {
		luaArgs := make([]glua.LValue, len(args))
		for i, arg := range args {
			luaArgs[i] = glua.LString(arg)
		}
		err := e.L.CallByParam(glua.P{Fn: fn, NRet: 0, Protect: true}, luaArgs...)
		if err == nil {
			continue
		}
		if event == "error" {
			e.host.Notify("lua: " + err.Error())
		} else if len(e.hooks["error"]) > 0 {
			e.CallHook("error", event+": "+err.Error())
		} else {
			e.host.Notify("lua: " + err.Error())
		}
	}
}
