package lua

import (
	"sort"

	glua "github.com/yuin/gopher-lua"
)

// registerBindFuncs registers the tusk.bind API.
func (e *Engine) registerBindFuncs() {
	// tusk.bind(key, callback) - Register a key binding
	// key is a string like "ctrl+r", "f1", "g", etc.
	// callback receives no arguments
	e.L.SetField(e.tusk, "bind", e.L.NewFunction(func(L *glua.LState) int {
		key := L.CheckString(1)
		fn := L.CheckFunction(2)
		e.binds[key] = fn
		e.host.OnConfigChange()
		return 0
	}))

	// tusk.unbind(key) - Remove a key binding
	e.L.SetField(e.tusk, "unbind", e.L.NewFunction(func(L *glua.LState) int {
		delete(e.binds, L.CheckString(1))
		e.host.OnConfigChange()
		return 0
	}))
}

// HandleKeyBind checks if a key has a Lua binding and executes it.
// Returns true if the key was handled by Lua.
func (e *Engine) HandleKeyBind(key string) bool {
	fn, ok := e.binds[key]
	if !ok {
		return false
	}

	e.L.Push(fn)
	if err := e.L.PCall(0, 0, nil); err != nil {
		e.CallHook("error", "keybind: "+err.Error())
		if len(e.hooks["error"]) == 0 {
			e.host.Notify("keybind " + key + ": " + err.Error())
		}
	}
	return true
}

// BoundKeys returns all bound key names, sorted.
func (e *Engine) BoundKeys() []string {
	keys := make([]string, 0, len(e.binds))
	for key := range e.binds {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
