package lua

import glua "github.com/yuin/gopher-lua"

// ClientState is the snapshot of the client mirrored into tusk.state.
type ClientState struct {
	Account     string // username@instance, empty when logged out
	ScrollMode  string // "live" or "scrolled"
	ScrollLines int    // lines above the live position
	Statuses    int
	Width       int
	Height      int
}

// registerStateFuncs installs tusk.state. Scripts only read it; the client
// refreshes it through UpdateState.
func (e *Engine) registerStateFuncs() {
	t := e.L.NewTable()
	e.L.SetField(e.tusk, "state", t)
	e.writeState(t, ClientState{ScrollMode: "live"})
}

// UpdateState copies state into tusk.state. It is a no-op before Init.
func (e *Engine) UpdateState(state ClientState) {
	if e.L == nil || e.tusk == nil {
		return
	}
	if t, ok := e.L.GetField(e.tusk, "state").(*glua.LTable); ok {
		e.writeState(t, state)
	}
}

func (e *Engine) writeState(t *glua.LTable, s ClientState) {
	fields := []struct {
		key string
		val glua.LValue
	}{
		{"account", glua.LString(s.Account)},
		{"scroll_mode", glua.LString(s.ScrollMode)},
		{"scroll_lines", glua.LNumber(s.ScrollLines)},
		{"statuses", glua.LNumber(s.Statuses)},
		{"width", glua.LNumber(s.Width)},
		{"height", glua.LNumber(s.Height)},
	}
	for _, f := range fields {
		e.L.SetField(t, f.key, f.val)
	}
}
