package lua

// Host provides the bridge between Engine and the rest of the system.
// This abstraction decouples Engine from the TUI, making it testable
// without a terminal.
type Host interface {
	// Notify shows a short message in the status bar.
	Notify(text string)

	// Action runs a named client action such as "refresh" or "compose".
	// Unknown names are an error.
	Action(name string) error

	// SetPalette overrides the style of a palette attribute. spec uses
	// the "fg=212,bg=62,bold" form.
	SetPalette(attr, spec string) error

	// OnConfigChange notifies the host that binds, options or filters
	// have changed. Called synchronously from Lua.
	OnConfigChange()
}
