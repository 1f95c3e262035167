// Package lua runs the user's init.lua, which configures tusk through the
// global tusk table: key bindings, palette overrides, display options and
// timeline filters.
package lua

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	glua "github.com/yuin/gopher-lua"
)

const regexCacheSize = 100

// Engine owns one Lua VM and the configuration scripts have registered
// in it. Callers decide which files to load.
type Engine struct {
	L       *glua.LState
	regexps *lru.Cache[string, *regexp.Regexp]

	tusk *glua.LTable
	host Host

	binds   map[string]*glua.LFunction
	hooks   map[string][]*glua.LFunction
	options Options
	hidden  []string
}

// NewEngine returns an Engine reporting to host. Call Init before running
// any scripts.
func NewEngine(host Host) *Engine {
	e := &Engine{host: host}
	e.reset()
	return e
}

// reset drops everything scripts have registered.
func (e *Engine) reset() {
	e.regexps, _ = lru.New[string, *regexp.Regexp](regexCacheSize)
	e.binds = map[string]*glua.LFunction{}
	e.hooks = map[string][]*glua.LFunction{}
	e.options = DefaultOptions()
	e.hidden = nil
}

// --- Lifecycle ---

// Init starts a fresh VM with the tusk table installed. Previous state,
// including bindings and filters, is discarded. No script is loaded.
func (e *Engine) Init() error {
	e.Close()
	e.L = glua.NewState()
	e.reset()
	e.registerAPIs()
	return nil
}

// Close shuts the VM down. The engine may be reused with Init.
func (e *Engine) Close() {
	if e.L == nil {
		return
	}
	e.L.Close()
	e.L = nil
	e.binds, e.hooks = nil, nil
}

// --- Running code ---

// DoString runs code as a chunk called name, which appears in tracebacks.
func (e *Engine) DoString(name, code string) error {
	chunk, err := e.L.Load(strings.NewReader(code), name)
	if err != nil {
		return err
	}
	e.L.Push(chunk)
	return e.L.PCall(0, 0, nil)
}

// DoFile runs the script at path. While it runs, the script's directory is
// searched first by require.
func (e *Engine) DoFile(path string) error {
	abs, err := filepath.Abs(expandTilde(path))
	if err != nil {
		return err
	}

	pkg := e.L.GetGlobal("package").(*glua.LTable)
	saved := e.L.GetField(pkg, "path").String()
	e.L.SetField(pkg, "path", glua.LString(filepath.Join(filepath.Dir(abs), "?.lua")+";"+saved))
	defer e.L.SetField(pkg, "path", glua.LString(saved))

	if err := e.L.DoFile(abs); err != nil {
		return err
	}
	e.CallHook("loaded", abs)
	return nil
}

// LoadInit runs path if it exists. A missing file is not an error.
func (e *Engine) LoadInit(path string) error {
	if _, err := os.Stat(expandTilde(path)); os.IsNotExist(err) {
		return nil
	}
	return e.DoFile(path)
}

// --- tusk table ---

func (e *Engine) registerAPIs() {
	e.tusk = e.L.NewTable()
	e.L.SetGlobal("tusk", e.tusk)

	e.registerCoreFuncs()
	e.registerBindFuncs()
	e.registerRegexFuncs()
	e.registerStateFuncs()
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}
