package lua

import (
	"regexp"

	glua "github.com/yuin/gopher-lua"
)

const regexTypeName = "tusk.Regex"

// registerRegexType installs the metatable for Regex userdata. Methods are
// re:match(text), returning the captures or nil, and re:pattern().
func registerRegexType(L *glua.LState) {
	mt := L.NewTypeMetatable(regexTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]glua.LGFunction{
		"match":   regexMatch,
		"pattern": regexPattern,
	}))
}

func checkRegex(L *glua.LState) *regexp.Regexp {
	if re, ok := L.CheckUserData(1).Value.(*regexp.Regexp); ok {
		return re
	}
	L.ArgError(1, "regex expected")
	return nil
}

func regexMatch(L *glua.LState) int {
	groups := checkRegex(L).FindStringSubmatch(L.CheckString(2))
	if groups == nil {
		L.Push(glua.LNil)
		return 1
	}
	captures := L.CreateTable(len(groups), 0)
	for _, g := range groups {
		captures.Append(glua.LString(g))
	}
	L.Push(captures)
	return 1
}

func regexPattern(L *glua.LState) int {
	L.Push(glua.LString(checkRegex(L).String()))
	return 1
}

// compile returns the cached regexp for pattern.
func (e *Engine) compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := e.regexps.Get(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	e.regexps.Add(pattern, re)
	return re, nil
}

// registerRegexFuncs registers tusk.regex and tusk.hide.
func (e *Engine) registerRegexFuncs() {
	registerRegexType(e.L)

	// tusk.regex(pattern): compile and return a Regex userdata
	e.L.SetField(e.tusk, "regex", e.L.NewFunction(func(L *glua.LState) int {
		re, err := e.compile(L.CheckString(1))
		if err != nil {
			L.Push(glua.LNil)
			L.Push(glua.LString(err.Error()))
			return 2
		}
		ud := L.NewUserData()
		ud.Value = re
		L.SetMetatable(ud, L.GetTypeMetatable(regexTypeName))
		L.Push(ud)
		return 1
	}))

	// tusk.hide(pattern): hide statuses whose text matches pattern
	e.L.SetField(e.tusk, "hide", e.L.NewFunction(func(L *glua.LState) int {
		pattern := L.CheckString(1)
		if _, err := e.compile(pattern); err != nil {
			L.RaiseError("hide: %s", err.Error())
			return 0
		}
		e.hidden = append(e.hidden, pattern)
		e.host.OnConfigChange()
		return 0
	}))
}

// Hidden reports whether text matches any tusk.hide pattern.
func (e *Engine) Hidden(text string) bool {
	for _, p := range e.hidden {
		re, err := e.compile(p)
		if err == nil && re.MatchString(text) {
			return true
		}
	}
	return false
}

// RegexCacheLen returns the number of compiled patterns cached.
func (e *Engine) RegexCacheLen() int { return e.regexps.Len() }
