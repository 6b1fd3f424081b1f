// Package rewrite runs user Lua scripts that redirect locations before they
// are loaded.
//
// A script defines a global function:
//
//	function rewrite(location)
//	  if location:find("^https://www%.reddit%.com") then
//	    return (location:gsub("www%.reddit", "old.reddit"))
//	  end
//	end
//
// Returning nil (or nothing) keeps the location unchanged.
package rewrite

import (
	"errors"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

const entryPoint = "rewrite"

// ErrNoRewriteFunc is returned when a script does not define rewrite().
var ErrNoRewriteFunc = errors.New("rewrite: script does not define rewrite(location)")

// Rules wraps a loaded script. A nil *Rules leaves every location as is.
// Calls are serialized since an LState is not safe for concurrent use.
type Rules struct {
	mu    sync.Mutex
	state *lua.LState
	fn    *lua.LFunction
}

// Load executes the script at path in a sandboxed VM.
func Load(path string) (*Rules, error) {
	return load(func(L *lua.LState) error { return L.DoFile(path) }, path)
}

// LoadString executes src in a sandboxed VM.
func LoadString(src string) (*Rules, error) {
	return load(func(L *lua.LState) error { return L.DoString(src) }, "<string>")
}

func load(exec func(*lua.LState) error, name string) (*Rules, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(L)
	sandbox(L)

	if err := exec(L); err != nil {
		L.Close()
		return nil, fmt.Errorf("executing %s: %w", name, err)
	}

	fn, ok := L.GetGlobal(entryPoint).(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, ErrNoRewriteFunc
	}
	return &Rules{state: L, fn: fn}, nil
}

// Apply returns the rewritten location, or loc itself when the script
// declines.
func (r *Rules) Apply(loc string) (string, error) {
	if r == nil {
		return loc, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.state.CallByParam(lua.P{Fn: r.fn, NRet: 1, Protect: true}, lua.LString(loc)); err != nil {
		return loc, fmt.Errorf("rewrite(%q): %w", loc, err)
	}
	ret := r.state.Get(-1)
	r.state.Pop(1)

	switch v := ret.(type) {
	case *lua.LNilType:
		return loc, nil
	case lua.LString:
		if v == "" {
			return loc, nil
		}
		return string(v), nil
	default:
		return loc, fmt.Errorf("rewrite(%q): returned %s, want string or nil", loc, ret.Type())
	}
}

// Close releases the VM.
func (r *Rules) Close() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.state.Close()
	r.mu.Unlock()
}

// openSafeLibs opens base, table, string and math only.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach outside the VM.
func sandbox(L *lua.LState) {
	for _, name := range []string{
		"dofile", "loadfile", "load", "loadstring",
		"require", "module", "collectgarbage",
	} {
		L.SetGlobal(name, lua.LNil)
	}
}
