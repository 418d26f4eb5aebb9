package config

import (
	lua "github.com/yuin/gopher-lua"
)

// sandboxedGlobals are removed from every config VM. They could:
// - Execute system commands or read the environment (os)
// - Access the filesystem (io)
// - Load external code (require, dofile, loadfile, load, loadstring)
// - Bypass the read-only platform table (rawset, setmetatable, debug)
var sandboxedGlobals = []string{
	"os",
	"io",
	"require",
	"module",
	"package",
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"debug",
	"rawset",
	"rawget",
	"rawequal",
	"getmetatable",
	"setmetatable",
	"getfenv",
	"setfenv",
	"collectgarbage",
	"newproxy",
}

// sandboxLuaVM removes dangerous globals from L. The string, table and
// math libraries and the basic functions (type, pairs, tostring, ...) stay.
func sandboxLuaVM(L *lua.LState) {
	for _, name := range sandboxedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
}

// newSandboxedVM creates a new Lua VM with sandboxing applied.
func newSandboxedVM() *lua.LState {
	L := lua.NewState(lua.Options{
		CallStackSize: 256,
		RegistrySize:  1024 * 8,
	})
	sandboxLuaVM(L)
	return L
}
