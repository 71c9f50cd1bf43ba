package config

import (
	lua "github.com/yuin/gopher-lua"
)

// Lua VM limits for config evaluation
const (
	luaCallStackSize = 256
	luaRegistrySize  = 8 * 1024
)

// sandboxLuaVM removes every global that reaches outside the VM.
// config.lua may compute values with string, table and math, but it cannot
// run commands, touch files, load code or escape through metatables.
func sandboxLuaVM(L *lua.LState) {
	for _, name := range []string{
		"os", "io", "debug",
		"require", "dofile", "loadfile", "load", "loadstring", "module",
		"getmetatable", "setmetatable", "rawget", "rawset", "rawequal",
		"collectgarbage", "newproxy", "getfenv", "setfenv",
	} {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetGlobal("package", lua.LNil)
}

// newSandboxedVM creates a bounded Lua VM with sandboxing applied.
func newSandboxedVM() *lua.LState {
	L := lua.NewState(lua.Options{
		CallStackSize: luaCallStackSize,
		RegistrySize:  luaRegistrySize,
	})
	sandboxLuaVM(L)
	return L
}
