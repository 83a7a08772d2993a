package platform

import (
	lua "github.com/yuin/gopher-lua"
)

// InjectPlatformTable installs a read-only "platform" global into a Lua
// state. Config files use it for conditional values, e.g.
//
//	rename = function(name)
//	  return platform.is_windows and name or (name .. "-" .. platform.arch)
//	end
func InjectPlatformTable(L *lua.LState, info *Info) error {
	tbl := L.NewTable()

	L.SetField(tbl, "os", lua.LString(info.OS))
	L.SetField(tbl, "arch", lua.LString(info.Arch))
	L.SetField(tbl, "arch_raw", lua.LString(info.ArchRaw))

	L.SetField(tbl, "is_linux", lua.LBool(info.IsLinux()))
	L.SetField(tbl, "is_macos", lua.LBool(info.IsMacOS()))
	L.SetField(tbl, "is_windows", lua.LBool(info.IsWindows()))

	L.SetField(tbl, "binary_name", lua.LString(BinaryName(info.OS)))

	if info.IsLinux() && info.Distro != "" {
		distro := L.NewTable()
		L.SetField(distro, "id", lua.LString(info.Distro))
		L.SetField(distro, "family", lua.LString(info.Family))
		L.SetField(distro, "release", lua.LString(info.Release))
		L.SetField(tbl, "distro", distro)
	} else {
		L.SetField(tbl, "distro", lua.LNil)
	}

	L.SetGlobal("platform", makeReadOnly(L, tbl))
	return nil
}

// makeReadOnly wraps a table in a proxy whose metatable rejects writes.
func makeReadOnly(L *lua.LState, table *lua.LTable) *lua.LTable {
	mt := L.NewTable()
	L.SetField(mt, "__index", table)
	L.SetField(mt, "__newindex", L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("platform table is read-only")
		return 0
	}))
	L.SetField(mt, "__metatable", lua.LString("protected"))

	proxy := L.NewTable()
	L.SetMetatable(proxy, mt)
	return proxy
}
