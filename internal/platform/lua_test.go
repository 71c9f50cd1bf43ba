package platform

import (
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func evalLua(t *testing.T, L *lua.LState, code string) lua.LValue {
	t.Helper()

	if err := L.DoString(code); err != nil {
		t.Fatalf("failed to execute %q: %v", code, err)
	}
	got := L.Get(-1)
	L.Pop(1)
	return got
}

func TestInjectPlatformTable(t *testing.T) {
	tests := []struct {
		name   string
		info   *Info
		checks map[string]lua.LValue
	}{
		{
			name: "alpine_linux",
			info: &Info{
				OS: "linux", Arch: "amd64", ArchRaw: "amd64", ABI: ABIMusl,
				Platform: "alpine", Family: FamilyAlpine, Version: "3.20",
			},
			checks: map[string]lua.LValue{
				`return platform.os`:            lua.LString("linux"),
				`return platform.arch`:          lua.LString("amd64"),
				`return platform.abi`:           lua.LString("musl"),
				`return platform.triple`:        lua.LString("amd64-linux-musl"),
				`return platform.is_linux`:      lua.LTrue,
				`return platform.is_alpine`:     lua.LTrue,
				`return platform.is_musl`:       lua.LTrue,
				`return platform.distro.id`:     lua.LString("alpine"),
				`return platform.distro.family`: lua.LString("alpine"),
			},
		},
		{
			name: "apple_silicon",
			info: &Info{OS: "darwin", Arch: "arm64", ArchRaw: "arm64"},
			checks: map[string]lua.LValue{
				`return platform.is_macos`:  lua.LTrue,
				`return platform.is_arm64`:  lua.LTrue,
				`return platform.is_amd64`:  lua.LFalse,
				`return platform.distro`:    lua.LNil,
				`return platform.is_musl`:   lua.LFalse,
				`return platform.triple`:    lua.LString("arm64-darwin"),
				`return platform.arch_raw`:  lua.LString("arm64"),
				`return platform.is_linux`:  lua.LFalse,
				`return platform.is_alpine`: lua.LFalse,
			},
		},
		{
			name: "windows",
			info: &Info{OS: "windows", Arch: "amd64", ABI: ABIMSVC},
			checks: map[string]lua.LValue{
				`return platform.is_windows`: lua.LTrue,
				`return platform.abi`:        lua.LString("msvc"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			L := lua.NewState()
			defer L.Close()

			if err := InjectPlatformTable(L, tt.info); err != nil {
				t.Fatalf("InjectPlatformTable() error = %v", err)
			}

			for code, want := range tt.checks {
				got := evalLua(t, L, code)
				if got.Type() != want.Type() || got.String() != want.String() {
					t.Errorf("%s = %v (%v), want %v (%v)", code, got, got.Type(), want, want.Type())
				}
			}
		})
	}
}

func TestPlatformTable_ReadOnly(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if err := InjectPlatformTable(L, &Info{OS: "linux", Arch: "amd64"}); err != nil {
		t.Fatalf("InjectPlatformTable() error = %v", err)
	}

	tests := []struct {
		name string
		code string
	}{
		{"modify os", `platform.os = "windows"`},
		{"add new field", `platform.new_field = "value"`},
		{"replace metatable", `setmetatable(platform, {})`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := L.DoString(tt.code); err == nil {
				t.Error("expected error when modifying read-only table, got nil")
			}
		})
	}
}

func TestPlatformTable_WhenHelper(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if err := InjectPlatformTable(L, &Info{OS: "linux", Arch: "amd64"}); err != nil {
		t.Fatalf("InjectPlatformTable() error = %v", err)
	}

	if got := evalLua(t, L, `return platform.when(platform.is_linux, "strip")`); got.String() != "strip" {
		t.Errorf("when(true) = %v, want strip", got)
	}
	if got := evalLua(t, L, `return platform.when(platform.is_windows, "strip")`); got != lua.LNil {
		t.Errorf("when(false) = %v, want nil", got)
	}
}
