package platform

import (
	"testing"

	lua "github.com/yuin/gopher-lua"
)

type luaCase struct {
	name string
	code string
	want lua.LValue
}

func runLuaCases(t *testing.T, L *lua.LState, tests []luaCase) {
	t.Helper()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := L.DoString(tt.code); err != nil {
				t.Fatalf("failed to execute code: %v", err)
			}
			got := L.Get(-1)
			L.Pop(1)

			if got.Type() != tt.want.Type() {
				t.Errorf("type mismatch: got %v, want %v", got.Type(), tt.want.Type())
				return
			}
			if got.String() != tt.want.String() {
				t.Errorf("value mismatch: got %v, want %v", got, tt.want)
			}
		})
	}
}

func newPlatformState(t *testing.T, info *Info) *lua.LState {
	t.Helper()

	L := lua.NewState()
	t.Cleanup(L.Close)

	if err := InjectPlatformTable(L, info); err != nil {
		t.Fatalf("InjectPlatformTable() error = %v", err)
	}
	return L
}

func TestInjectPlatformTable_Linux(t *testing.T) {
	L := newPlatformState(t, &Info{
		OS:           "linux",
		Arch:         "amd64",
		NodePlatform: "linux",
		NodeArch:     "x64",
		Distro:       "alpine",
		Family:       FamilyAlpine,
		Version:      "3.19.1",
	})

	runLuaCases(t, L, []luaCase{
		{"os", `return platform.os`, lua.LString("linux")},
		{"arch", `return platform.arch`, lua.LString("amd64")},
		{"node_platform", `return platform.node_platform`, lua.LString("linux")},
		{"node_arch", `return platform.node_arch`, lua.LString("x64")},
		{"is_linux", `return platform.is_linux`, lua.LTrue},
		{"is_macos", `return platform.is_macos`, lua.LFalse},
		{"is_windows", `return platform.is_windows`, lua.LFalse},
		{"is_musl", `return platform.is_musl`, lua.LTrue},
		{"distro.id", `return platform.distro.id`, lua.LString("alpine")},
		{"distro.family", `return platform.distro.family`, lua.LString("alpine")},
		{"distro.version", `return platform.distro.version`, lua.LString("3.19.1")},
	})
}

func TestInjectPlatformTable_MacOS(t *testing.T) {
	L := newPlatformState(t, &Info{
		OS:           "darwin",
		Arch:         "arm64",
		NodePlatform: "darwin",
		NodeArch:     "arm64",
	})

	runLuaCases(t, L, []luaCase{
		{"is_macos", `return platform.is_macos`, lua.LTrue},
		{"is_apple_silicon", `return platform.is_apple_silicon`, lua.LTrue},
		{"is_musl", `return platform.is_musl`, lua.LFalse},
		{"distro is nil", `return platform.distro`, lua.LNil},
	})
}

func TestInjectPlatformTable_Windows(t *testing.T) {
	L := newPlatformState(t, &Info{
		OS:           "windows",
		Arch:         "386",
		NodePlatform: "win",
		NodeArch:     "x86",
	})

	runLuaCases(t, L, []luaCase{
		{"is_windows", `return platform.is_windows`, lua.LTrue},
		{"node_platform", `return platform.node_platform`, lua.LString("win")},
		{"node_arch", `return platform.node_arch`, lua.LString("x86")},
		{"distro is nil", `return platform.distro`, lua.LNil},
	})
}

func TestPlatformTable_ReadOnly(t *testing.T) {
	L := newPlatformState(t, &Info{OS: "linux", Arch: "amd64"})

	tests := []struct {
		name string
		code string
	}{
		{"modify os", `platform.os = "windows"`},
		{"add new field", `platform.new_field = "value"`},
		{"modify boolean", `platform.is_linux = false`},
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
	L := newPlatformState(t, &Info{OS: "linux", Arch: "amd64"})

	runLuaCases(t, L, []luaCase{
		{"when true returns value", `return platform.when(true, "x")`, lua.LString("x")},
		{"when false returns nil", `return platform.when(false, "x")`, lua.LNil},
		{"when with platform boolean", `return platform.when(platform.is_linux, "https://mirror.example/dist")`,
			lua.LString("https://mirror.example/dist")},
	})
}
