package platform

import (
	"context"
	"runtime"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestInjectPlatformTable(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	info := &Info{
		OS:      OSLinux,
		Arch:    "amd64",
		ArchRaw: "amd64",
		Distro:  "ubuntu",
		Family:  FamilyDebian,
		Release: "22.04",
	}

	if err := InjectPlatformTable(L, info); err != nil {
		t.Fatalf("InjectPlatformTable: %v", err)
	}

	script := `
		result_os = platform.os
		result_arch = platform.arch
		result_is_linux = platform.is_linux
		result_binary = platform.binary_name
		result_distro_family = platform.distro.family
	`
	if err := L.DoString(script); err != nil {
		t.Fatalf("script failed: %v", err)
	}

	if got := L.GetGlobal("result_os").String(); got != OSLinux {
		t.Errorf("platform.os = %q, want linux", got)
	}
	if got := L.GetGlobal("result_arch").String(); got != "amd64" {
		t.Errorf("platform.arch = %q, want amd64", got)
	}
	if got := L.GetGlobal("result_is_linux"); got != lua.LTrue {
		t.Errorf("platform.is_linux = %v, want true", got)
	}
	if got := L.GetGlobal("result_binary").String(); got != "purs" {
		t.Errorf("platform.binary_name = %q, want purs", got)
	}
	if got := L.GetGlobal("result_distro_family").String(); got != FamilyDebian {
		t.Errorf("platform.distro.family = %q, want debian", got)
	}
}

func TestInjectPlatformTableReadOnly(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if err := InjectPlatformTable(L, &Info{OS: OSDarwin, Arch: "arm64"}); err != nil {
		t.Fatalf("InjectPlatformTable: %v", err)
	}

	if err := L.DoString(`platform.os = "hacked"`); err == nil {
		t.Error("expected write to platform table to fail")
	}
}

func TestInjectPlatformTableWindowsBinaryName(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if err := InjectPlatformTable(L, &Info{OS: OSWindows, Arch: "amd64"}); err != nil {
		t.Fatalf("InjectPlatformTable: %v", err)
	}
	if err := L.DoString(`name = platform.binary_name; d = platform.distro`); err != nil {
		t.Fatalf("script failed: %v", err)
	}
	if got := L.GetGlobal("name").String(); got != "purs.exe" {
		t.Errorf("platform.binary_name = %q, want purs.exe", got)
	}
	if got := L.GetGlobal("d"); got != lua.LNil {
		t.Errorf("platform.distro = %v, want nil on non-Linux", got)
	}
}

func TestDetect(t *testing.T) {
	detector := NewDetector()
	info, err := detector.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if info.OS != runtime.GOOS {
		t.Errorf("OS = %q, want %q", info.OS, runtime.GOOS)
	}
	if info.Arch != "amd64" && info.Arch != "arm64" {
		t.Errorf("Arch = %q, want amd64 or arm64", info.Arch)
	}
	if info.ArchRaw != runtime.GOARCH {
		t.Errorf("ArchRaw = %q, want %q", info.ArchRaw, runtime.GOARCH)
	}
}
