package platform

import (
	"runtime"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty_means_native", in: "", want: runtime.GOOS},
		{name: "whitespace_means_native", in: "  ", want: runtime.GOOS},
		{name: "linux", in: "linux", want: OSLinux},
		{name: "darwin", in: "darwin", want: OSDarwin},
		{name: "macos_alias", in: "macos", want: OSDarwin},
		{name: "osx_alias", in: "osx", want: OSDarwin},
		{name: "win32_alias", in: "win32", want: OSWindows},
		{name: "win64_alias", in: "win64", want: OSWindows},
		{name: "windows", in: "windows", want: OSWindows},
		{name: "case_insensitive", in: "Win32", want: OSWindows},
		{name: "unknown_passes_through", in: "plan9", want: "plan9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBinaryName(t *testing.T) {
	if got := BinaryName(OSWindows); got != "purs.exe" {
		t.Errorf("BinaryName(windows) = %q, want purs.exe", got)
	}
	if got := BinaryName(OSLinux); got != "purs" {
		t.Errorf("BinaryName(linux) = %q, want purs", got)
	}
	if got := BinaryName(OSDarwin); got != "purs" {
		t.Errorf("BinaryName(darwin) = %q, want purs", got)
	}
}

func TestNormalizeArch(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "amd64", want: "amd64"},
		{in: "x86_64", want: "amd64"},
		{in: "arm64", want: "arm64"},
		{in: "aarch64", want: "arm64"},
		{in: "386", wantErr: true},
		{in: "riscv64", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := normalizeArch(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("normalizeArch(%q): expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("normalizeArch(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("normalizeArch(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMapFamily(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "debian", want: FamilyDebian},
		{in: "ubuntu", want: FamilyDebian},
		{in: "Rocky", want: FamilyRHEL},
		{in: "alpine", want: FamilyAlpine},
		{in: "gentoo", want: FamilyUnknown},
		{in: "", want: FamilyUnknown},
	}

	for _, tt := range tests {
		if got := mapFamily(tt.in); got != tt.want {
			t.Errorf("mapFamily(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
