package platform

import (
	"testing"
)

func TestNormalizeArch(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"amd64", "amd64", "amd64"},
		{"x86_64", "x86_64", "amd64"},
		{"x86-64", "X86-64", "amd64"},
		{"arm64", "arm64", "arm64"},
		{"aarch64", "aarch64", "arm64"},
		{"i686", "i686", "386"},
		{"armv7", "armv7", "arm"},
		{"passthrough", "riscv64", "riscv64"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeArch(tt.input); got != tt.want {
				t.Errorf("normalizeArch() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeOS(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"macos", "darwin"},
		{"OSX", "darwin"},
		{"linux", "linux"},
		{" Windows ", "windows"},
		{"win", "windows"},
	}

	for _, tt := range tests {
		if got := normalizeOS(tt.input); got != tt.want {
			t.Errorf("normalizeOS(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestMapFamily(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"debian", "debian", FamilyDebian},
		{"ubuntu", "ubuntu", FamilyDebian},
		{"alpine", "alpine", FamilyAlpine},
		{"uppercase", "RHEL", FamilyRHEL},
		{"spaces", "  arch  ", FamilyArch},
		{"unknown", "plan9", FamilyUnknown},
		{"empty", "", FamilyUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapFamily(tt.input); got != tt.want {
				t.Errorf("mapFamily() = %v, want %v", got, tt.want)
			}
		})
	}
}
