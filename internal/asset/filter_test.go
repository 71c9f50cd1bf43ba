package asset

import (
	"errors"
	"testing"
)

func TestFilter_EntryMatcher(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		path   string
		want   bool
	}{
		{"star crosses directories", Filter{Glob: "*rg"}, "ripgrep-13.0.0/rg", true},
		{"star crosses several directories", Filter{Glob: "dist/*"}, "dist/bin/tool", true},
		{"anchored at end", Filter{Glob: "*rg"}, "ripgrep-13.0.0/rg.1", false},
		{"question mark crosses separator", Filter{Glob: "a?b"}, "a/b", true},
		{"negated class", Filter{Glob: "*/[!x]g"}, "dir/rg", true},
		{"negated class rejects", Filter{Glob: "*/[!r]g"}, "dir/rg", false},
		{"escaped star is literal", Filter{Glob: `a\*b`}, "a*b", true},
		{"escaped star rejects", Filter{Glob: `a\*b`}, "axxb", false},
		{"dot is literal", Filter{Glob: "rg.exe"}, "rgxexe", false},
		{"regex unchanged", Filter{Regex: `/rg$`}, "x/rg", true},
		{"contains unchanged", Filter{Contains: "bin/"}, "dist/bin/rg", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, err := tt.filter.EntryMatcher()
			if err != nil {
				t.Fatalf("EntryMatcher() error = %v", err)
			}
			if got := match(tt.path); got != tt.want {
				t.Errorf("match(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestFilter_AssetGlobStaysFlat(t *testing.T) {
	match, err := Filter{Glob: "*linux*"}.Matcher()
	if err != nil {
		t.Fatalf("Matcher() error = %v", err)
	}
	if match("dir/tool-linux") {
		t.Error("asset glob * matched across '/'")
	}
	if err := (Filter{Glob: "a/*"}).Validate(true); !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("Validate(true) error = %v, want ErrInvalidFilter", err)
	}
	if err := (Filter{Glob: "[abc"}).Validate(false); !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("Validate(false) error = %v, want ErrInvalidFilter", err)
	}
}
