package asset

import (
	"errors"
	"strings"
	"testing"

	"github.com/ZebulonRouseFrantzich/gitrel/internal/github"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/platform"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/target"
)

func linuxSelector() *Selector {
	return NewSelector(target.New(&platform.Info{OS: "linux", Arch: "amd64", ABI: platform.ABIGnu}))
}

func assets(names ...string) []github.Asset {
	out := make([]github.Asset, len(names))
	for i, n := range names {
		out[i] = github.Asset{ID: int64(i + 1), Name: n, Size: int64(100 * (i + 1))}
	}
	return out
}

func TestSelector_Select(t *testing.T) {
	typical := assets(
		"tool-v1.0.0-darwin-amd64.tar.gz",
		"tool-v1.0.0-linux-amd64.tar.gz",
		"tool-v1.0.0-linux-arm64.tar.gz",
		"tool-v1.0.0-windows-amd64.zip",
		"checksums.txt",
		"tool-v1.0.0-src.tar.gz",
	)

	tests := []struct {
		name      string
		assets    []github.Asset
		filter    Filter
		repo      string
		want      string
		wantErr   error
		wantMulti int
	}{
		{
			name:   "default_picks_platform_asset",
			assets: typical,
			repo:   "tool",
			want:   "tool-v1.0.0-linux-amd64.tar.gz",
		},
		{
			name:   "default_repo_name_case_insensitive",
			assets: assets("Tool-Linux-x86_64.tar.gz", "other-linux-x86_64.tar.gz"),
			repo:   "tool",
			want:   "Tool-Linux-x86_64.tar.gz",
		},
		{
			name:    "default_no_match",
			assets:  typical,
			repo:    "missing",
			wantErr: ErrNoMatch,
		},
		{
			name:      "checksum_sidecar_is_ambiguous",
			assets:    assets("tool-linux-amd64.tar.gz", "tool-linux-amd64.tar.gz.sha256"),
			repo:      "tool",
			wantMulti: 2,
		},
		{
			name:   "glob_resolves_sidecar_ambiguity",
			assets: assets("tool-linux-amd64.tar.gz", "tool-linux-amd64.tar.gz.sha256"),
			filter: Filter{Glob: "*.tar.gz"},
			repo:   "tool",
			want:   "tool-linux-amd64.tar.gz",
		},
		{
			name:   "regex_resolves_sidecar_ambiguity",
			assets: assets("tool-linux-amd64.tar.gz", "tool-linux-amd64.tar.gz.sha256"),
			filter: Filter{Regex: `\.tar\.gz$`},
			repo:   "tool",
			want:   "tool-linux-amd64.tar.gz",
		},
		{
			name:   "glob_replaces_default_filter",
			assets: typical,
			filter: Filter{Glob: "*windows*"},
			repo:   "tool",
			want:   "tool-v1.0.0-windows-amd64.zip",
		},
		{
			name:   "contains_filter",
			assets: typical,
			filter: Filter{Contains: "checksums"},
			repo:   "tool",
			want:   "checksums.txt",
		},
		{
			name:    "glob_with_separator_rejected",
			assets:  typical,
			filter:  Filter{Glob: "dist/*.tar.gz"},
			repo:    "tool",
			wantErr: ErrInvalidFilter,
		},
		{
			name:    "glob_with_double_star_rejected",
			assets:  typical,
			filter:  Filter{Glob: "**.tar.gz"},
			repo:    "tool",
			wantErr: ErrInvalidFilter,
		},
		{
			name:    "bad_regex_rejected",
			assets:  typical,
			filter:  Filter{Regex: "("},
			repo:    "tool",
			wantErr: ErrInvalidFilter,
		},
		{
			name:    "two_filters_rejected",
			assets:  typical,
			filter:  Filter{Glob: "*", Regex: ".*"},
			repo:    "tool",
			wantErr: ErrInvalidFilter,
		},
		{
			name:      "regex_matching_many",
			assets:    typical,
			filter:    Filter{Regex: "linux"},
			repo:      "tool",
			wantMulti: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := linuxSelector().Select(tt.assets, tt.filter, tt.repo)

			if tt.wantMulti > 0 {
				var multi *MultipleMatchError
				if !errors.As(err, &multi) {
					t.Fatalf("error = %v, want MultipleMatchError", err)
				}
				if len(multi.Candidates) != tt.wantMulti {
					t.Errorf("got %d candidates, want %d", len(multi.Candidates), tt.wantMulti)
				}
				return
			}

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Name != tt.want {
				t.Errorf("selected %q, want %q", got.Name, tt.want)
			}
		})
	}
}

func TestMultipleMatchError_ListsCandidates(t *testing.T) {
	err := &MultipleMatchError{Candidates: []github.Asset{
		{Name: "tool-linux-amd64.tar.gz", Size: 2048},
		{Name: "tool-linux-amd64.tar.gz.sha256", Size: 64},
	}}

	msg := err.Error()
	for _, want := range []string{
		"tool-linux-amd64.tar.gz (2.0 KiB)",
		"tool-linux-amd64.tar.gz.sha256 (64 B)",
		"--asset-glob",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestFilter_Kind(t *testing.T) {
	tests := []struct {
		filter Filter
		want   FilterKind
		desc   string
	}{
		{Filter{}, FilterDefault, "exact file name"},
		{Filter{Glob: "*"}, FilterGlob, "glob pattern"},
		{Filter{Regex: "x"}, FilterRegex, "RegEx pattern"},
		{Filter{Contains: "x"}, FilterContains, "substring"},
	}

	for _, tt := range tests {
		if got := tt.filter.Kind(); got != tt.want {
			t.Errorf("Kind() = %v, want %v", got, tt.want)
		}
		if got := tt.filter.Kind().String(); got != tt.desc {
			t.Errorf("String() = %q, want %q", got, tt.desc)
		}
	}
}

func TestFilter_ValidateNested(t *testing.T) {
	if err := (Filter{Glob: "bin/*"}).Validate(false); err != nil {
		t.Errorf("entry globs may contain separators: %v", err)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}

	for _, tt := range tests {
		if got := FormatSize(tt.in); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
