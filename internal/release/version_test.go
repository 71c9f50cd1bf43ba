package release

import (
	"errors"
	"testing"
)

func TestParseVersionRequest(t *testing.T) {
	tests := []struct {
		input string
		want  Kind
		raw   string
	}{
		{"*", KindLatest, "*"},
		{"", KindLatest, "*"},
		{"  ", KindLatest, "*"},
		{"^1.2.0", KindSemVer, "^1.2.0"},
		{"~0.9", KindSemVer, "~0.9"},
		{">=1.0.0, <2.0.0", KindSemVer, ">=1.0.0, <2.0.0"},
		{"1.2.3", KindSemVer, "1.2.3"},
		{"13.0.0", KindSemVer, "13.0.0"},
		{"v1.2.3", KindExact, "v1.2.3"},
		{"V2.0.0", KindExact, "V2.0.0"},
		{">=v1.0.0", KindExact, ">=v1.0.0"},
		{"^1.0.0-dev", KindSemVer, "^1.0.0-dev"},
		{"nightly", KindExact, "nightly"},
		{"release-2024-05", KindExact, "release-2024-05"},
		{"latest", KindExact, "latest"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseVersionRequest(tt.input)
			if got.Kind != tt.want {
				t.Errorf("Kind = %v, want %v", got.Kind, tt.want)
			}
			if got.Raw != tt.raw {
				t.Errorf("Raw = %q, want %q", got.Raw, tt.raw)
			}
		})
	}
}

func TestParseVersionRequest_Deterministic(t *testing.T) {
	for _, in := range []string{"*", "^1.2.0", "nightly"} {
		a, b := ParseVersionRequest(in), ParseVersionRequest(in)
		if a.Kind != b.Kind || a.Raw != b.Raw {
			t.Errorf("ParseVersionRequest(%q) not deterministic", in)
		}
	}
}

func TestExtractVersion(t *testing.T) {
	tests := []struct {
		tag    string
		want   string
		wantOK bool
	}{
		{"release-v2.3.4-beta.1+build5", "2.3.4-beta.1+build5", true},
		{"v1.2.3-rc.1", "1.2.3-rc.1", true},
		{"1.0.0", "1.0.0", true},
		{"tool-14.1.0", "14.1.0", true},
		{"nightly", "", false},
		{"v1.2", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			ver, ok := ExtractVersion(tt.tag)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && ver.String() != tt.want {
				t.Errorf("version = %q, want %q", ver.String(), tt.want)
			}
		})
	}
}

func TestVersionRequest_MatchesTag(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		tag       string
		want      bool
	}{
		{"caret_admits_prerelease", "^2.0.0", "release-v2.3.4-beta.1+build5", true},
		{"caret_rejects_next_major", "^3.0.0", "release-v2.3.4-beta.1+build5", false},
		{"caret_stable", "^1.2.0", "v1.9.0", true},
		{"caret_lower", "^1.2.0", "v1.1.9", false},
		{"range", ">=1.0.0, <2.0.0", "v1.5.0", true},
		{"tag_without_version", "^1.0.0", "nightly", false},
		{"exact", "nightly", "nightly", true},
		{"exact_is_verbatim", "nightly", "Nightly", false},
		{"latest", "*", "anything", true},
		{"caret_rejects_own_prerelease", "^2.0.0", "v2.0.0-rc.1", false},
		{"gte_rejects_own_prerelease", ">=1.2.3", "v1.2.3-alpha", false},
		{"gte_admits_later_prerelease", ">=1.2.3", "v1.2.4-alpha", true},
		{"bare_rejects_own_prerelease", "1.2.3", "v1.2.3-rc.1", false},
		{"partial_caret_rejects_prerelease", "^2", "v2.0.0-beta", false},
		{"bare_is_caret_patch", "13.0.0", "13.0.1", true},
		{"bare_is_caret_minor", "13.0.0", "v13.4.0", true},
		{"bare_is_caret_not_major", "13.0.0", "14.0.0", false},
		{"bare_is_caret_same", "13.0.0", "13.0.0", true},
		{"v_prefix_is_exact", "v1.2.3", "v1.2.3", true},
		{"v_prefix_is_exact_only", "v1.2.3", "v1.2.4", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := ParseVersionRequest(tt.requested)
			if got := req.MatchesTag(tt.tag); got != tt.want {
				t.Errorf("MatchesTag(%q) with %q = %v, want %v", tt.tag, tt.requested, got, tt.want)
			}
		})
	}
}

func TestParseSpec(t *testing.T) {
	tests := []struct {
		input     string
		wantOwner string
		wantName  string
		wantKind  Kind
		wantRaw   string
		wantErr   bool
	}{
		{input: "BurntSushi/ripgrep", wantOwner: "BurntSushi", wantName: "ripgrep", wantKind: KindLatest, wantRaw: "*"},
		{input: "sharkdp/bat@^0.24", wantOwner: "sharkdp", wantName: "bat", wantKind: KindSemVer, wantRaw: "^0.24"},
		{input: "neovim/neovim@nightly", wantOwner: "neovim", wantName: "neovim", wantKind: KindExact, wantRaw: "nightly"},
		{input: "https://github.com/cli/cli/", wantOwner: "cli", wantName: "cli", wantKind: KindLatest, wantRaw: "*"},
		{input: "https://github.com/cli/cli@*", wantOwner: "cli", wantName: "cli", wantKind: KindLatest, wantRaw: "*"},
		{input: "fzf", wantOwner: "fzf", wantName: "fzf", wantKind: KindLatest, wantRaw: "*"},
		{input: "fzf@0.50.0", wantOwner: "fzf", wantName: "fzf", wantKind: KindSemVer, wantRaw: "0.50.0"},
		{input: "", wantErr: true},
		{input: "a/b/c", wantErr: true},
		{input: "/repo", wantErr: true},
		{input: "owner/re po", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			spec, err := ParseSpec(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSpec) {
					t.Fatalf("error = %v, want ErrInvalidSpec", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSpec() error = %v", err)
			}
			if spec.Repo.Owner != tt.wantOwner || spec.Repo.Name != tt.wantName {
				t.Errorf("repo = %s, want %s/%s", spec.Repo, tt.wantOwner, tt.wantName)
			}
			if spec.Version.Kind != tt.wantKind || spec.Version.Raw != tt.wantRaw {
				t.Errorf("version = %v %q, want %v %q", spec.Version.Kind, spec.Version.Raw, tt.wantKind, tt.wantRaw)
			}
		})
	}
}
