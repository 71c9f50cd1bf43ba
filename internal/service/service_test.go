package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZebulonRouseFrantzich/gitrel/internal/asset"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/binary"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/github"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/platform"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/registry"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/release"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/target"
)

var (
	published = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	now       = time.Date(2024, 6, 2, 9, 30, 0, 0, time.UTC)
)

// fakeSource serves one latest release per repository.
type fakeSource struct {
	releases map[string]*github.Release
}

func (f *fakeSource) LatestRelease(ctx context.Context, owner, repo string) (*github.Release, error) {
	if rel, ok := f.releases[owner+"/"+repo]; ok {
		return rel, nil
	}
	return nil, github.ErrReleaseNotFound
}

func (f *fakeSource) ReleaseByTag(ctx context.Context, owner, repo, tag string) (*github.Release, error) {
	if rel, ok := f.releases[owner+"/"+repo]; ok && rel.TagName == tag {
		return rel, nil
	}
	return nil, github.ErrReleaseNotFound
}

func (f *fakeSource) ListReleases(ctx context.Context, owner, repo string, page, perPage int) ([]github.Release, error) {
	if rel, ok := f.releases[owner+"/"+repo]; ok && page == 1 {
		return []github.Release{*rel}, nil
	}
	return nil, nil
}

// fakeInstaller writes a small file per install and counts calls.
type fakeInstaller struct {
	calls []binary.InstallRequest
	fail  map[string]error
	// installed runs after each successful install.
	installed func(binName string)
}

func (f *fakeInstaller) Install(ctx context.Context, req binary.InstallRequest) (*binary.InstallResult, error) {
	f.calls = append(f.calls, req)
	if err := f.fail[req.BinName]; err != nil {
		return nil, err
	}
	if _, err := os.Stat(req.TempDir); err != nil {
		return nil, fmt.Errorf("temp dir missing: %w", err)
	}
	path := filepath.Join(req.BinDir, req.BinName)
	if err := os.MkdirAll(req.BinDir, 0755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, []byte(req.Asset.Name), 0755); err != nil {
		return nil, err
	}
	if f.installed != nil {
		f.installed(req.BinName)
	}
	return &binary.InstallResult{Path: path, Size: int64(len(req.Asset.Name)), Entry: req.BinName}, nil
}

// recordingReporter keeps every event in order.
type recordingReporter struct {
	events []string
}

func (r *recordingReporter) Begin(action, name string) {
	r.events = append(r.events, action+" "+name)
}

func (r *recordingReporter) End(result PackageResult) {
	r.events = append(r.events, result.Status.String()+" "+result.Name)
}

func linuxRelease(repo, tag string) *github.Release {
	return &github.Release{
		TagName:     tag,
		PublishedAt: published,
		Assets: []github.Asset{
			{ID: 1, Name: repo + "-linux-amd64.tar.gz", Size: 100},
			{ID: 2, Name: repo + "-darwin-arm64.tar.gz", Size: 100},
		},
	}
}

type fixture struct {
	source    *fakeSource
	installer *fakeInstaller
	registry  *registry.Registry
	reporter  *recordingReporter
	binDir    string
	tempRoot  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	return &fixture{
		source:    &fakeSource{releases: map[string]*github.Release{}},
		installer: &fakeInstaller{fail: map[string]error{}},
		registry:  registry.New(filepath.Join(dir, "config", registry.FileName)),
		reporter:  &recordingReporter{},
		binDir:    filepath.Join(dir, "bin"),
		tempRoot:  dir,
	}
}

func (f *fixture) deps() Deps {
	targets := target.New(&platform.Info{OS: "linux", Arch: "amd64", ABI: platform.ABIGnu})
	resolver := release.NewResolver(f.source, asset.NewSelector(targets), release.Config{}, nil)
	return Deps{
		Resolver:  resolver,
		Installer: f.installer,
		Registry:  f.registry,
		BinDir:    f.binDir,
		TempRoot:  f.tempRoot,
		Clock:     FixedClock(now),
		Reporter:  f.reporter,
	}
}

func (f *fixture) leftoverTempDirs(t *testing.T) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(f.tempRoot, TmpDirPattern))
	if err != nil {
		t.Fatal(err)
	}
	return matches
}

func TestInstallService_PartialFailure(t *testing.T) {
	f := newFixture(t)
	f.source.releases["acme/alpha"] = linuxRelease("alpha", "v1.0.0")
	f.source.releases["acme/gamma"] = linuxRelease("gamma", "v3.0.0")

	svc := NewInstallService(f.deps())
	summary, err := svc.Execute(context.Background(), InstallRequest{
		Specs: []string{"acme/alpha", "acme/beta", "acme/gamma"},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(summary.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(summary.Results))
	}
	if got := summary.Succeeded(); got != 2 {
		t.Errorf("Succeeded() = %d, want 2", got)
	}
	if summary.Results[1].OK() || !errors.Is(summary.Results[1].Err, github.ErrReleaseNotFound) {
		t.Errorf("beta result = %+v, want ErrReleaseNotFound", summary.Results[1])
	}
	if summary.Outcome() != OutcomePartialSuccess || !errors.Is(summary.Err(), ErrPartialSuccess) {
		t.Errorf("Outcome() = %v, Err() = %v, want partial success", summary.Outcome(), summary.Err())
	}

	reloaded, err := registry.Load(f.registry.Path())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if reloaded.Len() != 2 {
		t.Errorf("registry has %d records, want 2", reloaded.Len())
	}
	if left := f.leftoverTempDirs(t); len(left) != 0 {
		t.Errorf("temp dirs left behind: %v", left)
	}
}

func TestInstallService_AlreadyUpToDate(t *testing.T) {
	f := newFixture(t)
	f.source.releases["acme/tool"] = linuxRelease("tool", "nightly")

	svc := NewInstallService(f.deps())
	ctx := context.Background()

	first, err := svc.Execute(ctx, InstallRequest{Specs: []string{"acme/tool@nightly"}})
	if err != nil || first.Err() != nil {
		t.Fatalf("first install: err = %v, summary err = %v", err, first.Err())
	}
	if first.Results[0].Status != StatusInstalled {
		t.Fatalf("first status = %v, want installed", first.Results[0].Status)
	}

	second, err := svc.Execute(ctx, InstallRequest{Specs: []string{"acme/tool@nightly"}})
	if err != nil {
		t.Fatalf("second install: %v", err)
	}
	if second.Results[0].Status != StatusUpToDate {
		t.Errorf("second status = %v, want already up to date", second.Results[0].Status)
	}
	if len(f.installer.calls) != 1 {
		t.Errorf("installer called %d times, want 1", len(f.installer.calls))
	}

	// A republished floating tag is not up to date.
	republished := linuxRelease("tool", "nightly")
	republished.PublishedAt = published.Add(24 * time.Hour)
	f.source.releases["acme/tool"] = republished

	third, err := svc.Execute(ctx, InstallRequest{Specs: []string{"acme/tool@nightly"}})
	if err != nil {
		t.Fatalf("third install: %v", err)
	}
	if third.Results[0].Status != StatusInstalled {
		t.Errorf("third status = %v, want installed", third.Results[0].Status)
	}

	forced, err := svc.Execute(ctx, InstallRequest{
		Specs:   []string{"acme/tool@nightly"},
		Options: InstallOptions{Force: true},
	})
	if err != nil {
		t.Fatalf("forced install: %v", err)
	}
	if forced.Results[0].Status != StatusInstalled || len(f.installer.calls) != 3 {
		t.Errorf("forced install status = %v with %d calls", forced.Results[0].Status, len(f.installer.calls))
	}
}

func TestInstallService_RecordRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.source.releases["acme/tool"] = linuxRelease("tool", "v1.2.3")

	summary, err := NewInstallService(f.deps()).Execute(context.Background(), InstallRequest{
		Specs: []string{"acme/tool@v1.2.3"},
		Options: InstallOptions{
			Strip:       true,
			EntryFilter: asset.Filter{Glob: "*/tool"},
		},
	})
	if err != nil || summary.Err() != nil {
		t.Fatalf("Execute() err = %v, summary err = %v", err, summary.Err())
	}

	reloaded, err := registry.Load(f.registry.Path())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	got, ok := reloaded.Get("tool")
	if !ok {
		t.Fatal("tool not recorded")
	}
	want := registry.Package{
		Owner:       "acme",
		Repo:        "tool",
		BinName:     "tool",
		Tag:         "v1.2.3",
		Requested:   "v1.2.3",
		Path:        filepath.Join(f.binDir, "tool"),
		Strip:       true,
		PublishedAt: published,
		InstalledAt: now,
		Asset:       "tool-linux-amd64.tar.gz",
		EntryGlob:   "*/tool",
	}
	if got.Owner != want.Owner || got.Repo != want.Repo || got.Tag != want.Tag ||
		got.Requested != want.Requested || got.Path != want.Path || got.Strip != want.Strip ||
		got.Asset != want.Asset || got.EntryGlob != want.EntryGlob {
		t.Errorf("record = %+v, want %+v", got, want)
	}
	if !got.PublishedAt.Equal(want.PublishedAt) || !got.InstalledAt.Equal(want.InstalledAt) {
		t.Errorf("timestamps = %v / %v, want %v / %v", got.PublishedAt, got.InstalledAt, want.PublishedAt, want.InstalledAt)
	}

	call := f.installer.calls[0]
	if !call.Strip || call.Filter.Glob != "*/tool" || call.Asset.Name != "tool-linux-amd64.tar.gz" {
		t.Errorf("install request = %+v", call)
	}
}

func TestInstallService_Options(t *testing.T) {
	t.Run("rename_requires_single_spec", func(t *testing.T) {
		f := newFixture(t)
		_, err := NewInstallService(f.deps()).Execute(context.Background(), InstallRequest{
			Specs:   []string{"a/b", "c/d"},
			Options: InstallOptions{Rename: "x"},
		})
		if err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("nested_asset_glob_rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := NewInstallService(f.deps()).Execute(context.Background(), InstallRequest{
			Specs:   []string{"a/b"},
			Options: InstallOptions{AssetFilter: asset.Filter{Glob: "dir/*.tar.gz"}},
		})
		if !errors.Is(err, asset.ErrInvalidFilter) {
			t.Fatalf("error = %v, want ErrInvalidFilter", err)
		}
	})

	t.Run("rename_and_path", func(t *testing.T) {
		f := newFixture(t)
		f.source.releases["BurntSushi/ripgrep"] = linuxRelease("ripgrep", "14.1.0")
		custom := filepath.Join(t.TempDir(), "tools")

		summary, err := NewInstallService(f.deps()).Execute(context.Background(), InstallRequest{
			Specs:   []string{"BurntSushi/ripgrep"},
			Options: InstallOptions{Rename: "rg", Path: custom},
		})
		if err != nil || summary.Err() != nil {
			t.Fatalf("Execute() err = %v, summary err = %v", err, summary.Err())
		}
		call := f.installer.calls[0]
		if call.BinName != "rg" || call.EntryName != "ripgrep" || call.BinDir != custom {
			t.Errorf("install request = %+v", call)
		}
		if _, ok := f.registry.Get("rg"); !ok {
			t.Error("rg not recorded")
		}
	})

	t.Run("invalid_spec_fails_alone", func(t *testing.T) {
		f := newFixture(t)
		f.source.releases["acme/tool"] = linuxRelease("tool", "v1.0.0")

		summary, err := NewInstallService(f.deps()).Execute(context.Background(), InstallRequest{
			Specs: []string{"a/b/c", "acme/tool"},
		})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !errors.Is(summary.Results[0].Err, release.ErrInvalidSpec) {
			t.Errorf("first error = %v, want ErrInvalidSpec", summary.Results[0].Err)
		}
		if summary.Results[1].Status != StatusInstalled {
			t.Errorf("second status = %v", summary.Results[1].Status)
		}
	})
}

func TestInstallService_BinNameTaken(t *testing.T) {
	f := newFixture(t)
	f.source.releases["other/tool"] = linuxRelease("tool", "v2.0.0")
	f.registry.Put(registry.Package{Owner: "acme", Repo: "tool", BinName: "tool", Tag: "v1.0.0"})

	summary, err := NewInstallService(f.deps()).Execute(context.Background(), InstallRequest{
		Specs: []string{"other/tool"},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !errors.Is(summary.Results[0].Err, ErrBinNameTaken) {
		t.Errorf("error = %v, want ErrBinNameTaken", summary.Results[0].Err)
	}
	if summary.Outcome() != OutcomeFailed || !errors.Is(summary.Err(), ErrOperationFailed) {
		t.Errorf("Outcome() = %v, want failed", summary.Outcome())
	}
	if len(f.installer.calls) != 0 {
		t.Errorf("installer called %d times", len(f.installer.calls))
	}
}

func TestInstallService_ReporterEvents(t *testing.T) {
	f := newFixture(t)
	f.source.releases["acme/tool"] = linuxRelease("tool", "v1.0.0")

	if _, err := NewInstallService(f.deps()).Execute(context.Background(), InstallRequest{
		Specs: []string{"acme/tool"},
	}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	want := []string{"installing tool", "installed tool"}
	if fmt.Sprint(f.reporter.events) != fmt.Sprint(want) {
		t.Errorf("events = %v, want %v", f.reporter.events, want)
	}
}

func TestSummary_Outcome(t *testing.T) {
	ok := PackageResult{Status: StatusInstalled}
	fail := PackageResult{Status: StatusFailed, Err: errors.New("boom")}
	same := PackageResult{Status: StatusUpToDate}

	tests := []struct {
		name    string
		results []PackageResult
		want    Outcome
		wantErr error
	}{
		{"empty", nil, OutcomeSucceeded, nil},
		{"all_ok", []PackageResult{ok, same}, OutcomeSucceeded, nil},
		{"partial", []PackageResult{ok, fail, ok}, OutcomePartialSuccess, ErrPartialSuccess},
		{"all_failed", []PackageResult{fail, fail}, OutcomeFailed, ErrOperationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Summary{Results: tt.results}
			if got := s.Outcome(); got != tt.want {
				t.Errorf("Outcome() = %v, want %v", got, tt.want)
			}
			if err := s.Err(); !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Errorf("Err() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
