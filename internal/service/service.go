// Package service runs gitrel's batch operations on top of the release
// pipeline and the package registry.
//
// Each package in a batch is processed on its own: resolve, select,
// download, verify, extract. A failure is recorded in the package's result
// and the batch moves on. The registry is read by the caller before the
// batch and saved once after it.
package service

import (
	"context"
	"errors"

	"github.com/ZebulonRouseFrantzich/gitrel/internal/binary"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/github"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/release"
)

const (
	// TmpDirPattern names the per-batch download directory.
	TmpDirPattern = "gitrel-*"
)

var (
	// ErrPartialSuccess is returned when some but not all packages succeeded.
	ErrPartialSuccess = errors.New("partial success")
	// ErrOperationFailed is returned when every package failed.
	ErrOperationFailed = errors.New("operation failed")
)

// Resolver finds the release and asset for one package.
type Resolver interface {
	Resolve(ctx context.Context, req release.Request) (*release.Resolution, error)
}

// Finder looks up a release without selecting an asset.
type Finder interface {
	Find(ctx context.Context, repo release.RepoRef, version release.VersionRequest) (*github.Release, error)
}

// Installer downloads and installs a resolved asset.
type Installer interface {
	Install(ctx context.Context, req binary.InstallRequest) (*binary.InstallResult, error)
}

// Status is what happened to one package.
type Status int

const (
	StatusFailed Status = iota
	StatusInstalled
	StatusUpdated
	StatusUpToDate
	StatusUninstalled
)

// String returns the verb shown to the user.
func (s Status) String() string {
	switch s {
	case StatusInstalled:
		return "installed"
	case StatusUpdated:
		return "updated"
	case StatusUpToDate:
		return "already up to date"
	case StatusUninstalled:
		return "uninstalled"
	default:
		return "failed"
	}
}

// PackageResult is the outcome for one package of a batch.
type PackageResult struct {
	// Name is the binary name, or the argument as typed when it did not parse.
	Name   string
	Repo   string
	Status Status
	Tag    string
	Asset  string
	Path   string
	Size   int64
	// Verified is how the download was checked, for installs and updates.
	Verified binary.VerificationMethod
	Err      error
}

// OK reports whether the package counts as a success.
func (r PackageResult) OK() bool {
	return r.Status != StatusFailed
}

// Outcome classifies a whole batch.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomePartialSuccess
	OutcomeFailed
)

// Summary collects the results of a batch in processing order.
type Summary struct {
	Results []PackageResult
}

// Succeeded counts the packages that did not fail.
func (s *Summary) Succeeded() int {
	n := 0
	for _, r := range s.Results {
		if r.OK() {
			n++
		}
	}
	return n
}

// Count returns how many packages ended with status.
func (s *Summary) Count(status Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// Failures returns the failed results.
func (s *Summary) Failures() []PackageResult {
	var out []PackageResult
	for _, r := range s.Results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// Outcome is Succeeded when nothing failed, Failed when nothing succeeded
// and PartialSuccess otherwise. An empty batch succeeds.
func (s *Summary) Outcome() Outcome {
	ok := s.Succeeded()
	switch {
	case ok == len(s.Results):
		return OutcomeSucceeded
	case ok == 0:
		return OutcomeFailed
	default:
		return OutcomePartialSuccess
	}
}

// Err maps the outcome to nil, ErrPartialSuccess or ErrOperationFailed.
func (s *Summary) Err() error {
	switch s.Outcome() {
	case OutcomePartialSuccess:
		return ErrPartialSuccess
	case OutcomeFailed:
		return ErrOperationFailed
	default:
		return nil
	}
}

func (s *Summary) add(r PackageResult) {
	s.Results = append(s.Results, r)
}

// Reporter is told when each package starts and ends.
type Reporter interface {
	Begin(action, name string)
	End(result PackageResult)
}

type nopReporter struct{}

func (nopReporter) Begin(string, string) {}
func (nopReporter) End(PackageResult) {}

func reporterOrNop(r Reporter) Reporter {
	if r == nil {
		return nopReporter{}
	}
	return r
}
