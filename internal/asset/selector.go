// Package asset narrows a release's asset list to the single file to install.
package asset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ZebulonRouseFrantzich/gitrel/internal/github"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/target"
)

// ErrNoMatch is returned when no asset passes the filter.
var ErrNoMatch = errors.New("no matching asset found")

// MultipleMatchError lists the assets left after filtering when more than one
// remains. The selector never picks one arbitrarily.
type MultipleMatchError struct {
	Candidates []github.Asset
}

func (e *MultipleMatchError) Error() string {
	var b strings.Builder
	b.WriteString("multiple assets matched:\n\n")
	for _, a := range e.Candidates {
		fmt.Fprintf(&b, "  %s (%s)\n", a.Name, FormatSize(a.Size))
	}
	b.WriteString("\nconsider using/modifying `--asset-glob` or `--asset-regex` filter to match one above")
	return b.String()
}

// Selector applies user filters or the platform default to asset lists.
type Selector struct {
	targets *target.Set
}

// NewSelector creates a selector using targets for the default filter.
func NewSelector(targets *target.Set) *Selector {
	return &Selector{targets: targets}
}

// Filter returns the assets that pass f, in order. With the default filter an
// asset passes when it is platform compatible and its name contains repoName.
func (s *Selector) Filter(assets []github.Asset, f Filter, repoName string) ([]github.Asset, error) {
	if err := f.Validate(true); err != nil {
		return nil, err
	}
	match, err := f.Matcher()
	if err != nil {
		return nil, err
	}
	if match == nil {
		match = s.defaultMatcher(repoName)
	}

	var kept []github.Asset
	for _, a := range assets {
		if match(a.Name) {
			kept = append(kept, a)
		}
	}
	return kept, nil
}

// Select returns the single asset that passes f.
func (s *Selector) Select(assets []github.Asset, f Filter, repoName string) (github.Asset, error) {
	kept, err := s.Filter(assets, f, repoName)
	if err != nil {
		return github.Asset{}, err
	}

	switch len(kept) {
	case 0:
		return github.Asset{}, ErrNoMatch
	case 1:
		return kept[0], nil
	default:
		return github.Asset{}, &MultipleMatchError{Candidates: kept}
	}
}

func (s *Selector) defaultMatcher(repoName string) func(string) bool {
	needle := strings.ToLower(repoName)
	return func(name string) bool {
		return s.targets.Compatible(name) && strings.Contains(strings.ToLower(name), needle)
	}
}

// FormatSize renders a byte count with binary units, e.g. "1.5 MiB".
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
