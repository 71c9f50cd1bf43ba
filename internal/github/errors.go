package github

import (
	"errors"
	"fmt"
)

// ErrReleaseNotFound is returned when no release matches a lookup.
var ErrReleaseNotFound = errors.New("repository/release not found")

// ErrAssetNotFound is returned when an asset download answers 404.
var ErrAssetNotFound = errors.New("asset file not found")

// APIError carries the human-readable message of a GitHub error envelope.
// It is treated as "not found" for control flow.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Is reports APIError as ErrReleaseNotFound so callers branch on one sentinel.
func (e *APIError) Is(target error) bool {
	return target == ErrReleaseNotFound
}

// StatusError is returned for non-success responses without an envelope.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}
