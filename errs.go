package tomledit

import (
	"errors"
	"fmt"
)

var (
	ErrParse         = errors.New("tomledit: failed to parse TOML")
	ErrCountMismatch = errors.New("tomledit: number of paths must match number of values")
	ErrMalformedPath = errors.New("tomledit: path is invalid or contains empty segments")

	ErrUnsupportedOp = errors.New("tomledit: unsupported patch operation")
	ErrNonScalar     = errors.New("tomledit: only scalar values can be set")
	ErrTestFailed    = errors.New("tomledit: test operation failed")
	ErrNotFound      = errors.New("tomledit: path not found")
)

// PathError reports a malformed path in a batch.
type PathError struct {
	Index int
	Path  string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("tomledit: path at index %d ('%s') is invalid or contains empty segments", e.Index, e.Path)
}

func (e *PathError) Unwrap() error { return ErrMalformedPath }

func parseErr(err error) error {
	return fmt.Errorf("%w: %w", ErrParse, err)
}
