package externals

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrNoParent is returned by [Path.Parent] on the root
	ErrNoParent = errors.New("path has no parent")

	// ErrNotFound is returned when a node, its content, or a located name does
	// not exist. It wraps fs.ErrNotExist so either can be matched with errors.Is.
	ErrNotFound = fmt.Errorf("not found: %w", fs.ErrNotExist)

	// ErrInvalidName is returned for names that contain no segments
	ErrInvalidName = errors.New("invalid name")
)

// PathError records the operation and path that produced an error
type PathError struct {
	Op   string // e.g. "lookup", "content", "locate"
	Path string
	Err  error
}

func (e *PathError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// NewNotFound is shorthand for a [PathError] wrapping [ErrNotFound].
// cause, when non-nil, is kept in the chain for callers that need it.
func NewNotFound(op, path string, cause error) error {
	err := ErrNotFound
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrNotFound, cause)
	}
	return &PathError{Op: op, Path: path, Err: err}
}
