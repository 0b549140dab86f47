// Package externals defines a path abstraction that works the same over an
// in-memory tree (package filesystem) and the real filesystem (package fspath).
//
// Calling code is written once against [Path] and can be handed either backend.
package externals

import (
	"io"
	"iter"
)

// Path is the capability set every backend implements.
//
// A Path is a cheap, immutable value. Navigation ([Path.Child], [Path.Parent])
// never touches the underlying storage; only [Path.SetContent],
// [Path.WritableStream] and [Path.Remove] mutate it.
type Path interface {
	// Name returns the last path segment, or "" for the root
	Name() string

	// String returns the absolute, "/" separated form of the path ("/" for root)
	String() string

	// Parent returns the enclosing path. Fails with [ErrNoParent] at the root.
	Parent() (Path, error)

	// Child appends one or more segments. "a/b", "/a/b/" and
	// Child("a").Child("b") all address the same path.
	Child(segments string) Path

	// Exists reports whether anything is stored at the path. The root always exists.
	Exists() bool

	// IsFile reports whether the path exists and holds content
	IsFile() bool

	// IsDir reports whether the path exists and has at least one child
	IsDir() bool

	// Content returns the stored content or an [ErrNotFound] error
	Content() ([]byte, error)

	// SetContent replaces the content, creating any missing ancestors
	SetContent(data []byte) error

	// ReadableStream calls fn with a cursor over the current content and releases
	// it when fn returns. Fails with [ErrNotFound] before calling fn if there is
	// no content.
	ReadableStream(fn func(r ReadStream) error) error

	// WritableStream calls fn with a writer that accumulates in call order. The
	// accumulated bytes are committed as the new content when fn returns, even
	// when fn fails or panics.
	WritableStream(fn func(w io.Writer) error) error

	// Children yields one Path per direct child. Each iteration re-reads the
	// current state, so the sequence can be ranged over any number of times.
	Children() iter.Seq[Path]

	// Remove deletes the path and everything below it. Removing a missing path is
	// a no-op. Removing the root clears it but the root keeps existing.
	Remove() error
}

// ReadStream is the read cursor handed to [Path.ReadableStream] callbacks
type ReadStream interface {
	io.Reader

	// Next returns up to n bytes, fewer when the content runs out.
	// Returns io.EOF once nothing is left.
	Next(n int) ([]byte, error)

	// Rest returns everything not read yet (possibly empty)
	Rest() ([]byte, error)
}
