package filesystem

import (
	"bytes"
	"io"
	"iter"
	"slices"

	"github.com/brettbedarf/externals"
	"github.com/brettbedarf/externals/internal/scope"
)

// Path is a (store, segments) handle into a [FileSystem].
//
// Handles are cheap values created on every navigation call. Creating one never
// touches the store; two handles are equal when their segments are equal.
type Path struct {
	fs       *FileSystem
	segments []string
}

var _ externals.Path = Path{}

// Segments returns a copy of the handle's segments
func (p Path) Segments() []string {
	return slices.Clone(p.segments)
}

// FileSystem returns the store the handle points into
func (p Path) FileSystem() *FileSystem {
	return p.fs
}

func (p Path) Name() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

func (p Path) String() string {
	return externals.JoinSegments(p.segments)
}

// Equal reports whether other addresses the same path in the same store
func (p Path) Equal(other Path) bool {
	return p.fs == other.fs && slices.Equal(p.segments, other.segments)
}

func (p Path) Parent() (externals.Path, error) {
	if len(p.segments) == 0 {
		return nil, &externals.PathError{Op: "parent", Path: p.String(), Err: externals.ErrNoParent}
	}
	return Path{fs: p.fs, segments: p.segments[: len(p.segments)-1 : len(p.segments)-1]}, nil
}

// Child resolves "." and ".." segments lexically; ".." at the root stays there
func (p Path) Child(segments string) externals.Path {
	return Path{fs: p.fs, segments: externals.AppendSegments(p.segments, segments)}
}

// child never shares backing storage with p so sibling handles cannot clobber
// each other's segments
func (p Path) child(segments []string) Path {
	return Path{fs: p.fs, segments: slices.Concat(p.segments, segments)}
}

func (p Path) lookup() (*Node, bool) {
	n, err := p.fs.Lookup(p.segments)
	return n, err == nil
}

func (p Path) Exists() bool {
	_, ok := p.lookup()
	return ok
}

func (p Path) IsFile() bool {
	n, ok := p.lookup()
	return ok && n.HasContent()
}

func (p Path) IsDir() bool {
	n, ok := p.lookup()
	return ok && n.NumChildren() > 0
}

func (p Path) Content() ([]byte, error) {
	n, err := p.fs.Lookup(p.segments)
	if err != nil {
		return nil, err
	}
	data, ok := n.Content()
	if !ok {
		return nil, &externals.PathError{Op: "content", Path: p.String(), Err: externals.ErrNotFound}
	}
	return data, nil
}

func (p Path) SetContent(data []byte) error {
	p.fs.Ensure(p.segments).SetContent(data)
	return nil
}

// Create is an alias of [Path.SetContent]
func (p Path) Create(data []byte) error {
	return p.SetContent(data)
}

func (p Path) ReadableStream(fn func(r externals.ReadStream) error) error {
	data, err := p.Content()
	if err != nil {
		return err
	}

	r := bytes.NewReader(data)
	rs := externals.NewReadStream(r)
	var s scope.Scope
	s.AddCloseFn(func() {
		// a stream kept past fn holds no part of the snapshot
		r.Reset(nil)
	})
	s.AddClose(rs.(io.Closer).Close)
	return s.Run(func() error {
		return fn(rs)
	})
}

// WritableStream always commits what was written, including when fn fails
// part way through.
func (p Path) WritableStream(fn func(w io.Writer) error) error {
	var buf bytes.Buffer
	var s scope.Scope
	s.AddClose(func() error {
		return p.SetContent(buf.Bytes())
	})
	return s.Run(func() error {
		return fn(&buf)
	})
}

func (p Path) Children() iter.Seq[externals.Path] {
	return func(yield func(externals.Path) bool) {
		n, ok := p.lookup()
		if !ok {
			return
		}
		for _, name := range n.ChildNames() {
			if !yield(p.child([]string{name})) {
				return
			}
		}
	}
}

// All is the same sequence as [Path.Children], for `for c := range p.All()`
func (p Path) All() iter.Seq[externals.Path] {
	return p.Children()
}

func (p Path) Remove() error {
	p.fs.Remove(p.segments)
	return nil
}
