package fspath

import (
	"bytes"
	"io"
	"iter"
	"os"
	"path"

	"github.com/brettbedarf/externals"
	"github.com/brettbedarf/externals/internal/scope"
	"github.com/brettbedarf/externals/internal/util"
	billyutil "github.com/go-git/go-billy/v5/util"
	"github.com/google/uuid"
)

// Path is an absolute, cleaned path on an [FS]
type Path struct {
	fs   *FS
	path string
}

var _ externals.Path = Path{}

func (p Path) isRoot() bool {
	return p.path == externals.Separator
}

func (p Path) Name() string {
	if p.isRoot() {
		return ""
	}
	return path.Base(p.path)
}

func (p Path) String() string {
	return p.path
}

func (p Path) Parent() (externals.Path, error) {
	if p.isRoot() {
		return nil, &externals.PathError{Op: "parent", Path: p.path, Err: externals.ErrNoParent}
	}
	return Path{fs: p.fs, path: path.Dir(p.path)}, nil
}

// Child resolves "." and ".." segments lexically, like the in-memory backend;
// ".." at "/" stays at "/"
func (p Path) Child(segments string) externals.Path {
	return Path{fs: p.fs, path: externals.JoinSegments(externals.AppendSegments(externals.SplitSegments(p.path), segments))}
}

func (p Path) stat() (os.FileInfo, bool) {
	if p.fs == nil {
		return nil, false
	}
	info, err := p.fs.bfs.Stat(p.path)
	return info, err == nil
}

func (p Path) Exists() bool {
	if p.isRoot() {
		return true
	}
	_, ok := p.stat()
	return ok
}

func (p Path) IsFile() bool {
	info, ok := p.stat()
	return ok && info.Mode().IsRegular()
}

// IsDir reports whether the path is a directory. Unlike the in-memory
// backend, an empty directory counts.
func (p Path) IsDir() bool {
	info, ok := p.stat()
	return ok && info.IsDir()
}

func (p Path) open(op string) (io.ReadCloser, error) {
	if info, ok := p.stat(); ok && info.IsDir() {
		return nil, externals.NewNotFound(op, p.path, nil)
	}
	f, err := p.fs.bfs.Open(p.path)
	if err != nil {
		logger := util.GetLogger("fspath.open")
		logger.Debug().Err(err).Str("path", p.path).Msg("Open failed")
		return nil, externals.NewNotFound(op, p.path, err)
	}
	return f, nil
}

func (p Path) Content() ([]byte, error) {
	f, err := p.open("content")
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, externals.NewNotFound("content", p.path, err)
	}
	return data, nil
}

// SetContent writes data through a uniquely named sibling which is then renamed
// over the target, so readers never observe a half written file.
func (p Path) SetContent(data []byte) error {
	logger := util.GetLogger("fspath.SetContent")

	dir := path.Dir(p.path)
	if err := p.fs.bfs.MkdirAll(dir, p.fs.cfg.DirMode); err != nil {
		logger.Debug().Err(err).Str("dir", dir).Msg("Failed to create parent directories")
		return externals.NewNotFound("set_content", p.path, err)
	}

	tmp := path.Join(dir, "."+p.Name()+"."+uuid.NewString()+".tmp")
	if err := billyutil.WriteFile(p.fs.bfs, tmp, data, p.fs.cfg.FileMode); err != nil {
		_ = p.fs.bfs.Remove(tmp)
		return externals.NewNotFound("set_content", p.path, err)
	}
	if err := p.fs.bfs.Rename(tmp, p.path); err != nil {
		// some backends refuse to rename over an existing file
		logger.Debug().Err(err).Str("path", p.path).Msg("Rename failed; writing in place")
		_ = p.fs.bfs.Remove(tmp)
		if err := billyutil.WriteFile(p.fs.bfs, p.path, data, p.fs.cfg.FileMode); err != nil {
			return externals.NewNotFound("set_content", p.path, err)
		}
	}
	logger.Debug().Str("path", p.path).Int("bytes", len(data)).Msg("Committed content")
	return nil
}

// Create is an alias of [Path.SetContent]
func (p Path) Create(data []byte) error {
	return p.SetContent(data)
}

func (p Path) ReadableStream(fn func(r externals.ReadStream) error) error {
	f, err := p.open("readable_stream")
	if err != nil {
		return err
	}
	rs := externals.NewReadStream(f)
	var s scope.Scope
	s.AddClose(f.Close)
	s.AddClose(rs.(io.Closer).Close)
	return s.Run(func() error {
		return fn(rs)
	})
}

// WritableStream buffers writes and commits them with [Path.SetContent] when
// fn returns, fails or panics.
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
		infos, err := p.fs.bfs.ReadDir(p.path)
		if err != nil {
			return
		}
		for _, info := range infos {
			if !yield(Path{fs: p.fs, path: path.Join(p.path, info.Name())}) {
				return
			}
		}
	}
}

// All is the same sequence as [Path.Children]
func (p Path) All() iter.Seq[externals.Path] {
	return p.Children()
}

// Remove deletes the path recursively. The root itself is never deleted; its
// children are.
func (p Path) Remove() error {
	logger := util.GetLogger("fspath.Remove")

	targets := []string{p.path}
	if p.isRoot() {
		targets = targets[:0]
		for c := range p.Children() {
			targets = append(targets, c.String())
		}
	}
	for _, target := range targets {
		if err := billyutil.RemoveAll(p.fs.bfs, target); err != nil {
			logger.Debug().Err(err).Str("path", target).Msg("Remove failed")
			return externals.NewNotFound("remove", target, err)
		}
	}
	logger.Debug().Str("path", p.path).Msg("Removed")
	return nil
}
