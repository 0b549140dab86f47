// Package fspath is the real filesystem backend for [externals.Path].
//
// Paths are absolute, "/" separated strings resolved against a go-billy
// filesystem rooted at "/". Production code uses the OS ([NewFS]); tests can
// substitute any billy.Filesystem such as memfs ([NewFSFrom]).
package fspath

import (
	"os"
	"path"
	"path/filepath"

	"github.com/brettbedarf/externals/config"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// FS resolves path strings into [Path] handles
type FS struct {
	bfs billy.Filesystem
	cfg *config.Config
}

// NewFS returns an FS over the operating system's filesystem.
// A nil cfg uses [config.NewDefaultConfig].
func NewFS(cfg *config.Config) *FS {
	return NewFSFrom(osfs.New("/"), cfg)
}

// NewFSFrom returns an FS over bfs, which must accept absolute paths
func NewFSFrom(bfs billy.Filesystem, cfg *config.Config) *FS {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	return &FS{bfs: bfs, cfg: cfg}
}

// Unwrap returns the underlying billy.Filesystem
func (fs *FS) Unwrap() billy.Filesystem {
	return fs.bfs
}

// Path returns the handle for p. Relative paths are resolved against the
// process working directory.
func (fs *FS) Path(p string) (Path, error) {
	p = filepath.ToSlash(p)
	if !path.IsAbs(p) {
		wd, err := os.Getwd()
		if err != nil {
			return Path{}, err
		}
		p = path.Join(filepath.ToSlash(wd), p)
	}
	return Path{fs: fs, path: path.Clean(p)}, nil
}

// WorkingDirectory returns the handle for the process working directory
func (fs *FS) WorkingDirectory() (Path, error) {
	return fs.Path(".")
}

// New is shorthand for NewFS(nil).Path(p)
func New(p string) (Path, error) {
	return NewFS(nil).Path(p)
}

// WorkingDirectory is shorthand for NewFS(nil).WorkingDirectory()
func WorkingDirectory() (Path, error) {
	return NewFS(nil).WorkingDirectory()
}
