// Package pathtest is a conformance suite for [externals.Path] backends.
//
// Backends call [TestSuite] from their own tests with a factory returning a
// fresh, empty base path for every subtest:
//
//	func TestConformance(t *testing.T) {
//	    pathtest.TestSuite(t, func(t *testing.T) externals.Path {
//	        return filesystem.New().Root()
//	    })
//	}
//
// The base need not be the root of the backend, so everything is checked
// relative to it.
package pathtest

import (
	"errors"
	"io"
	"io/fs"
	"slices"
	"strings"
	"testing"

	"github.com/brettbedarf/externals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MissingName is never created by the suite and is assumed absent from the
// base path's ancestry
const MissingName = "zz-externals-missing"

// NewBaseFunc returns a fresh, empty base path for one subtest
type NewBaseFunc func(t *testing.T) externals.Path

// TestSuite runs every conformance test against the backend
func TestSuite(t *testing.T, newBase NewBaseFunc) {
	t.Run("Navigation", func(t *testing.T) { TestNavigation(t, newBase) })
	t.Run("Content", func(t *testing.T) { TestContent(t, newBase) })
	t.Run("Streams", func(t *testing.T) { TestStreams(t, newBase) })
	t.Run("Children", func(t *testing.T) { TestChildren(t, newBase) })
	t.Run("Remove", func(t *testing.T) { TestRemove(t, newBase) })
	t.Run("Locate", func(t *testing.T) { TestLocate(t, newBase) })
}

// TestNavigation checks that Child, Parent and Name compose without side effects
func TestNavigation(t *testing.T, newBase NewBaseFunc) {
	t.Run("ChildThenParent", func(t *testing.T) {
		base := newBase(t)
		parent, err := base.Child("a").Parent()
		require.NoError(t, err)
		assert.True(t, externals.Equal(base, parent))
	})

	t.Run("Name", func(t *testing.T) {
		base := newBase(t)
		assert.Equal(t, "a name", base.Child("a name").Name())
		assert.Equal(t, "c", base.Child("a/b/c").Name())
	})

	t.Run("MultiSegmentChild", func(t *testing.T) {
		base := newBase(t)
		want := base.Child("dir-a").Child("dir-b").Child("file")
		assert.True(t, externals.Equal(want, base.Child("dir-a/dir-b/file")))
		assert.True(t, externals.Equal(want, base.Child("/dir-a/dir-b/file/")))
	})

	t.Run("DotSegments", func(t *testing.T) {
		base := newBase(t)
		up := base.Child("a").Child("..")
		assert.Equal(t, base.Name(), up.Name())
		assert.Equal(t, base.String(), up.String())
		assert.True(t, externals.Equal(base, base.Child("a/..")))
		assert.True(t, externals.Equal(base.Child("a"), base.Child("./a/.")))
		assert.True(t, externals.Equal(base.Child("a/c"), base.Child("a/b/../c")))

		// ".." is the parent, or the base itself when it is the root
		want := base
		if parent, err := base.Parent(); err == nil {
			want = parent
		}
		assert.True(t, externals.Equal(want, base.Child("..")))
	})

	t.Run("DotSegmentsWrite", func(t *testing.T) {
		base := newBase(t)
		require.NoError(t, base.Child("a/../f").SetContent([]byte("f")))
		assert.Equal(t, []string{"f"}, externals.Names(base))
		got, err := base.Child("f").Content()
		require.NoError(t, err)
		assert.Equal(t, "f", string(got))
	})

	t.Run("NavigationDoesNotCreate", func(t *testing.T) {
		base := newBase(t)
		x := base.Child("nonexistent")
		_, _ = x.Child("deeper").Parent()
		assert.False(t, x.Exists())
		assert.False(t, x.IsFile())
		assert.False(t, x.IsDir())
		assert.Empty(t, externals.Collect(base))
	})
}

// TestContent checks SetContent/Content round trips and implicit ancestors
func TestContent(t *testing.T, newBase NewBaseFunc) {
	t.Run("RoundTrip", func(t *testing.T) {
		base := newBase(t)
		for _, want := range [][]byte{[]byte("b content"), []byte("something\nand more"), {}} {
			x := base.Child("b")
			require.NoError(t, x.SetContent(want))
			got, err := x.Content()
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		base := newBase(t)
		x := base.Child("f")
		require.NoError(t, x.SetContent([]byte("initial content")))
		require.NoError(t, x.SetContent([]byte("overwritten")))
		got, err := x.Content()
		require.NoError(t, err)
		assert.Equal(t, []byte("overwritten"), got)
	})

	t.Run("ExistingIsFile", func(t *testing.T) {
		base := newBase(t)
		x := base.Child("b")
		require.NoError(t, x.SetContent([]byte("b content")))
		assert.True(t, x.Exists())
		assert.True(t, x.IsFile())
		assert.False(t, x.IsDir())
	})

	t.Run("AncestorsCreated", func(t *testing.T) {
		base := newBase(t)
		a := base.Child("a")
		ab := a.Child("b")
		require.NoError(t, ab.Child("c").SetContent([]byte("content")))
		assert.True(t, a.Exists())
		assert.True(t, a.IsDir())
		assert.True(t, ab.IsDir())
	})

	t.Run("MissingContent", func(t *testing.T) {
		base := newBase(t)
		_, err := base.Child("nonexistent").Content()
		assert.ErrorIs(t, err, externals.ErrNotFound)
	})
}

// TestStreams checks scoped readers and writers
func TestStreams(t *testing.T, newBase NewBaseFunc) {
	t.Run("ReadInPieces", func(t *testing.T) {
		base := newBase(t)
		x := base.Child("test-file3")
		require.NoError(t, x.SetContent([]byte("something3")))

		err := x.ReadableStream(func(r externals.ReadStream) error {
			b, err := r.Next(1)
			require.NoError(t, err)
			assert.Equal(t, "s", string(b))
			b, err = r.Next(1)
			require.NoError(t, err)
			assert.Equal(t, "o", string(b))
			rest, err := r.Rest()
			require.NoError(t, err)
			assert.Equal(t, "mething3", string(rest))
			_, err = r.Next(1)
			assert.ErrorIs(t, err, io.EOF)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("ReadMissing", func(t *testing.T) {
		base := newBase(t)
		called := false
		err := base.Child("nothing").ReadableStream(func(externals.ReadStream) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, externals.ErrNotFound)
		assert.False(t, called)
	})

	t.Run("ReadCallbackError", func(t *testing.T) {
		base := newBase(t)
		x := base.Child("f")
		require.NoError(t, x.SetContent([]byte("data")))
		sentinel := errors.New("stop")
		err := x.ReadableStream(func(externals.ReadStream) error { return sentinel })
		assert.ErrorIs(t, err, sentinel)
	})

	t.Run("LeakedStreamIsClosed", func(t *testing.T) {
		base := newBase(t)
		x := base.Child("f")
		require.NoError(t, x.SetContent([]byte("data")))

		var leaked externals.ReadStream
		require.NoError(t, x.ReadableStream(func(r externals.ReadStream) error {
			leaked = r
			return nil
		}))
		_, err := leaked.Next(1)
		assert.ErrorIs(t, err, fs.ErrClosed)
		_, err = leaked.Rest()
		assert.ErrorIs(t, err, fs.ErrClosed)
	})

	t.Run("WriteConcatenates", func(t *testing.T) {
		base := newBase(t)
		x := base.Child("file123")
		err := x.WritableStream(func(w io.Writer) error {
			for _, s := range []string{"FILE", "1", "23"} {
				if _, err := io.WriteString(w, s); err != nil {
					return err
				}
			}
			return nil
		})
		require.NoError(t, err)
		got, err := x.Content()
		require.NoError(t, err)
		assert.Equal(t, "FILE123", string(got))
	})

	t.Run("WriteCreatesAncestors", func(t *testing.T) {
		base := newBase(t)
		x := base.Child("a/b/c")
		require.NoError(t, x.WritableStream(func(w io.Writer) error {
			_, err := io.WriteString(w, "content")
			return err
		}))
		assert.True(t, base.Child("a/b").IsDir())
		got, err := x.Content()
		require.NoError(t, err)
		assert.Equal(t, "content", string(got))
	})

	t.Run("WriteCommitsOnError", func(t *testing.T) {
		base := newBase(t)
		x := base.Child("partial")
		sentinel := errors.New("write failed")
		err := x.WritableStream(func(w io.Writer) error {
			_, _ = io.WriteString(w, "kept")
			return sentinel
		})
		assert.ErrorIs(t, err, sentinel)
		got, err := x.Content()
		require.NoError(t, err)
		assert.Equal(t, "kept", string(got))
	})

	t.Run("WriteCommitsOnPanic", func(t *testing.T) {
		base := newBase(t)
		x := base.Child("panicked")
		assert.Panics(t, func() {
			_ = x.WritableStream(func(w io.Writer) error {
				_, _ = io.WriteString(w, "before panic")
				panic("boom")
			})
		})
		got, err := x.Content()
		require.NoError(t, err)
		assert.Equal(t, "before panic", string(got))
	})
}

// TestChildren checks enumeration reflects the current state on every pass
func TestChildren(t *testing.T, newBase NewBaseFunc) {
	t.Run("Names", func(t *testing.T) {
		base := newBase(t)
		require.NoError(t, base.Child("a/b").SetContent([]byte("content of a/b")))
		require.NoError(t, base.Child("x").SetContent([]byte("content of x")))

		children := externals.Collect(base)
		require.Len(t, children, 2)
		slices.SortFunc(children, func(a, b externals.Path) int {
			return strings.Compare(a.Name(), b.Name())
		})
		assert.Equal(t, "a", children[0].Name())
		assert.Equal(t, "x", children[1].Name())
		got, err := children[1].Content()
		require.NoError(t, err)
		assert.Equal(t, "content of x", string(got))
	})

	t.Run("Restartable", func(t *testing.T) {
		base := newBase(t)
		require.NoError(t, base.Child("a").SetContent([]byte("a")))
		assert.Equal(t, []string{"a"}, externals.Names(base))
		assert.Equal(t, []string{"a"}, externals.Names(base))

		require.NoError(t, base.Child("b").SetContent([]byte("b")))
		assert.Equal(t, []string{"a", "b"}, externals.Names(base))
	})

	t.Run("EarlyBreak", func(t *testing.T) {
		base := newBase(t)
		for _, name := range []string{"a", "b", "c"} {
			require.NoError(t, base.Child(name).SetContent([]byte(name)))
		}
		seen := 0
		for range base.Children() {
			seen++
			break
		}
		assert.Equal(t, 1, seen)
	})

	t.Run("MissingHasNone", func(t *testing.T) {
		base := newBase(t)
		assert.Empty(t, externals.Collect(base.Child("missing")))
	})
}

// TestRemove checks recursive removal and the missing-path no-op
func TestRemove(t *testing.T, newBase NewBaseFunc) {
	t.Run("Subtree", func(t *testing.T) {
		base := newBase(t)
		x := base.Child("1")
		ab := x.Child("a/b")
		require.NoError(t, ab.SetContent([]byte("content of a/b")))
		require.NoError(t, base.Child("sibling").SetContent([]byte("sibling")))

		require.NoError(t, x.Remove())

		assert.False(t, x.Exists())
		assert.False(t, x.Child("a").Exists())
		assert.False(t, ab.Exists())
		_, err := ab.Content()
		assert.ErrorIs(t, err, externals.ErrNotFound)

		got, err := base.Child("sibling").Content()
		require.NoError(t, err)
		assert.Equal(t, "sibling", string(got))
	})

	t.Run("Missing", func(t *testing.T) {
		base := newBase(t)
		require.NoError(t, base.Child("x").SetContent([]byte("expect to remain")))

		require.NoError(t, base.Child("a").Remove())
		require.NoError(t, base.Child("a/b/c").Remove())

		got, err := base.Child("x").Content()
		require.NoError(t, err)
		assert.Equal(t, "expect to remain", string(got))
	})

	t.Run("ThenRecreate", func(t *testing.T) {
		base := newBase(t)
		x := base.Child("a/b")
		require.NoError(t, x.SetContent([]byte("old")))
		require.NoError(t, base.Child("a").Remove())
		assert.False(t, x.Exists())

		require.NoError(t, x.SetContent([]byte("new")))
		got, err := x.Content()
		require.NoError(t, err)
		assert.Equal(t, "new", string(got))
	})
}

// TestLocate runs the upward search against a real tree built on the backend:
//
//	      b -- x
//	     /
//	    a -- y
//	   /
//	base +-- x
//	    \
//	     .git
func TestLocate(t *testing.T, newBase NewBaseFunc) {
	build := func(t *testing.T) externals.Path {
		base := newBase(t)
		for _, p := range []string{"a/b/x", "a/y", "x", ".git/HEAD"} {
			require.NoError(t, base.Child(p).SetContent([]byte(p)))
		}
		return base
	}

	tests := []struct {
		name   string
		start  string
		target string
		want   string
	}{
		{"SelfMatch", "a/b", "b", "a/b"},
		{"ChildMatch", "a/b", "x", "a/b/x"},
		{"AncestorChild", "a", "x", "x"},
		{"SiblingOfAncestor", "a/b", "y", "a/y"},
		{"DotDir", "a/b", ".git", ".git"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := build(t)
			got, err := externals.Locate(base.Child(tt.start), tt.target)
			require.NoError(t, err)
			assert.Equal(t, base.Child(tt.want).String(), got.String())
			assert.True(t, got.Exists())
		})
	}

	t.Run("DotTarget", func(t *testing.T) {
		base := build(t)
		for _, target := range []string{"..", "a/../x", "."} {
			_, err := externals.Locate(base.Child("a/b"), target)
			assert.ErrorIs(t, err, externals.ErrInvalidName, "target %q", target)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		base := build(t)
		_, err := externals.Locate(base.Child("a/b"), MissingName)
		assert.ErrorIs(t, err, externals.ErrNotFound)
	})
}
