// Package filesystem is the in-memory reference backend for [externals.Path].
//
// A [FileSystem] owns a tree of [Node]s stored in an arena keyed by node ID.
// [Path] handles hold only the store and a segment list and re-resolve on every
// access, so a handle whose node was removed simply reports Exists() == false.
package filesystem

import (
	"sync/atomic"

	"github.com/brettbedarf/externals"
	"github.com/brettbedarf/externals/internal/util"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"
)

// RootID is the arena ID of the root node
const RootID uint64 = 1

// FileSystem is the tree store. The zero value is not usable; see [New].
//
// Individual map operations are safe for concurrent use but sequences of them
// are not atomic; the store expects a single logical caller.
type FileSystem struct {
	id         string
	nodes      *xsync.Map[uint64, *Node] // arena: node ID -> Node
	lastNodeID atomic.Uint64             // last node ID assigned
}

// New creates an empty store holding only the root
func New() *FileSystem {
	fs := &FileSystem{
		id:    uuid.NewString(),
		nodes: xsync.NewMap[uint64, *Node](),
	}
	fs.lastNodeID.Store(RootID)
	fs.nodes.Store(RootID, newNode(RootID, ""))
	return fs
}

// ID uniquely identifies the store in logs
func (fs *FileSystem) ID() string {
	return fs.id
}

// Root returns the handle for the empty path
func (fs *FileSystem) Root() Path {
	return Path{fs: fs}
}

// Path returns the handle for p, e.g. fs.Path("/a/b"). Dot segments are
// resolved as in [Path.Child].
func (fs *FileSystem) Path(p string) Path {
	return Path{fs: fs, segments: externals.AppendSegments(nil, p)}
}

// Len returns the number of nodes in the arena, root included
func (fs *FileSystem) Len() int {
	return fs.nodes.Size()
}

func (fs *FileSystem) root() *Node {
	n, _ := fs.nodes.Load(RootID)
	return n
}

// Lookup walks segments from the root. Fails with [externals.ErrNotFound] if
// any segment is missing.
func (fs *FileSystem) Lookup(segments []string) (*Node, error) {
	cur := fs.root()
	for _, name := range segments {
		id, ok := cur.GetChild(name)
		if !ok {
			return nil, &externals.PathError{Op: "lookup", Path: externals.JoinSegments(segments), Err: externals.ErrNotFound}
		}
		if cur, ok = fs.nodes.Load(id); !ok {
			// dangling child link; treat like a missing segment
			return nil, &externals.PathError{Op: "lookup", Path: externals.JoinSegments(segments), Err: externals.ErrNotFound}
		}
	}
	return cur, nil
}

// Ensure walks segments from the root creating every missing node along the
// way, similar to `mkdir -p`. Existing nodes keep their content and children.
func (fs *FileSystem) Ensure(segments []string) *Node {
	cur := fs.root()
	newCnt := 0
	for _, name := range segments {
		if id, ok := cur.GetChild(name); ok {
			if child, ok := fs.nodes.Load(id); ok {
				cur = child
				continue
			}
		}
		child := newNode(fs.lastNodeID.Add(1), name)
		fs.nodes.Store(child.id, child)
		cur.addChild(name, child.id)
		newCnt++
		cur = child
	}
	if newCnt > 0 {
		logger := util.GetLogger("FileSystem.Ensure")
		logger.Debug().Str("store", fs.id).Str("path", externals.JoinSegments(segments)).Int("created", newCnt).Msg("Created missing nodes")
	}
	return cur
}

// Remove deletes the node at segments and its subtree. A missing path is a
// no-op. For the root, content and children are cleared but the root stays.
func (fs *FileSystem) Remove(segments []string) {
	logger := util.GetLogger("FileSystem.Remove")

	if len(segments) == 0 {
		root := fs.root()
		root.ClearContent()
		for _, name := range root.ChildNames() {
			if id, ok := root.removeChild(name); ok {
				fs.dropSubtree(id)
			}
		}
		logger.Debug().Str("store", fs.id).Msg("Cleared root")
		return
	}

	parent, err := fs.Lookup(segments[:len(segments)-1])
	if err != nil {
		return
	}
	id, ok := parent.removeChild(segments[len(segments)-1])
	if !ok {
		return
	}
	dropped := fs.dropSubtree(id)
	logger.Debug().Str("store", fs.id).Str("path", externals.JoinSegments(segments)).Int("nodes", dropped).Msg("Removed subtree")
}

// dropSubtree removes id and all of its descendants from the arena and returns
// how many nodes were dropped
func (fs *FileSystem) dropSubtree(id uint64) int {
	n, ok := fs.nodes.LoadAndDelete(id)
	if !ok {
		return 0
	}
	dropped := 1
	n.children.Range(func(_ string, childID uint64) bool {
		dropped += fs.dropSubtree(childID)
		return true
	})
	return dropped
}
