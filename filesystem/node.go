package filesystem

import (
	"slices"

	"github.com/puzpuzpuz/xsync/v4"
)

// Node is one entry in the tree. It may hold content, children, or both.
//
// Children are referenced by node ID rather than pointer; the owning
// [FileSystem] resolves IDs through its arena.
type Node struct {
	id         uint64
	name       string                     // last path segment; "" for root
	content    []byte                     // valid only when hasContent
	hasContent bool                       // distinguishes empty content from none
	children   *xsync.Map[string, uint64] // child name -> node ID
}

func newNode(id uint64, name string) *Node {
	return &Node{
		id:       id,
		name:     name,
		children: xsync.NewMap[string, uint64](),
	}
}

// ID returns the node's arena ID
func (n *Node) ID() uint64 {
	return n.id
}

// Name returns the node's name (last path segment)
func (n *Node) Name() string {
	return n.name
}

// HasContent reports whether content is set, even if empty
func (n *Node) HasContent() bool {
	return n.hasContent
}

// Content returns a copy of the node's content and whether any is set
func (n *Node) Content() ([]byte, bool) {
	if !n.hasContent {
		return nil, false
	}
	return append([]byte{}, n.content...), true
}

// SetContent stores a copy of data as the node's content
func (n *Node) SetContent(data []byte) {
	n.content = append([]byte{}, data...)
	n.hasContent = true
}

// ClearContent drops the node's content
func (n *Node) ClearContent() {
	n.content = nil
	n.hasContent = false
}

// GetChild returns a child's node ID
func (n *Node) GetChild(name string) (id uint64, ok bool) {
	return n.children.Load(name)
}

// NumChildren returns the number of direct children
func (n *Node) NumChildren() int {
	return n.children.Size()
}

// ChildNames returns a sorted snapshot of the child names
func (n *Node) ChildNames() []string {
	names := make([]string, 0, n.children.Size())
	n.children.Range(func(name string, _ uint64) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names
}

func (n *Node) addChild(name string, id uint64) {
	n.children.Store(name, id)
}

func (n *Node) removeChild(name string) (id uint64, ok bool) {
	return n.children.LoadAndDelete(name)
}
