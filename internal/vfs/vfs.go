package vfs

import (
	"sort"
	"strings"

	"github.com/foliokit/folioterm/internal/content"
)

// Kind distinguishes files from directories.
type Kind uint8

const (
	KindFile Kind = iota
	KindDirectory
)

// String returns the kind name used in listings and API payloads.
func (k Kind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "file"
}

// Node is one entry in the virtual tree. Files carry Content and never have
// children; directory children are keyed by name, unique within a directory.
type Node struct {
	Name     string
	Path     string
	Kind     Kind
	Content  string
	Children map[string]*Node
}

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool { return n.Kind == KindDirectory }

// Tree is the immutable virtual filesystem. All methods are read-only and
// safe for concurrent use.
type Tree struct {
	root  *Node
	index map[string]*Node
}

// Build maps a content snapshot into a virtual tree. Pure construction: the
// snapshot is copied into nodes and never referenced afterward.
func Build(snap *content.Snapshot) *Tree {
	root := &Node{
		Name:     "/",
		Path:     "/",
		Kind:     KindDirectory,
		Children: make(map[string]*Node),
	}
	t := &Tree{
		root:  root,
		index: map[string]*Node{"/": root},
	}
	for _, sec := range snap.Sections {
		t.addSection(root, sec)
	}
	return t
}

func (t *Tree) addSection(parent *Node, sec content.Section) {
	dir := &Node{
		Name:     sec.Name,
		Path:     join(parent.Path, sec.Name),
		Kind:     KindDirectory,
		Children: make(map[string]*Node),
	}
	parent.Children[dir.Name] = dir
	t.index[dir.Path] = dir

	for _, child := range sec.Sections {
		t.addSection(dir, child)
	}
	for _, item := range sec.Items {
		file := &Node{
			Name:    item.Name,
			Path:    join(dir.Path, item.Name),
			Kind:    KindFile,
			Content: item.Content,
		}
		dir.Children[file.Name] = file
		t.index[file.Path] = file
	}
}

// Root returns the root directory node.
func (t *Tree) Root() *Node { return t.root }

// Stat looks up a node by canonical absolute path.
func (t *Tree) Stat(path string) (*Node, bool) {
	n, ok := t.index[path]
	return n, ok
}

// Len returns the number of nodes in the tree, the root included.
func (t *Tree) Len() int { return len(t.index) }

// Walk visits every node in depth-first lexicographic order, directories
// before their children. The visit callback receives the node and its depth
// relative to start (start itself has depth 0).
func (t *Tree) Walk(startPath string, visit func(n *Node, depth int)) error {
	start, ok := t.index[startPath]
	if !ok {
		return ErrPathNotFound
	}

	type frame struct {
		node  *Node
		depth int
	}
	stack := []frame{{start, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(f.node, f.depth)

		if f.node.Children == nil {
			continue
		}
		names := make([]string, 0, len(f.node.Children))
		for name := range f.node.Children {
			names = append(names, name)
		}
		// Reverse order so the stack pops lexicographically.
		sort.Sort(sort.Reverse(sort.StringSlice(names)))
		for _, name := range names {
			stack = append(stack, frame{f.node.Children[name], f.depth + 1})
		}
	}
	return nil
}

func join(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}

func splitSegments(expr string) []string {
	parts := strings.Split(expr, "/")
	segs := parts[:0]
	for _, p := range parts {
		if p != "" {
			segs = append(segs, p)
		}
	}
	return segs
}
