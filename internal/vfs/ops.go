package vfs

import (
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// List returns the entry names of a directory in lexicographic order.
// The path must be canonical (as returned by Resolve).
func (t *Tree) List(dirPath string) ([]string, error) {
	node, ok := t.index[dirPath]
	if !ok {
		return nil, ErrPathNotFound
	}
	if !node.IsDir() {
		return nil, ErrNotADirectory
	}
	names := make([]string, 0, len(node.Children))
	for name := range node.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ListGlob lists a directory keeping only names matching a glob pattern
// (doublestar syntax: *, ?, [...], {a,b}).
func (t *Tree) ListGlob(dirPath, pattern string) ([]string, error) {
	names, err := t.List(dirPath)
	if err != nil {
		return nil, err
	}
	matched := names[:0]
	for _, name := range names {
		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			return nil, ErrBadGlobPattern
		}
		if ok {
			matched = append(matched, name)
		}
	}
	return matched, nil
}

// Read returns the content of a file. The path must be canonical.
func (t *Tree) Read(filePath string) (string, error) {
	node, ok := t.index[filePath]
	if !ok {
		return "", ErrPathNotFound
	}
	if node.IsDir() {
		return "", ErrIsADirectory
	}
	return node.Content, nil
}
