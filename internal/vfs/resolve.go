package vfs

import "strings"

// Resolve normalizes a path expression against a current working directory
// and returns the canonical absolute path of an existing node.
//
// Both absolute ("/skills") and relative ("../projects/./webfs.txt")
// expressions are supported. ".." above the root clamps at the root rather
// than erroring. Resolution fails with ErrPathNotFound if any intermediate
// segment is missing or names a file; ErrNotADirectory is reserved for
// operations on a resolved final target.
func (t *Tree) Resolve(cwd, expr string) (string, error) {
	// Canonical segment stack for the starting point.
	var stack []string
	if !strings.HasPrefix(expr, "/") {
		stack = splitSegments(cwd)
	}

	for _, seg := range splitSegments(expr) {
		switch seg {
		case ".":
			// no-op
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, seg)
		}
	}

	// Replay the canonical segments against the tree so intermediate
	// files and missing entries are caught.
	node := t.root
	path := "/"
	for _, seg := range stack {
		if !node.IsDir() {
			// Descending into a file: the path as a whole does not exist.
			return "", ErrPathNotFound
		}
		child, ok := node.Children[seg]
		if !ok {
			return "", ErrPathNotFound
		}
		node = child
		path = join(path, seg)
	}
	return path, nil
}

// ResolveDir resolves a path expression and additionally requires the target
// to be a directory.
func (t *Tree) ResolveDir(cwd, expr string) (string, error) {
	path, err := t.Resolve(cwd, expr)
	if err != nil {
		return "", err
	}
	if n := t.index[path]; !n.IsDir() {
		return "", ErrNotADirectory
	}
	return path, nil
}
