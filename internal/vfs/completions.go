package vfs

import (
	"sort"
	"strings"
)

// Candidate is one tab-completion match.
type Candidate struct {
	// Token is the full replacement for the typed token, keeping any
	// directory prefix the user already typed ("projects/foli" completes
	// to Token "projects/folioterm/").
	Token string
	// Name is the bare entry name, used when listing candidates.
	Name  string
	IsDir bool
}

// Completions returns the entries matching a partially typed path token,
// sorted by name. The token may carry a directory prefix ("projects/we");
// matching happens against the children of that directory, resolved
// relative to cwd. Both files and directories are candidates. An
// unresolvable prefix yields no candidates, never an error.
func (t *Tree) Completions(cwd, partial string) []Candidate {
	dirExpr, base := splitPartial(partial)

	dirPath := cwd
	if dirExpr != "" {
		resolved, err := t.ResolveDir(cwd, dirExpr)
		if err != nil {
			return nil
		}
		dirPath = resolved
	}

	node, ok := t.index[dirPath]
	if !ok || !node.IsDir() {
		return nil
	}

	var out []Candidate
	for name, child := range node.Children {
		if !strings.HasPrefix(name, base) {
			continue
		}
		token := dirExpr + name
		if child.IsDir() {
			token += "/"
		}
		out = append(out, Candidate{Token: token, Name: name, IsDir: child.IsDir()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// splitPartial separates a typed token into the directory prefix (kept
// verbatim, trailing slash included) and the entry prefix being completed.
func splitPartial(partial string) (dirExpr, base string) {
	idx := strings.LastIndex(partial, "/")
	if idx < 0 {
		return "", partial
	}
	return partial[:idx+1], partial[idx+1:]
}
