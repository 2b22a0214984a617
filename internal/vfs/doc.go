// Package vfs presents a portfolio content snapshot as a read-only virtual
// filesystem.
//
// The tree is built once from a content.Snapshot and is immutable afterward,
// so it is safe to share across sessions without coordination. A flat
// path→node index is precomputed at build time, making path lookups O(1)
// and keeping resolution iterative (no recursion over path segments).
//
// Operations:
//   - Resolve: absolute and relative path expressions with "." and "..";
//     ".." above the root clamps at the root
//   - List: lexicographically sorted directory entries, optional glob filter
//   - Read: file content
//   - Completions: prefix-matched child names for tab completion
package vfs
