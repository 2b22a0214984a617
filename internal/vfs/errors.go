package vfs

import "errors"

// Sentinel errors for the filesystem taxonomy. The command interpreter maps
// these onto shell-style error lines; nothing above it sees raw errors.
var (
	ErrPathNotFound   = errors.New("no such file or directory")
	ErrNotADirectory  = errors.New("not a directory")
	ErrIsADirectory   = errors.New("is a directory")
	ErrBadGlobPattern = errors.New("invalid glob pattern")
)

// Message converts a filesystem error into the phrasing a shell would print.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrPathNotFound):
		return "No such file or directory"
	case errors.Is(err, ErrNotADirectory):
		return "Not a directory"
	case errors.Is(err, ErrIsADirectory):
		return "Is a directory"
	case errors.Is(err, ErrBadGlobPattern):
		return "Invalid glob pattern"
	default:
		return err.Error()
	}
}
