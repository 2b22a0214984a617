// Package terminal implements the command interpreter at the heart of the
// simulated portfolio terminal.
//
// A fixed registry maps command names (ls, cd, cat, pwd, ...) to handlers.
// Execute tokenizes a submitted line on whitespace, dispatches to the
// matching handler, and returns the output lines to append plus an optional
// new working directory. The boundary is exception-free: unknown commands,
// bad arguments, and filesystem failures all come back as Error-kind output
// lines, and a panicking handler is recovered into one as well. Session
// state is never mutated on failure.
package terminal
