// Package session composes the terminal core into per-visitor sessions.
//
// A Session owns the lifecycle state machine (CLOSED → OPEN → CLOSED) and
// wires the input controller, command interpreter, VFS, and output renderer
// together. The VFS and interpreter are built once by the Manager and shared
// read-only across all sessions; each session has its own working directory,
// output log, and command history. Opening resets the working directory and
// output log; history survives close/reopen for as long as the session
// object lives. Closing cancels the pending completion debounce and detaches
// every subscribed listener.
package session
