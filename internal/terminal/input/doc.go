// Package input owns the editable terminal input line.
//
// The Controller is a state machine over one text buffer plus two navigation
// pointers: the history position and the tab-completion cursor. Submitting a
// non-empty line records it in the bounded History and hands it to the
// session; ArrowUp/ArrowDown replay history; Tab completes either the
// command name (first token) or a filesystem path (later tokens of
// path-accepting commands), cycling through candidates on repeated presses.
//
// Completion recomputation after buffer edits is debounced through a
// cancellable delayed task; a zero delay makes the controller fully
// synchronous, which is what tests use.
package input
