// Package render owns the terminal output pane model.
//
// The Renderer consumes the append-only sequence of output lines a command
// produces and never reorders or mutates prior entries. It carries the
// auto-scroll policy (the offset snaps to the bottom after every append
// while the user is at or near the bottom, and stays put once the user has
// scrolled away) and the inline link detection that splits a line into
// plain-text and hyperlink segments. The HTML projection of a line is
// sanitized so author-supplied content cannot smuggle markup into the page.
package render
