// Package content defines the portfolio content snapshot consumed by the
// terminal core.
//
// A snapshot is a tree of named sections and items supplied by the hosting
// site at startup; the terminal never fetches, caches, or mutates it. The
// snapshot can be decoded from a YAML document, or the embedded default
// content can be used when no document is configured.
//
// Structure:
//   - Section: a named directory of items and nested sections
//   - Item: a named leaf carrying text content
//   - Owner: site owner identity shown by the whoami command
package content
