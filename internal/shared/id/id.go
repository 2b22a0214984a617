// Package id provides typed, prefixed ULID generation.
//
// ULIDs are lexicographically sortable, so session and request IDs order by
// creation time for free, and the prefixes keep log lines readable
// (sess_*, req_*).
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// SessionID identifies a terminal session.
type SessionID string

// RequestID identifies an API request.
type RequestID string

const (
	sessionPrefix = "sess"
	requestPrefix = "req"
)

// Generator generates ULIDs with a guarded entropy source.
type Generator struct {
	entropy io.Reader
	mu      sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = &Generator{entropy: rand.Reader}
	})
	return defaultGenerator
}

// Generate creates a new ULID string.
func (g *Generator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
}

// NewSessionID generates a session ID.
func NewSessionID() SessionID {
	return SessionID(fmt.Sprintf("%s_%s", sessionPrefix, Default().Generate()))
}

// NewRequestID generates a request ID.
func NewRequestID() RequestID {
	return RequestID(fmt.Sprintf("%s_%s", requestPrefix, Default().Generate()))
}

func (id SessionID) String() string { return string(id) }
func (id RequestID) String() string { return string(id) }

// IsSessionID checks that a string carries the session prefix and a valid
// ULID payload.
func IsSessionID(s string) bool {
	rest, ok := strings.CutPrefix(s, sessionPrefix+"_")
	if !ok {
		return false
	}
	_, err := ulid.Parse(rest)
	return err == nil
}
