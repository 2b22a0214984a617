package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/foliokit/folioterm/internal/content"
	"github.com/foliokit/folioterm/internal/infrastructure/logging"
	"github.com/foliokit/folioterm/internal/infrastructure/monitoring"
	"github.com/foliokit/folioterm/internal/terminal"
	"github.com/foliokit/folioterm/internal/terminal/render"
	"github.com/foliokit/folioterm/internal/vfs"
)

// Options tunes session construction.
type Options struct {
	HistoryLimit    int
	DebounceDelay   time.Duration
	ScrollThreshold int
}

// Manager owns all live sessions. The VFS tree and interpreter are built
// once at construction and shared read-only by every session.
type Manager struct {
	sessions sync.Map // map[string]*Session

	tree      *vfs.Tree
	interp    *terminal.Interpreter
	owner     content.Owner
	logger    *logging.Logger
	metrics   *monitoring.Metrics
	renderCfg render.Config

	historyLimit int
	debounce     time.Duration
}

// NewManager builds the shared terminal core from a content snapshot.
func NewManager(snap *content.Snapshot, logger *logging.Logger, metrics *monitoring.Metrics, opts Options) *Manager {
	return &Manager{
		tree:         vfs.Build(snap),
		interp:       terminal.New(),
		owner:        snap.Owner,
		logger:       logger,
		metrics:      metrics,
		renderCfg:    render.Config{Threshold: opts.ScrollThreshold},
		historyLimit: opts.HistoryLimit,
		debounce:     opts.DebounceDelay,
	}
}

// Tree exposes the shared virtual filesystem.
func (m *Manager) Tree() *vfs.Tree { return m.tree }

// Open creates a new session (id == "") or reopens an existing one. The
// returned session is OPEN.
func (m *Manager) Open(sessionID string) (*Session, error) {
	if sessionID == "" {
		s := newSession(m)
		m.sessions.Store(s.ID.String(), s)
		s.Open()
		return s, nil
	}

	s, ok := m.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}
	s.Open()
	return s, nil
}

// Get retrieves a session by ID.
func (m *Manager) Get(sessionID string) (*Session, bool) {
	val, ok := m.sessions.Load(sessionID)
	if !ok {
		return nil, false
	}
	return val.(*Session), true
}

// Close transitions a session to CLOSED but keeps it (and its history) for
// a later reopen.
func (m *Manager) Close(sessionID string) error {
	s, ok := m.Get(sessionID)
	if !ok {
		return fmt.Errorf("session not found: %s", sessionID)
	}
	s.Close()
	return nil
}

// Destroy closes a session and forgets it entirely.
func (m *Manager) Destroy(sessionID string) {
	if s, ok := m.Get(sessionID); ok {
		s.Close()
		m.sessions.Delete(sessionID)
	}
}

// Count returns live session counts (total, open).
func (m *Manager) Count() (total, open int) {
	m.sessions.Range(func(_, value interface{}) bool {
		total++
		if value.(*Session).IsOpen() {
			open++
		}
		return true
	})
	return total, open
}

// Shutdown closes every session.
func (m *Manager) Shutdown() {
	m.sessions.Range(func(key, value interface{}) bool {
		value.(*Session).Close()
		m.sessions.Delete(key)
		return true
	})
}
