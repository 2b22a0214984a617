package input

import (
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/foliokit/folioterm/internal/vfs"
)

// Direction selects where history navigation moves.
type Direction int

const (
	// Up moves toward older entries.
	Up Direction = iota
	// Down moves toward newer entries and past the newest to an empty buffer.
	Down
)

// Source supplies completion candidates. The session binds it to the command
// registry and the VFS scoped to the current working directory.
type Source interface {
	// CommandNames returns all command names in lexicographic order.
	CommandNames() []string
	// AcceptsPath reports whether a command takes path arguments.
	AcceptsPath(cmd string) bool
	// PathCompletions matches a partial path token against the tree,
	// relative to the session's working directory.
	PathCompletions(partial string) []vfs.Candidate
}

// Config wires a Controller to its collaborators.
type Config struct {
	Source Source
	// History may be shared across reopenings of a session.
	History *History
	// Submit receives each non-empty submitted line.
	Submit func(line string)
	// OnCandidates surfaces a multi-match candidate set for display.
	OnCandidates func(names []string)
	// DebounceDelay throttles completion recomputation after edits.
	// Zero makes the controller synchronous.
	DebounceDelay time.Duration
}

// completion is one completion episode: valid only for the buffer value it
// was computed against (cycling updates that value itself).
type completion struct {
	forBuffer string
	head      string   // buffer text before the token being completed
	partial   string   // the typed token
	tokens    []string // replacement tokens, aligned with names
	names     []string // display names
	cursor    int      // -1 until the first cycle step
}

// Controller owns the editable input line. Input events arrive on the
// session goroutine, but the debounced recomputation fires on a timer
// goroutine, so internal state is guarded by a mutex. Callbacks (Submit,
// OnCandidates) run outside the lock.
type Controller struct {
	source       Source
	history      *History
	submit       func(string)
	onCandidates func([]string)
	debounce     *Debouncer

	mu      sync.Mutex
	buffer  string
	histPos int // -1 means "none": not navigating history
	comp    *completion
	precomp *completion // debounced precomputation for the current buffer
}

// NewController builds a controller. cfg.Source is required.
func NewController(cfg Config) *Controller {
	c := &Controller{
		source:       cfg.Source,
		history:      cfg.History,
		submit:       cfg.Submit,
		onCandidates: cfg.OnCandidates,
		debounce:     NewDebouncer(cfg.DebounceDelay),
		histPos:      -1,
	}
	if c.history == nil {
		c.history = NewHistory(0)
	}
	if c.submit == nil {
		c.submit = func(string) {}
	}
	if c.onCandidates == nil {
		c.onCandidates = func([]string) {}
	}
	return c
}

// Buffer returns the current input line.
func (c *Controller) Buffer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer
}

// History exposes the backing history record.
func (c *Controller) History() *History { return c.history }

// SetBuffer replaces the input line, as typing does. Any pending completion
// state is invalidated and the history pointer resets; candidate
// recomputation is scheduled through the debouncer.
func (c *Controller) SetBuffer(s string) {
	c.mu.Lock()
	c.buffer = s
	c.histPos = -1
	c.comp = nil
	c.precomp = nil
	c.mu.Unlock()

	c.debounce.Schedule(func() {
		st := c.compute(s)
		c.mu.Lock()
		if c.buffer == s {
			c.precomp = st
		}
		c.mu.Unlock()
	})
}

// Submit hands the buffered line to the session. Empty (after trimming)
// lines are ignored. The buffer clears and both navigation pointers reset.
func (c *Controller) Submit() {
	c.mu.Lock()
	line := strings.TrimSpace(c.buffer)
	c.buffer = ""
	c.histPos = -1
	c.comp = nil
	c.precomp = nil
	c.mu.Unlock()

	c.debounce.Cancel()
	if line == "" {
		return
	}
	c.history.Add(line)
	c.submit(line)
}

// NavigateHistory moves through past submissions. Up walks from "none" to
// the most recent entry and on toward the oldest, clamped there; Down walks
// back toward the newest and past it to an empty buffer. Boundary moves are
// no-ops. Every move replaces the buffer and invalidates completion state.
func (c *Controller) NavigateHistory(dir Direction) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.history.entries
	if len(entries) == 0 {
		return
	}
	switch dir {
	case Up:
		switch {
		case c.histPos == -1:
			c.histPos = len(entries) - 1
		case c.histPos > 0:
			c.histPos--
		default:
			return // already at the oldest
		}
		c.buffer = entries[c.histPos]
	case Down:
		switch {
		case c.histPos == -1:
			return // not navigating
		case c.histPos < len(entries)-1:
			c.histPos++
			c.buffer = entries[c.histPos]
		default:
			c.histPos = -1
			c.buffer = ""
		}
	}
	c.comp = nil
	c.precomp = nil
}

// TabComplete advances the current completion episode: it completes a unique
// match outright, applies the longest common prefix and surfaces candidates
// on the first press with multiple matches, and cycles through the matches
// on repeated presses.
func (c *Controller) TabComplete() {
	c.mu.Lock()

	// Repeated Tab with live state: cycle.
	if c.comp != nil && c.comp.forBuffer == c.buffer && len(c.comp.tokens) > 1 {
		c.comp.cursor = (c.comp.cursor + 1) % len(c.comp.tokens)
		c.buffer = c.comp.head + c.comp.tokens[c.comp.cursor]
		c.comp.forBuffer = c.buffer
		c.mu.Unlock()
		return
	}

	st := c.precomp
	buffer := c.buffer
	c.precomp = nil
	c.mu.Unlock()

	if st == nil || st.forBuffer != buffer {
		st = c.compute(buffer)
	}
	if st == nil || len(st.tokens) == 0 {
		return
	}

	c.mu.Lock()
	if c.buffer != buffer {
		// The line changed underneath us; drop the stale episode.
		c.mu.Unlock()
		return
	}
	if len(st.tokens) == 1 {
		c.buffer = st.head + st.tokens[0]
		c.comp = nil
		c.mu.Unlock()
		return
	}

	// Multiple matches: longest common prefix first, then expose the set.
	if lcp := commonPrefix(st.tokens); len(lcp) > len(st.partial) {
		c.buffer = st.head + lcp
	}
	st.cursor = -1
	st.forBuffer = c.buffer
	c.comp = st
	names := st.names
	c.mu.Unlock()

	c.onCandidates(names)
}

// CancelPending drops any scheduled completion recomputation. Called when
// the session closes.
func (c *Controller) CancelPending() {
	c.debounce.Cancel()
	c.mu.Lock()
	c.precomp = nil
	c.comp = nil
	c.mu.Unlock()
}

// compute builds the completion state for a buffer value, or nil when the
// position does not complete (empty buffer, or a non-path argument).
func (c *Controller) compute(buffer string) *completion {
	if strings.TrimSpace(buffer) == "" {
		return nil
	}

	cut := strings.LastIndexFunc(buffer, unicode.IsSpace)
	if cut < 0 {
		// First token: complete against the command registry. A unique
		// match gets a trailing space so the argument can follow. With no
		// matching command the token is treated as a path instead, so a
		// bare "pro" still completes to "projects/".
		st := &completion{forBuffer: buffer, head: "", partial: buffer, cursor: -1}
		for _, name := range c.source.CommandNames() {
			if strings.HasPrefix(name, buffer) {
				st.names = append(st.names, name)
				st.tokens = append(st.tokens, name)
			}
		}
		if len(st.tokens) == 0 {
			return c.pathCompletion(buffer, "", buffer)
		}
		if len(st.tokens) == 1 {
			st.tokens[0] += " "
		}
		return st
	}

	head, partial := buffer[:cut+1], buffer[cut+1:]
	cmd := strings.Fields(buffer)[0]
	if !c.source.AcceptsPath(cmd) {
		return nil
	}
	return c.pathCompletion(buffer, head, partial)
}

func (c *Controller) pathCompletion(buffer, head, partial string) *completion {
	st := &completion{forBuffer: buffer, head: head, partial: partial, cursor: -1}
	for _, cand := range c.source.PathCompletions(partial) {
		st.names = append(st.names, cand.Name)
		st.tokens = append(st.tokens, cand.Token)
	}
	if len(st.tokens) == 1 && !strings.HasSuffix(st.tokens[0], "/") {
		// Completed files take a trailing space; directories keep their
		// slash so completion can continue into them.
		st.tokens[0] += " "
	}
	return st
}

// commonPrefix returns the longest common prefix of a non-empty candidate
// set.
func commonPrefix(tokens []string) string {
	prefix := tokens[0]
	for _, tok := range tokens[1:] {
		for !strings.HasPrefix(tok, prefix) {
			prefix = prefix[:len(prefix)-1]
			if prefix == "" {
				return ""
			}
		}
	}
	return prefix
}
