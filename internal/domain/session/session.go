package session

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/foliokit/folioterm/internal/content"
	"github.com/foliokit/folioterm/internal/infrastructure/logging"
	"github.com/foliokit/folioterm/internal/infrastructure/monitoring"
	"github.com/foliokit/folioterm/internal/shared/id"
	"github.com/foliokit/folioterm/internal/terminal"
	"github.com/foliokit/folioterm/internal/terminal/input"
	"github.com/foliokit/folioterm/internal/terminal/render"
	"github.com/foliokit/folioterm/internal/vfs"
)

// Event is pushed to subscribed listeners after every state change that
// affects the output pane.
type Event struct {
	// Lines are the output lines appended by this event.
	Lines []terminal.OutputLine
	// Clear signals that the log was reset before the append.
	Clear bool
}

// Listener consumes session events. Registered with Subscribe, detached by
// the returned cancel function or wholesale on Close.
type Listener func(Event)

// Session is one visitor's terminal. All exported methods are safe for
// concurrent use, though the expected traffic is a single event-driven
// caller.
type Session struct {
	ID id.SessionID

	tree    *vfs.Tree
	interp  *terminal.Interpreter
	owner   content.Owner
	logger  *logging.Logger
	metrics *monitoring.Metrics

	input  *input.Controller
	render *render.Renderer

	mu      sync.Mutex
	open    bool
	cwd     string
	subs    map[int]Listener
	nextSub int
}

func newSession(m *Manager) *Session {
	s := &Session{
		ID:      id.NewSessionID(),
		tree:    m.tree,
		interp:  m.interp,
		owner:   m.owner,
		logger:  m.logger,
		metrics: m.metrics,
		render:  render.NewRenderer(m.renderCfg),
		cwd:     "/",
		subs:    make(map[int]Listener),
	}
	s.input = input.NewController(input.Config{
		Source:        (*completionSource)(s),
		History:       input.NewHistory(m.historyLimit),
		Submit:        s.execute,
		OnCandidates:  s.showCandidates,
		DebounceDelay: m.debounce,
	})
	return s
}

// completionSource adapts the session to the input controller: completions
// are scoped to the session's current working directory.
type completionSource Session

func (cs *completionSource) CommandNames() []string { return cs.interp.Names() }

func (cs *completionSource) AcceptsPath(cmd string) bool { return cs.interp.AcceptsPath(cmd) }

func (cs *completionSource) PathCompletions(partial string) []vfs.Candidate {
	s := (*Session)(cs)
	s.mu.Lock()
	cwd := s.cwd
	s.mu.Unlock()
	return s.tree.Completions(cwd, partial)
}

// Open transitions the session to OPEN. The working directory returns to
// root and the output log resets; command history is untouched. Reopening
// an already-open session is a no-op.
func (s *Session) Open() {
	s.mu.Lock()
	if s.open {
		s.mu.Unlock()
		return
	}
	s.open = true
	s.cwd = "/"
	s.mu.Unlock()

	s.render.Reset()
	s.metrics.RecordSessionOpen()
	s.logger.Info("session opened", zap.String("session_id", s.ID.String()))
	s.notify(Event{Clear: true})
}

// Close transitions the session to CLOSED: the pending completion debounce
// is cancelled and every listener is detached. History and the session
// object itself survive for a later reopen.
func (s *Session) Close() {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return
	}
	s.open = false
	s.subs = make(map[int]Listener)
	s.mu.Unlock()

	s.input.CancelPending()
	s.metrics.RecordSessionClose()
	s.logger.Info("session closed", zap.String("session_id", s.ID.String()))
}

// IsOpen reports the lifecycle state.
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Cwd returns the current working directory.
func (s *Session) Cwd() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cwd
}

// Buffer returns the current input line.
func (s *Session) Buffer() string { return s.input.Buffer() }

// SetBuffer replaces the input line (typing).
func (s *Session) SetBuffer(text string) { s.input.SetBuffer(text) }

// Submit executes the buffered line (Enter).
func (s *Session) Submit() { s.input.Submit() }

// Execute sets and submits a line in one step; the one-shot HTTP API and
// the WebSocket submit message use it so history and state behave exactly
// as with interactive typing.
func (s *Session) Execute(line string) {
	s.input.SetBuffer(line)
	s.input.Submit()
}

// NavigateHistory moves through past submissions (ArrowUp/ArrowDown).
func (s *Session) NavigateHistory(dir input.Direction) { s.input.NavigateHistory(dir) }

// TabComplete advances the current completion episode (Tab).
func (s *Session) TabComplete() { s.input.TabComplete() }

// History returns the submitted lines, oldest first.
func (s *Session) History() []string { return s.input.History().Entries() }

// Lines returns the output log in insertion order.
func (s *Session) Lines() []terminal.OutputLine { return s.render.Lines() }

// Renderer exposes the output pane model (scroll state, HTML projection).
func (s *Session) Renderer() *render.Renderer { return s.render }

// HandleScroll records a user scroll event against the auto-scroll policy.
func (s *Session) HandleScroll(offset int) { s.render.HandleUserScroll(offset) }

// Subscribe registers a listener for output events and returns its cancel
// function. Listeners are called synchronously after each append.
func (s *Session) Subscribe(fn Listener) (cancel func()) {
	s.mu.Lock()
	token := s.nextSub
	s.nextSub++
	s.subs[token] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, token)
		s.mu.Unlock()
	}
}

// execute runs one submitted line through the interpreter. It is the
// controller's submit callback, so it never sees empty lines.
func (s *Session) execute(line string) {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return
	}
	ctx := &terminal.Context{
		Tree:    s.tree,
		Cwd:     s.cwd,
		History: s.input.History().Entries(),
		Owner:   s.owner,
	}
	s.mu.Unlock()

	start := time.Now()
	res := s.interp.Execute(ctx, line)
	status := "ok"
	for _, l := range res.Lines {
		if l.Kind == terminal.LineError {
			status = "error"
			break
		}
	}
	s.metrics.RecordCommand(commandName(line), status, time.Since(start))

	s.mu.Lock()
	if res.Cwd != "" {
		s.cwd = res.Cwd
	}
	s.mu.Unlock()

	if res.Clear {
		s.render.Reset()
	}

	lines := append([]terminal.OutputLine{terminal.Command(line)}, res.Lines...)
	if res.Clear {
		// The prompt echo does not survive a clear.
		lines = res.Lines
	}
	s.render.Append(lines...)
	s.notify(Event{Lines: lines, Clear: res.Clear})
}

// showCandidates surfaces a multi-match completion set as an info line.
func (s *Session) showCandidates(names []string) {
	if len(names) == 0 {
		return
	}
	line := terminal.Info(joinCandidates(names))
	s.render.Append(line)
	s.notify(Event{Lines: []terminal.OutputLine{line}})
}

func (s *Session) notify(ev Event) {
	s.mu.Lock()
	listeners := make([]Listener, 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(ev)
	}
}

func commandName(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] == ' ' || line[i] == '\t' {
			return line[:i]
		}
	}
	return line
}

func joinCandidates(names []string) string {
	out := names[0]
	for _, n := range names[1:] {
		out += "  " + n
	}
	return out
}
