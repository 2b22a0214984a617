package terminal

import (
	"sort"
	"strings"

	"github.com/foliokit/folioterm/internal/content"
	"github.com/foliokit/folioterm/internal/vfs"
)

// Context carries the session state a handler may read. Handlers communicate
// state changes through Result instead of mutating the context.
type Context struct {
	Tree    *vfs.Tree
	Cwd     string
	History []string
	Owner   content.Owner
}

// Result is the outcome of executing one line.
type Result struct {
	Lines []OutputLine
	// Cwd is the new working directory, or "" when unchanged.
	Cwd string
	// Clear asks the session to reset the output log.
	Clear bool
}

// HandlerFunc runs one command. Failures are reported as Error lines in the
// result, never as panics.
type HandlerFunc func(ctx *Context, args []string) Result

type command struct {
	name     string
	usage    string
	summary  string
	pathArgs bool
	run      HandlerFunc
}

// Interpreter dispatches submitted lines to registered command handlers.
// The registry is fixed at construction; Interpreter is read-only afterward
// and safe to share across sessions.
type Interpreter struct {
	commands map[string]*command
	names    []string
}

// New builds an interpreter with the builtin command set registered.
func New() *Interpreter {
	in := &Interpreter{commands: make(map[string]*command)}
	in.registerBuiltins()

	in.names = make([]string, 0, len(in.commands))
	for name := range in.commands {
		in.names = append(in.names, name)
	}
	sort.Strings(in.names)
	return in
}

func (in *Interpreter) register(c *command) {
	in.commands[c.name] = c
}

// Names returns all command names in lexicographic order. Used for
// first-token tab completion.
func (in *Interpreter) Names() []string {
	return in.names
}

// AcceptsPath reports whether a command takes filesystem path arguments,
// which decides whether later tokens get path completion.
func (in *Interpreter) AcceptsPath(name string) bool {
	c, ok := in.commands[name]
	return ok && c.pathArgs
}

// Execute tokenizes and runs one submitted line. Tokenization is plain
// whitespace splitting; there is no quoting. An empty line yields an empty
// result. Unknown commands produce a single Error line and leave state
// untouched.
func (in *Interpreter) Execute(ctx *Context, line string) (res Result) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Result{}
	}

	name, args := fields[0], fields[1:]
	c, ok := in.commands[name]
	if !ok {
		return Result{Lines: []OutputLine{Errorf("%s: command not found", name)}}
	}

	// The interpreter boundary is exception-free: a handler panic is
	// degraded to an error line rather than tearing down the session.
	defer func() {
		if r := recover(); r != nil {
			res = Result{Lines: []OutputLine{Errorf("%s: internal error", name)}}
		}
	}()

	return c.run(ctx, args)
}
