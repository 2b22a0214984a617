package terminal

import (
	"fmt"
	"time"
)

// LineKind tags an output line for rendering.
type LineKind uint8

const (
	// LineCommand echoes a submitted command at the prompt.
	LineCommand LineKind = iota
	// LineOutput is ordinary command output.
	LineOutput
	// LineError is a recovered failure surfaced to the user.
	LineError
	// LineInfo is advisory output (help text, completion candidates).
	LineInfo
)

var lineKindNames = [...]string{"command", "output", "error", "info"}

// String returns the wire name of the kind.
func (k LineKind) String() string {
	if int(k) < len(lineKindNames) {
		return lineKindNames[k]
	}
	return "output"
}

// MarshalText encodes the kind by name for JSON payloads.
func (k LineKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind from its wire name.
func (k *LineKind) UnmarshalText(text []byte) error {
	for i, name := range lineKindNames {
		if name == string(text) {
			*k = LineKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown line kind: %q", text)
}

// OutputLine is one immutable unit of terminal output. Lines are append-only:
// once produced they are never reordered or edited.
type OutputLine struct {
	Kind      LineKind  `json:"kind"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Output builds an ordinary output line.
func Output(content string) OutputLine {
	return OutputLine{Kind: LineOutput, Content: content, Timestamp: time.Now()}
}

// Outputf builds a formatted output line.
func Outputf(format string, args ...interface{}) OutputLine {
	return Output(fmt.Sprintf(format, args...))
}

// Errorf builds a formatted error line.
func Errorf(format string, args ...interface{}) OutputLine {
	return OutputLine{Kind: LineError, Content: fmt.Sprintf(format, args...), Timestamp: time.Now()}
}

// Info builds an advisory line.
func Info(content string) OutputLine {
	return OutputLine{Kind: LineInfo, Content: content, Timestamp: time.Now()}
}

// Command builds a prompt-echo line for a submitted command.
func Command(line string) OutputLine {
	return OutputLine{Kind: LineCommand, Content: line, Timestamp: time.Now()}
}
