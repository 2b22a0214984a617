package render

import (
	"fmt"
	"html"
	"iter"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/foliokit/folioterm/internal/terminal"
)

// Defaults for the scroll model. Heights are in pixels, matching the
// geometry the hosting page reports.
const (
	DefaultThreshold    = 40
	DefaultLineHeight   = 20
	DefaultClientHeight = 480
)

// Config sets the scroll geometry of the output pane.
type Config struct {
	// Threshold is the distance from the bottom within which the view
	// still counts as "at bottom" for re-enabling auto-scroll.
	Threshold int
	// LineHeight is the rendered height of one output line.
	LineHeight int
	// ClientHeight is the visible height of the pane.
	ClientHeight int
}

// Renderer is the append-only output pane model. It owns the ordered line
// log, the auto-scroll policy, and the HTML projection of lines.
type Renderer struct {
	mu           sync.RWMutex
	lines        []terminal.OutputLine
	autoScroll   bool
	scrollTop    int
	threshold    int
	lineHeight   int
	clientHeight int
}

// NewRenderer builds a renderer; zero config fields take defaults.
func NewRenderer(cfg Config) *Renderer {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.LineHeight <= 0 {
		cfg.LineHeight = DefaultLineHeight
	}
	if cfg.ClientHeight <= 0 {
		cfg.ClientHeight = DefaultClientHeight
	}
	return &Renderer{
		autoScroll:   true,
		threshold:    cfg.Threshold,
		lineHeight:   cfg.LineHeight,
		clientHeight: cfg.ClientHeight,
	}
}

// Append adds lines to the log in order. While auto-scroll is enabled the
// offset is forced to the bottom after the append.
func (r *Renderer) Append(lines ...terminal.OutputLine) {
	if len(lines) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, lines...)
	if r.autoScroll {
		r.scrollTop = r.maxScroll()
	}
}

// Reset clears the log and restores the initial scroll state. Called when
// the session reopens or the screen is cleared.
func (r *Renderer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = nil
	r.scrollTop = 0
	r.autoScroll = true
}

// Lines returns a copy of the log in insertion order.
func (r *Renderer) Lines() []terminal.OutputLine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]terminal.OutputLine, len(r.lines))
	copy(out, r.lines)
	return out
}

// Each yields the log lines in insertion order without copying the slice
// out to the caller.
func (r *Renderer) Each() iter.Seq[terminal.OutputLine] {
	return func(yield func(terminal.OutputLine) bool) {
		for _, line := range r.Lines() {
			if !yield(line) {
				return
			}
		}
	}
}

// Len returns the number of appended lines.
func (r *Renderer) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.lines)
}

// ScrollTop returns the current scroll offset.
func (r *Renderer) ScrollTop() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.scrollTop
}

// ScrollHeight returns the total content height.
func (r *Renderer) ScrollHeight() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.lines) * r.lineHeight
}

// AutoScroll reports whether appends currently force the view to the bottom.
func (r *Renderer) AutoScroll() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.autoScroll
}

// HandleUserScroll records a user-initiated scroll. Moving more than the
// threshold away from the bottom disables auto-scroll; returning within it
// re-enables it.
func (r *Renderer) HandleUserScroll(offset int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := r.maxScroll()
	if offset < 0 {
		offset = 0
	}
	if offset > max {
		offset = max
	}
	r.scrollTop = offset
	r.autoScroll = max-offset <= r.threshold
}

// maxScroll is scrollHeight - clientHeight, floored at zero. Callers hold
// the lock.
func (r *Renderer) maxScroll() int {
	max := len(r.lines)*r.lineHeight - r.clientHeight
	if max < 0 {
		return 0
	}
	return max
}

// sanitizer strips anything but the spans and safe anchors HTML produces.
var sanitizer = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("span", "a")
	p.AllowAttrs("class").OnElements("span")
	p.AllowAttrs("href", "target", "rel").OnElements("a")
	p.AllowURLSchemes("http", "https")
	p.RequireParseableURLs(true)
	return p
}()

// HTML projects one line to sanitized markup. Detected URLs become anchors
// opening in a new browsing context with no opener back-reference; their
// visible text is the literal URL. Plain segments keep original spacing.
func HTML(line terminal.OutputLine) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<span class="line line-%s">`, line.Kind)
	for _, seg := range Linkify(line.Content) {
		if seg.Link {
			fmt.Fprintf(&b, `<a href="%s" target="_blank" rel="noopener noreferrer">%s</a>`,
				html.EscapeString(seg.Href), html.EscapeString(seg.Text))
			continue
		}
		b.WriteString(html.EscapeString(seg.Text))
	}
	b.WriteString(`</span>`)
	return sanitizer.Sanitize(b.String())
}
