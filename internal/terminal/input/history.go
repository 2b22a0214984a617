package input

// DefaultHistoryLimit caps retained history entries when no limit is given.
const DefaultHistoryLimit = 100

// History is a bounded, insertion-ordered record of submitted command lines.
// Consecutive duplicates are kept; beyond the cap the oldest entry is
// evicted. History outlives session close/reopen.
type History struct {
	entries []string
	limit   int
}

// NewHistory creates a history with the given cap (<= 0 uses the default).
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Add records a submitted line, evicting the oldest entry past the cap.
func (h *History) Add(line string) {
	h.entries = append(h.entries, line)
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
}

// Entries returns a copy of the history, oldest first.
func (h *History) Entries() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of retained entries.
func (h *History) Len() int { return len(h.entries) }
