package shell

// History is the append-only list of submitted command lines plus the recall
// cursor. The cursor is either an index into the list or the past-end
// position (== Len), which shows as an empty input.
type History struct {
	entries []string
	cursor  int
}

// Push appends a line and resets the cursor to past-end.
func (h *History) Push(line string) {
	h.entries = append(h.entries, line)
	h.cursor = len(h.entries)
}

// Up moves the cursor one step toward the oldest entry, clamped at 0, and
// returns the line to show. ok is false when there is no history.
func (h *History) Up() (line string, ok bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	h.cursor = max(0, h.cursor-1)
	return h.current(), true
}

// Down moves the cursor one step toward past-end and returns the line to
// show; past-end yields "". ok is false when there is no history.
func (h *History) Down() (line string, ok bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	h.cursor = min(len(h.entries), h.cursor+1)
	return h.current(), true
}

func (h *History) current() string {
	if h.cursor < len(h.entries) {
		return h.entries[h.cursor]
	}
	return ""
}

// Len returns the number of entries.
func (h *History) Len() int { return len(h.entries) }

// Cursor returns the cursor position; Len means past-end.
func (h *History) Cursor() int { return h.cursor }

// Entries returns a copy of the entries, oldest first.
func (h *History) Entries() []string {
	return append([]string(nil), h.entries...)
}
