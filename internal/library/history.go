package library

import "strings"

// History is the ordered record of shown images with a current-index cursor.
// Entries are only appended at the tail or truncated when branching off
// mid-history into a fresh random pick, which gives "next" and "previous"
// browser-history semantics.
//
// A limit > 0 bounds retention: the oldest entries are dropped once the
// record grows past the limit. 0 keeps the full record for the process
// lifetime.
type History struct {
	entries []string
	cursor  int
	limit   int
}

func NewHistory(limit int) *History {
	return &History{cursor: -1, limit: limit}
}

func (h *History) Len() int {
	return len(h.entries)
}

func (h *History) Cursor() int {
	return h.cursor
}

// Entries returns a copy of the record, oldest first.
func (h *History) Entries() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// Current returns the entry under the cursor, or "" when nothing has been
// shown yet. A cursor stranded past the tail by removals is pulled back in.
func (h *History) Current() string {
	if h.cursor < 0 || len(h.entries) == 0 {
		return ""
	}
	for h.cursor >= len(h.entries) {
		h.cursor--
	}
	return h.entries[h.cursor]
}

func (h *History) AtTail() bool {
	return h.cursor >= len(h.entries)-1
}

// PeekNext returns the forward entry without moving the cursor. ok is false
// at the tail, where a forward step means picking a new image.
func (h *History) PeekNext() (string, bool) {
	if h.AtTail() {
		return "", false
	}
	return h.entries[h.cursor+1], true
}

// PeekPrev returns the entry immediately before the cursor, or ok=false at
// the head.
func (h *History) PeekPrev() (string, bool) {
	if h.cursor <= 0 {
		return "", false
	}
	return h.entries[h.cursor-1], true
}

// Append records a newly shown image at the tail and moves the cursor onto
// it. Any earlier occurrence of the same path is removed first so the record
// never holds duplicates.
func (h *History) Append(path string) {
	h.Remove(path)
	h.entries = append(h.entries, path)
	h.cursor = len(h.entries) - 1
	h.trim()
}

// TruncateForward discards every entry beyond the cursor. Used when a fresh
// random pick abandons the previously visited forward branch.
func (h *History) TruncateForward() {
	if h.cursor < 0 {
		h.entries = h.entries[:0]
		return
	}
	if h.cursor < len(h.entries)-1 {
		h.entries = h.entries[:h.cursor+1]
	}
}

// Advance moves the cursor forward one entry. It reports false at the tail.
func (h *History) Advance() bool {
	if h.AtTail() {
		return false
	}
	h.cursor++
	return true
}

// Retreat moves the cursor back one entry. It reports false at the head.
func (h *History) Retreat() bool {
	if h.cursor <= 0 {
		return false
	}
	h.cursor--
	return true
}

// Remove purges every occurrence of path, keeping the cursor on the same
// logical entry.
func (h *History) Remove(path string) {
	for i := 0; i < len(h.entries); {
		if h.entries[i] != path {
			i++
			continue
		}
		h.entries = append(h.entries[:i], h.entries[i+1:]...)
		if i < h.cursor {
			h.cursor--
		} else if h.cursor >= len(h.entries) {
			h.cursor = len(h.entries) - 1
		}
	}
}

// RecentContains reports whether path appears within the last window entries
// (case-insensitive), scanning back from the tail.
func (h *History) RecentContains(path string, window int) bool {
	lower := strings.ToLower(path)
	checked := 0
	for i := len(h.entries) - 1; i >= 0 && checked <= window; i-- {
		if strings.ToLower(h.entries[i]) == lower {
			return true
		}
		checked++
	}
	return false
}

// Clone returns an independent copy, used to hand a stable snapshot of the
// record to the background pre-renderer.
func (h *History) Clone() *History {
	return &History{entries: h.Entries(), cursor: h.cursor, limit: h.limit}
}

func (h *History) trim() {
	if h.limit <= 0 || len(h.entries) <= h.limit {
		return
	}
	drop := len(h.entries) - h.limit
	h.entries = append(h.entries[:0], h.entries[drop:]...)
	h.cursor -= drop
	if h.cursor < 0 {
		h.cursor = 0
	}
}
