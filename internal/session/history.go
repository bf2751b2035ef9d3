package session

import "slices"

// DefaultHistoryCapacity is the number of generated bonus phrasings remembered per session.
const DefaultHistoryCapacity = 100

// History is a bounded FIFO set of strings. When full, the oldest entry is evicted.
// The zero value is usable and uses DefaultHistoryCapacity.
type History struct {
	Entries  []string `bson:"entries"`
	Capacity int      `bson:"capacity"`

	index map[string]struct{}
}

// NewHistory returns an empty history holding at most capacity entries.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{Capacity: capacity}
}

func (h *History) capacity() int {
	if h.Capacity <= 0 {
		return DefaultHistoryCapacity
	}
	return h.Capacity
}

// ensureIndex rebuilds the lookup set, e.g. after the entries were decoded from storage.
func (h *History) ensureIndex() {
	if h.index != nil && len(h.index) == len(h.Entries) {
		return
	}
	h.index = make(map[string]struct{}, len(h.Entries))
	for _, e := range h.Entries {
		h.index[e] = struct{}{}
	}
}

// Contains reports whether s was added and not yet evicted.
func (h *History) Contains(s string) bool {
	h.ensureIndex()
	_, ok := h.index[s]
	return ok
}

// Add remembers s. Adding an entry that is already present is a no-op.
func (h *History) Add(s string) {
	h.ensureIndex()
	if _, ok := h.index[s]; ok {
		return
	}
	h.Entries = append(h.Entries, s)
	h.index[s] = struct{}{}
	for len(h.Entries) > h.capacity() {
		delete(h.index, h.Entries[0])
		h.Entries = h.Entries[1:]
	}
}

// Reset forgets every entry.
func (h *History) Reset() {
	h.Entries = nil
	h.index = nil
}

// Clone returns an independent copy of h.
func (h *History) Clone() *History {
	if h == nil {
		return nil
	}
	return &History{Entries: slices.Clone(h.Entries), Capacity: h.Capacity}
}

// Len returns the number of remembered entries.
func (h *History) Len() int {
	return len(h.Entries)
}
