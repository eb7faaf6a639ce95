package granular

// maxHeldNotes bounds the held-note set per cursor, per spec.md §3
// ("finite, bounded by a small cap, e.g. 16").
const maxHeldNotes = 16

// heldNotes is the ordered multiset of held semitone offsets for one cursor,
// with round-robin consumption, per spec.md §4.5/§4.9. A semitone is stored
// at most once: adding a duplicate is a no-op, and removal deletes that
// single instance.
type heldNotes struct {
	semis []int8
	rr    int // round-robin index into semis
}

func (h *heldNotes) add(semi int8) {
	for _, s := range h.semis {
		if s == semi {
			return
		}
	}
	if len(h.semis) >= maxHeldNotes {
		return
	}
	h.semis = append(h.semis, semi)
}

// remove deletes one instance of semi, if present.
func (h *heldNotes) remove(semi int8) {
	for i, s := range h.semis {
		if s == semi {
			h.semis = append(h.semis[:i], h.semis[i+1:]...)
			if h.rr > i {
				h.rr--
			}
			if h.rr >= len(h.semis) {
				h.rr = 0
			}
			return
		}
	}
}

func (h *heldNotes) clear() {
	h.semis = h.semis[:0]
	h.rr = 0
}

func (h *heldNotes) empty() bool { return len(h.semis) == 0 }

// next returns the next round-robin semitone offset, or 0 if the set is
// empty, per spec.md §4.5.
func (h *heldNotes) next() int8 {
	if len(h.semis) == 0 {
		return 0
	}
	s := h.semis[h.rr]
	h.rr = (h.rr + 1) % len(h.semis)
	return s
}
