package granular

// cursorState is the playback state machine of spec.md §4.9.
type cursorState int

const (
	csIdle cursorState = iota
	csAutoPlaying
	csNoteHeld
	csSoftKilling
)

// cursor holds one playhead's transport position, modulation phase, and
// polyphony/kill bookkeeping, per spec.md §3.
type cursor struct {
	position float64 // [0,1), source-duration-relative
	lfoPhase float32 // radians

	countdown float64 // frames to next spawn (Poisson scheduler state, C4)

	notes heldNotes

	gainSmooth float32 // one-pole toward params.gain

	state        cursorState
	playingWanted bool // set by set_playing; latched independent of notes
	softKilling  bool
	killTail     uint32 // grain env truncation length, frames

	filter *filterChannel
}

func newCursor(sr float64, tauMS float32) *cursor {
	return &cursor{
		gainSmooth: 1,
		notes:      heldNotes{semis: make([]int8, 0, maxHeldNotes)},
		filter:     newFilterChannel(sr, tauMS),
	}
}

// setPlaying applies spec.md §4.9's setPlaying transition.
func (c *cursor) setPlaying(on bool) {
	c.playingWanted = on
	c.recomputeState()
}

func (c *cursor) noteOn(semi int8) {
	c.notes.add(semi)
	c.recomputeState()
}

func (c *cursor) noteOff(semi int8) {
	c.notes.remove(semi)
	c.recomputeState()
}

func (c *cursor) clearNotes() {
	c.notes.clear()
	c.recomputeState()
}

// requestKill enters SoftKilling; recomputeState will not leave it until
// the render step observes zero live grains for this cursor and calls
// clearSoftKill.
func (c *cursor) requestKill() {
	c.softKilling = true
	c.state = csSoftKilling
}

// clearSoftKill is called by the render step once no grains of this cursor
// remain, per spec.md §4.9 ("the kill flag is cleared once no grains of
// that cursor remain").
func (c *cursor) clearSoftKill() {
	if !c.softKilling {
		return
	}
	c.softKilling = false
	c.recomputeState()
}

func (c *cursor) recomputeState() {
	if c.softKilling {
		c.state = csSoftKilling
		return
	}
	switch {
	case !c.notes.empty():
		c.state = csNoteHeld
	case c.playingWanted:
		c.state = csAutoPlaying
	default:
		c.state = csIdle
	}
}

// schedulingActive reports whether the cursor's Poisson scheduler should
// run this block, per spec.md §4.9 ("active whenever AutoPlaying, NoteHeld,
// or both").
func (c *cursor) schedulingActive() bool {
	return c.playingWanted || !c.notes.empty()
}
