package granular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSilenceWithNoBuffer is spec.md §8's seed scenario 1.
func TestSilenceWithNoBuffer(t *testing.T) {
	eng, err := NewEngine(Config{SR: 48000})
	require.NoError(t, err)

	eng.PushMessage(Message{Type: MsgSetPlaying, Playing: true})

	var total int
	for i := 0; i < 10; i++ {
		l, r := eng.Process(128)
		total += len(l) + len(r)
		for _, v := range l {
			assert.Equal(t, float32(0), v)
		}
		for _, v := range r {
			assert.Equal(t, float32(0), v)
		}
	}
	assert.Equal(t, 2560, total)
}

// TestSingleImpulseOneGrain approximates spec.md §8's seed scenario 2 with
// an impulse source and one active cursor: it checks only that about one
// second of rendering produces at least one non-zero left-channel sample.
// It does not compare the output level against a Hann-windowed,
// pan-scaled impulse response.
func TestSingleImpulseOneGrain(t *testing.T) {
	eng, err := NewEngine(Config{SR: 48000, MaxGrains: 8})
	require.NoError(t, err)

	src := &SourceBuffer{
		Channels:   2,
		Frames:     48000,
		SampleRate: 48000,
		L:          make([]float32, 48000),
		R:          make([]float32, 48000),
	}
	src.L[0] = 1.0
	src.R[0] = 1.0

	eng.PushMessage(Message{Type: MsgSetBuffer, Buffer: src})

	params := DefaultCursorParams()
	params.Density = 1
	params.Attack, params.Release = 0.05, 0.05
	params.GrainSize = 1
	params.Pitch = 1
	params.Pan = 0
	params.Gain = 1
	eng.PushMessage(Message{Type: MsgSetParamsFor, Cursor: 0, Params: params})

	silentParams := DefaultCursorParams()
	silentParams.Gain = 0
	silentParams.Density = 0
	eng.PushMessage(Message{Type: MsgSetParamsFor, Cursor: 1, Params: silentParams})
	eng.PushMessage(Message{Type: MsgSetParamsFor, Cursor: 2, Params: silentParams})

	eng.PushMessage(Message{Type: MsgSetPositions, Positions: []float32{0, 0, 0}})
	eng.PushMessage(Message{Type: MsgSetPlaying, Playing: true})

	var sawNonZero bool
	for i := 0; i < 376; i++ { // ~1 second at 128 frames/block
		l, _ := eng.Process(128)
		for _, v := range l {
			if v != 0 {
				sawNonZero = true
			}
		}
	}
	assert.True(t, sawNonZero, "expected at least one non-zero rendered sample from the spawned grain")
}

// TestPolyphonicRoundRobin is spec.md §8's seed scenario 5, verified at the
// heldNotes level (Engine doesn't expose per-grain note history, so the
// round-robin contract is checked on the primitive it relies on).
func TestPolyphonicRoundRobin(t *testing.T) {
	var h heldNotes
	h.add(0)
	h.add(7)
	h.add(12)

	counts := map[int8]int{}
	const draws = 300
	for i := 0; i < draws; i++ {
		counts[h.next()]++
	}
	min, max := draws, 0
	for _, c := range counts {
		if c < min {
			min = c
		}
		if c > max {
			max = c
		}
	}
	assert.LessOrEqual(t, max-min, 1, "round-robin draws should be within 1 of each other")
}

// TestSoftKillDrainsGrains is spec.md §8's seed scenario 6.
func TestSoftKillDrainsGrains(t *testing.T) {
	eng, err := NewEngine(Config{SR: 48000, MaxGrains: 256, KillTailMS: 28})
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		eng.pool.alloc(1, 0, 1, uint32(0.5*48000), 0.7, 0.7, 1)
	}
	require.Equal(t, 100, eng.pool.len())

	eng.killCursorGrains(1)

	tailFrames := uint32(0.028 * 48000)
	for i := 0; i < eng.pool.len(); i++ {
		assert.LessOrEqual(t, eng.pool.envLen[i], tailFrames+1)
	}

	eng.growScratch(128)
	framesToDrain := int(tailFrames) + 256
	for eng.pool.len() > 0 && framesToDrain > 0 {
		var lc [3]int
		eng.renderPool(nil, 128, eng.bus, &lc)
		framesToDrain -= 128
	}
	assert.Equal(t, 0, eng.pool.len(), "all cursor-1 grains should have drained within the kill tail")
}
