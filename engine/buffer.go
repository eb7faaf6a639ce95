package granular

import "sync/atomic"

// SourceBuffer is an immutable (from the engine's point of view) stereo PCM
// buffer, per spec.md §3. Channels is 1 or 2; mono sources are read from
// channel 0 for both output channels.
type SourceBuffer struct {
	Channels   int
	Frames     int
	SampleRate float64
	L          []float32
	R          []float32 // aliases L when Channels==1
}

// DurationSeconds returns the buffer's playable length in seconds.
func (b *SourceBuffer) DurationSeconds() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames) / b.SampleRate
}

// sampleAt reads channel ch (0 or 1) at fractional frame position t with
// linear interpolation, wrapping on buffer length. Returns 0 for a nil or
// empty buffer.
//
//go:nosplit
func (b *SourceBuffer) sampleAt(ch int, t float64) float32 {
	if b == nil || b.Frames == 0 {
		return 0
	}
	data := b.L
	if ch == 1 && b.Channels == 2 {
		data = b.R
	}
	n := float64(b.Frames)
	if t < 0 {
		t += n * (float64(int(-t/n)) + 1)
	}
	i0 := int(t) % b.Frames
	frac := float32(t - float64(int(t)))
	i1 := i0 + 1
	if i1 >= b.Frames {
		i1 = 0
	}
	return data[i0] + frac*(data[i1]-data[i0])
}

// bufferSlot is the atomically-swapped buffer handle plus generation counter
// from spec.md §5 ("buffer swap slot"). The renderer reads the pointer once
// per block; it never observes a buffer mid-swap because the pointer swap
// itself is atomic and the generation counter is incremented after the
// pointer is published, giving readers a consistent (pointer, generation)
// pair for the whole block.
type bufferSlot struct {
	ptr atomic.Pointer[SourceBuffer]
	gen atomic.Uint64
}

func (s *bufferSlot) swap(buf *SourceBuffer) {
	s.ptr.Store(buf)
	s.gen.Add(1)
}

func (s *bufferSlot) load() (*SourceBuffer, uint64) {
	buf := s.ptr.Load()
	gen := s.gen.Load()
	return buf, gen
}
