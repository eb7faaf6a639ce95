package granular

import "math"

// backpressure returns the spawn-rate scaling factor b for n active grains
// against capacity M, per spec.md §4.4.
//
//go:nosplit
func backpressure(n, capacity int) float32 {
	if capacity <= 0 {
		return 0
	}
	frac := float32(n) / float32(capacity)
	switch {
	case frac < 0.5:
		return 1.0
	case frac < 0.7:
		return 0.65
	case frac < 0.85:
		return 0.4
	case frac < 0.95:
		return 0.2
	default:
		return 0.0
	}
}

// spawnCap returns S_max, per spec.md §4.4.
func spawnCap(sr float64) int {
	s := int(32 * sr / 48000)
	if s < 24 {
		s = 24
	}
	return s
}

// expDrawFrames draws D ~ Exp(sr/max(0.1, dEff)) in frames, rounded up to
// >= 1, per spec.md §4.4. u must be a uniform (0,1] draw; the caller
// supplies randomness so the scheduler itself never touches a global RNG
// from the audio thread.
//
//go:nosplit
func expDrawFrames(sr float64, dEff float32, u float64) float64 {
	rate := sr / math.Max(0.1, float64(dEff))
	if u <= 0 {
		u = 1e-9
	}
	d := -math.Log(u) * rate
	if d < 1 {
		d = 1
	}
	return math.Ceil(d)
}

// pollScheduler runs one cursor's Poisson scheduler over an N-frame block,
// per spec.md §4.4, appending spawn instants (frame offsets within the
// block, in generation order) to out and returning the number appended.
// out must have capacity >= sMax; the function never grows it.
func pollScheduler(c *cursor, density float32, activeGrains, maxGrains int, sr float64, n int, sMax int, nextUniform func() float64, out []uint32) int {
	if !c.schedulingActive() {
		c.countdown -= float64(n)
		if c.countdown < 0 {
			c.countdown = 0
		}
		return 0
	}

	b := backpressure(activeGrains, maxGrains)
	dEff := density * b

	if dEff <= 0 {
		c.countdown -= float64(n)
		if c.countdown < 0 {
			c.countdown = 0
		}
		return 0
	}

	if c.countdown <= 0 {
		c.countdown = expDrawFrames(sr, dEff, nextUniform())
	}

	// countdown is the frame offset, from this block's start, at which the
	// next spawn lands. Each spawn accumulates a fresh inter-arrival draw
	// onto countdown rather than resetting it, per spec.md §4.4 step 4.
	count := 0
	for c.countdown <= float64(n) && count < sMax && count < len(out) {
		instant := c.countdown
		if instant < 0 {
			instant = 0
		}
		if instant >= float64(n) {
			instant = float64(n - 1)
		}
		out[count] = uint32(instant)
		count++
		c.countdown += expDrawFrames(sr, dEff, nextUniform())
	}
	c.countdown -= float64(n)
	if c.countdown < 0 {
		c.countdown = 0
	}
	return count
}
