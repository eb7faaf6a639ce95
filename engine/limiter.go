package granular

import "math"

// limiter is the 2x true-peak look-ahead limiter of spec.md §4.8.
type limiter struct {
	bufL, bufR []float32
	lookahead  int
	writeIdx   int

	env         float32
	releaseCoef float32
	ceiling     float32
	masterTrim  float32
	sr          float64
	releaseMS   float32

	resized bool // one-shot RingResize telemetry latch, per spec.md §7
}

func newLimiter(cfg LimiterConfig, sr float64) *limiter {
	la := int(math.Round(float64(cfg.LookaheadMS) * sr / 1000))
	if la < 1 {
		la = 1
	}
	size := la + cfg.Extra
	lim := &limiter{
		bufL:       make([]float32, size),
		bufR:       make([]float32, size),
		lookahead:  la,
		env:        1,
		ceiling:    cfg.Ceiling,
		masterTrim: cfg.MasterTrim,
		sr:         sr,
		releaseMS:  cfg.ReleaseMS,
	}
	lim.releaseCoef = releaseCoefFor(sr, cfg.ReleaseMS)
	return lim
}

func releaseCoefFor(sr float64, releaseMS float32) float32 {
	releaseS := float64(releaseMS) / 1000
	if releaseS <= 0 {
		return 0
	}
	return float32(math.Exp(-1 / (sr * releaseS)))
}

// ensureCapacity grows the ring to accommodate an N-frame block, per
// spec.md §4.8's ring-resize rule: grow to max(needed, 2*old), preserving
// the most recent content before the write pointer.
func (lim *limiter) ensureCapacity(n int) {
	needed := lim.lookahead + n
	if needed <= len(lim.bufL) {
		return
	}
	newSize := needed
	if 2*len(lim.bufL) > newSize {
		newSize = 2 * len(lim.bufL)
	}
	newL := make([]float32, newSize)
	newR := make([]float32, newSize)
	// Preserve the most recent len(old) samples, most-recent-last, ending
	// at the current write position.
	old := len(lim.bufL)
	for i := 0; i < old; i++ {
		src := (lim.writeIdx + i) % old
		newL[i] = lim.bufL[src]
		newR[i] = lim.bufR[src]
	}
	lim.bufL = newL
	lim.bufR = newR
	lim.writeIdx = old % newSize
	lim.resized = true
}

//go:nosplit
func sanitizeSample(x float32) float32 {
	if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
		return 0
	}
	if x < 0 {
		if -x < 1e-24 {
			return 0
		}
	} else if x < 1e-24 {
		return 0
	}
	if x > 1e6 {
		return 1e6
	}
	if x < -1e6 {
		return -1e6
	}
	return x
}

// process runs the limiter over one block of interleaved-by-channel stereo
// input, writing the delayed, gain-reduced output into outL/outR (which may
// alias inL/inR) and returning true-peak-after-gain (dBFS) and gain
// reduction (dB, <= 0) telemetry, per spec.md §4.8.
func (lim *limiter) process(inL, inR, outL, outR []float32) (tpDB, grDB float32) {
	n := len(inL)
	lim.ensureCapacity(n)
	ringLen := len(lim.bufL)

	var blockPeak float32
	prevL, prevR := float32(0), float32(0)
	haveAtLeastTwo := false

	for i := 0; i < n; i++ {
		l := sanitizeSample(inL[i]) * lim.masterTrim
		r := sanitizeSample(inR[i]) * lim.masterTrim

		if haveAtLeastTwo || i > 0 {
			mid := 0.5 * (prevL + l)
			if a := absF32(mid); a > blockPeak {
				blockPeak = a
			}
			midR := 0.5 * (prevR + r)
			if a := absF32(midR); a > blockPeak {
				blockPeak = a
			}
		}
		if a := absF32(l); a > blockPeak {
			blockPeak = a
		}
		if a := absF32(r); a > blockPeak {
			blockPeak = a
		}
		prevL, prevR = l, r
		haveAtLeastTwo = true

		lim.bufL[lim.writeIdx] = l
		lim.bufR[lim.writeIdx] = r

		readIdx := (lim.writeIdx - lim.lookahead + ringLen) % ringLen
		outL[i] = lim.bufL[readIdx] * lim.env
		outR[i] = lim.bufR[readIdx] * lim.env

		lim.writeIdx = (lim.writeIdx + 1) % ringLen
	}

	needed := float32(1)
	if blockPeak > 1e-9 {
		needed = lim.ceiling / blockPeak
		if needed > 1 {
			needed = 1
		}
	}
	if needed < lim.env {
		lim.env = needed
	} else {
		lim.env = 1 - (1-lim.env)*lim.releaseCoef
	}

	tp := blockPeak * lim.env
	tpDB = dbFS(tp)
	grDB = float32(20 * math.Log10(float64(lim.env)))
	if lim.env > 1 {
		grDB = 0
	}
	return tpDB, grDB
}

//go:nosplit
func absF32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

//go:nosplit
func dbFS(x float32) float32 {
	if x <= 1e-9 {
		return -200
	}
	return float32(20 * math.Log10(float64(x)))
}
