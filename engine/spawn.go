package granular

import "math"

const (
	spawnGammaCompensation = 0.6
	spawnGainTarget        = 0.12
	spawnGainEpsilon       = 1e-4
	minGrainDurSec         = 0.002
)

// spawnGrain implements the grain-spawn procedure of spec.md §4.5. instant
// is the frame offset within the current block at which the grain's first
// audible sample lands; the grain is rendered from instant through the end
// of the block inline (renderGrainFrames) and, if it survives past the end
// of the block, its advanced state is appended to the pool for continued
// rendering on subsequent blocks. sr_out is cfg.SR; n is the block length.
func (e *Engine) spawnGrain(cursorIdx int, snap CursorParams, buf *SourceBuffer, loudness *LoudnessMap, instant int, n int, busL, busR []float32) {
	dur := (float64(snap.Attack) + float64(snap.Release)) * float64(snap.GrainSize)
	if dur < minGrainDurSec {
		dur = minGrainDurSec
	}
	envLen := uint32(math.Round(dur * e.cfg.SR))
	if envLen < 1 {
		envLen = 1
	}

	var srcDuration, srSrc float64
	if buf != nil {
		srcDuration = buf.DurationSeconds()
		srSrc = buf.SampleRate
	}
	jitter := 0.0
	spread := float64(snap.Spread)
	if spread > 0 {
		jitter = (e.nextUniform()*2 - 1) * spread
	}
	t0 := float64(e.cursors[cursorIdx].position)*srcDuration + jitter
	maxStart := srcDuration - dur
	if maxStart < 0 {
		maxStart = 0
	}
	if t0 < 0 {
		t0 = 0
	} else if t0 > maxStart {
		t0 = maxStart
	}

	semis := e.cursors[cursorIdx].notes.next()
	srOut := e.cfg.SR
	ratio := 1.0
	if srOut > 0 {
		ratio = srSrc / srOut
	}
	inc := float32(float64(snap.Pitch) * math.Pow(2, float64(semis)/12) * ratio)
	if inc <= 0 {
		inc = 1e-6
	}

	panL, panR := equalPowerPan(snap.Pan)

	gComp := float32(1)
	if loudness != nil {
		rms := loudness.rmsAt(t0)
		if rms < spawnGainEpsilon {
			rms = spawnGainEpsilon
		}
		gComp = float32(math.Pow(spawnGainTarget/float64(rms), spawnGammaCompensation))
	}

	if e.pool.full() {
		e.statsDroppedGrains.Add(1)
		return
	}

	phase := t0 * srSrc // source-frame position
	var envPos uint32

	if instant < n {
		phase, envPos = e.renderGrainFrames(buf, phase, inc, 0, envLen, panL, panR, gComp,
			e.cursors[cursorIdx].gainSmooth, busL, busR, instant, n)
	}
	if envPos >= envLen {
		return
	}
	e.pool.alloc(uint8(cursorIdx), phase, inc, envLen, panL, panR, gComp)
	e.pool.envPos[e.pool.n-1] = envPos
}
