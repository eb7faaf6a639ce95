package granular

import "math"

// LoudnessMap is a per-window RMS summary of the source's channel 0, used by
// the grain spawner for gain compensation, per spec.md §3/§4.5.
type LoudnessMap struct {
	RMS []float32
	Win int
	SR  float64
}

// ComputeLoudnessMap builds a LoudnessMap from source channel 0 using
// non-overlapping windows of winFrames. winFrames must be > 0.
func ComputeLoudnessMap(src *SourceBuffer, winFrames int) *LoudnessMap {
	if src == nil || src.Frames == 0 || winFrames <= 0 {
		return nil
	}
	numWindows := (src.Frames + winFrames - 1) / winFrames
	rms := make([]float32, numWindows)
	for w := 0; w < numWindows; w++ {
		start := w * winFrames
		end := start + winFrames
		if end > src.Frames {
			end = src.Frames
		}
		var sumSq float64
		for i := start; i < end; i++ {
			v := float64(src.L[i])
			sumSq += v * v
		}
		n := end - start
		if n > 0 {
			rms[w] = float32(math.Sqrt(sumSq / float64(n)))
		}
	}
	return &LoudnessMap{RMS: rms, Win: winFrames, SR: src.SampleRate}
}

// rmsAt returns the RMS value for source-seconds position t, or 0 if the map
// is absent or empty. Positions outside the map use the first or last
// window. Invariant: result >= 0.
//
//go:nosplit
func (m *LoudnessMap) rmsAt(t float64) float32 {
	if m == nil || len(m.RMS) == 0 || m.SR <= 0 || m.Win <= 0 {
		return 0
	}
	frame := int(t * m.SR)
	idx := frame / m.Win
	if idx < 0 {
		idx = 0
	}
	if idx >= len(m.RMS) {
		idx = len(m.RMS) - 1
	}
	return m.RMS[idx]
}
