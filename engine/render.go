package granular

// renderGrainFrames renders one grain's samples for output frames
// [start,end) of the current block into busL/busR, per spec.md §4.6.
// Rendering stops early if the grain's envelope completes before end.
// Returns the grain's updated phase and env_pos.
func (e *Engine) renderGrainFrames(buf *SourceBuffer, phase float64, inc float32, envPos, envLen uint32, panL, panR, gComp, cursorGain float32, busL, busR []float32, start, end int) (float64, uint32) {
	for i := start; i < end && envPos < envLen; i++ {
		env := hannEnvelope(envPos, envLen)
		var sL, sR float32
		if buf != nil {
			sL = buf.sampleAt(0, phase)
			sR = buf.sampleAt(1, phase)
		}
		amp := env * gComp * cursorGain
		busL[i] += sL * amp * panL
		busR[i] += sR * amp * panR
		phase += float64(inc)
		envPos++
	}
	return phase, envPos
}

// renderPool advances every live grain by up to n frames into its owning
// cursor's bus, deleting completed grains via swap-remove, per spec.md
// §4.6. liveCount[c] accumulates the number of grains still alive per
// cursor after this call, used to clear soft-kill latches.
func (e *Engine) renderPool(buf *SourceBuffer, n int, bus [3]float32Pair, liveCount *[3]int) {
	p := e.pool
	i := 0
	for i < p.n {
		ci := p.cursorID[i]
		gain := e.cursors[ci].gainSmooth
		newPhase, newEnvPos := e.renderGrainFrames(buf, p.phase[i], p.inc[i], p.envPos[i], p.envLen[i],
			p.panL[i], p.panR[i], p.gainComp[i], gain, bus[ci].L, bus[ci].R, 0, n)
		p.phase[i] = newPhase
		p.envPos[i] = newEnvPos

		if newEnvPos >= p.envLen[i] {
			p.swapRemove(i)
			continue
		}
		liveCount[ci]++
		i++
	}
}

// float32Pair is a stereo pair of per-cursor bus scratch slices.
type float32Pair struct {
	L, R []float32
}
