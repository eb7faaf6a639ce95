package granular

import (
	"math"
	"sync/atomic"
)

// Per-cursor parameter field indices, per spec.md §3's parameter table.
const (
	pAttack = iota
	pRelease
	pGrainSize
	pDensity
	pSpread
	pPan
	pPitch
	pCutoff
	pQ
	pDrive
	pSlope
	pLFOFreq
	pLFODepth
	pScanSpeed
	pGain
	numParams
)

// CursorParams is the validated, control-thread-facing view of one cursor's
// parameters, per spec.md §3.
type CursorParams struct {
	Attack, Release float32
	GrainSize       float32
	Density         float32
	Spread          float32
	Pan             float32
	Pitch           float32
	Cutoff          float32
	Q               float32
	Drive           float32
	Slope           int // 12 or 24
	LFOFreq         float32
	LFODepth        float32
	ScanSpeed       float32
	Gain            float32
}

// DefaultCursorParams returns a sane, audible starting point.
func DefaultCursorParams() CursorParams {
	return CursorParams{
		Attack: 0.02, Release: 0.02, GrainSize: 1, Density: 10,
		Spread: 0, Pan: 0, Pitch: 1, Cutoff: 8000, Q: 0.3, Drive: 0,
		Slope: 12, LFOFreq: 0, LFODepth: 0, ScanSpeed: 0, Gain: 1,
	}
}

func (p CursorParams) toArray() [numParams]float32 {
	return [numParams]float32{
		pAttack: p.Attack, pRelease: p.Release, pGrainSize: p.GrainSize,
		pDensity: p.Density, pSpread: p.Spread, pPan: p.Pan, pPitch: p.Pitch,
		pCutoff: p.Cutoff, pQ: p.Q, pDrive: p.Drive, pSlope: float32(p.Slope),
		pLFOFreq: p.LFOFreq, pLFODepth: p.LFODepth, pScanSpeed: p.ScanSpeed,
		pGain: p.Gain,
	}
}

// paramPlane is the shared array of 3·K floats from spec.md §5: the control
// thread writes fields individually via atomic stores, the audio thread
// takes a per-field snapshot at block start and validates each field for
// finiteness, substituting the last good value otherwise. Per-field
// atomicity (not whole-record atomicity) is all the contract requires.
type paramPlane struct {
	cells    [3][numParams]atomic.Uint32
	lastGood [3][numParams]float32
}

func newParamPlane() *paramPlane {
	pp := &paramPlane{}
	for c := 0; c < 3; c++ {
		pp.setCursor(c, DefaultCursorParams())
	}
	return pp
}

func (pp *paramPlane) setCursor(cursor int, params CursorParams) {
	arr := params.toArray()
	for i, v := range arr {
		pp.cells[cursor][i].Store(math.Float32bits(v))
		pp.lastGood[cursor][i] = v
	}
}

func (pp *paramPlane) setField(cursor, field int, v float32) {
	pp.cells[cursor][field].Store(math.Float32bits(v))
}

// snapshot takes a per-field read for one cursor, substituting the last
// known-good value for any non-finite field (NaN/Inf), per spec.md §4.10
// ("invalid parameter (fall back to last known valid snapshot field)").
func (pp *paramPlane) snapshot(cursor int) CursorParams {
	var arr [numParams]float32
	for i := 0; i < numParams; i++ {
		bits := pp.cells[cursor][i].Load()
		v := math.Float32frombits(bits)
		if isFiniteF32(v) {
			arr[i] = v
			pp.lastGood[cursor][i] = v
		} else {
			arr[i] = pp.lastGood[cursor][i]
		}
	}
	return CursorParams{
		Attack: arr[pAttack], Release: arr[pRelease], GrainSize: arr[pGrainSize],
		Density: arr[pDensity], Spread: arr[pSpread], Pan: arr[pPan], Pitch: arr[pPitch],
		Cutoff: arr[pCutoff], Q: arr[pQ], Drive: arr[pDrive], Slope: int(arr[pSlope]),
		LFOFreq: arr[pLFOFreq], LFODepth: arr[pLFODepth], ScanSpeed: arr[pScanSpeed],
		Gain: arr[pGain],
	}
}

//go:nosplit
func isFiniteF32(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}
