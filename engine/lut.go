package granular

import "math"

// Lookup table sizes, sized for how this engine actually calls them rather
// than carried over from an audio-rate oscillator's needs: fastSin/fastCos
// run at most a handful of times per block (once per cursor's LFO, once per
// grain spawn for panning), never once per sample, so a smaller table still
// gives inaudible interpolation error at a quarter of the teacher's memory
// footprint. fastTanh, by contrast, sits in the per-sample filter drive path
// with drive up to 10x (mapDrive's [1,10] range) applied to a bus signal
// that can itself exceed unity with several overlapping grains, so its
// domain is widened past the teacher's ±4 to ±10 (tanh is already
// indistinguishable from its asymptote by 10, so nothing is lost at the
// edges) and its table doubled to keep the per-step error the same despite
// the wider span.
const (
	sinLUTSize  = 2048
	sinLUTMask  = sinLUTSize - 1
	tanhLUTSize = 8192
	tanhLUTMin  = float32(-10.0)
	tanhLUTMax  = float32(10.0)

	hannLUTSize = 1024 // spec.md §4.1 default T
)

const (
	sinLUTScale  = float32(sinLUTSize) / (2 * math.Pi)
	tanhLUTScale = float32(tanhLUTSize-1) / (tanhLUTMax - tanhLUTMin)
)

var sinLUT [sinLUTSize]float32
var tanhLUT [tanhLUTSize]float32

func init() {
	for i := 0; i < sinLUTSize; i++ {
		phase := float64(i) * 2 * math.Pi / float64(sinLUTSize)
		sinLUT[i] = float32(math.Sin(phase))
	}
	for i := 0; i < tanhLUTSize; i++ {
		x := float64(tanhLUTMin) + float64(i)*float64(tanhLUTMax-tanhLUTMin)/float64(tanhLUTSize-1)
		tanhLUT[i] = float32(math.Tanh(x))
	}
}

// fastSin returns sin(phase) via lookup + linear interpolation. phase is in
// radians and may be any finite value; it is wrapped into [0, 2π).
//
//go:nosplit
func fastSin(phase float32) float32 {
	if phase < 0 || phase >= TwoPi {
		phase = float32(math.Mod(float64(phase), float64(TwoPi)))
		if phase < 0 {
			phase += TwoPi
		}
	}
	indexF := phase * sinLUTScale
	index := int(indexF)
	frac := indexF - float32(index)
	index &= sinLUTMask
	nextIndex := (index + 1) & sinLUTMask
	return sinLUT[index] + frac*(sinLUT[nextIndex]-sinLUT[index])
}

// fastCos returns cos(phase) by a quarter-turn phase shift into fastSin.
//
//go:nosplit
func fastCos(phase float32) float32 {
	return fastSin(phase + math.Pi/2)
}

// fastTanh returns tanh(x) via lookup + linear interpolation, saturating
// outside [-10,10] where tanh is indistinguishable from ±1 in float32.
//
//go:nosplit
func fastTanh(x float32) float32 {
	if x <= tanhLUTMin {
		return -1.0
	}
	if x >= tanhLUTMax {
		return 1.0
	}
	indexF := (x - tanhLUTMin) * tanhLUTScale
	index := int(indexF)
	frac := indexF - float32(index)
	if index < 0 {
		return tanhLUT[0]
	}
	if index >= tanhLUTSize-1 {
		return tanhLUT[tanhLUTSize-1]
	}
	return tanhLUT[index] + frac*(tanhLUT[index+1]-tanhLUT[index])
}

// TwoPi is 2π as a float32, used throughout the engine's phase arithmetic.
const TwoPi = float32(2 * math.Pi)
