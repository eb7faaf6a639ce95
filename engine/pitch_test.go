package granular

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"
)

// fft computes the radix-2 Cooley-Tukey DFT of x in place. len(x) must be a
// power of two. No pack example exposes a plain public FFT (gopus/celt's
// kissfft is private to its codec package), so this is a small stdlib
// math/cmplx implementation used only by this spectral test, not the
// realtime core.
func fft(x []complex128) {
	n := len(x)
	if n <= 1 {
		return
	}
	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = x[2*i]
		odd[i] = x[2*i+1]
	}
	fft(even)
	fft(odd)
	for k := 0; k < n/2; k++ {
		t := cmplx.Rect(1, -2*math.Pi*float64(k)/float64(n)) * odd[k]
		x[k] = even[k] + t
		x[k+n/2] = even[k] - t
	}
}

// TestPitchExactness is spec.md §8's seed scenario 3: a pitch=2 cursor
// reading a 1 kHz source should show its spectral peak at 2 kHz, within one
// FFT bin at a 4096-point transform.
func TestPitchExactness(t *testing.T) {
	const sr = 48000
	eng, err := NewEngine(Config{SR: sr, MaxGrains: 512})
	require.NoError(t, err)

	src := &SourceBuffer{
		Channels:   2,
		Frames:     sr,
		SampleRate: sr,
		L:          make([]float32, sr),
		R:          make([]float32, sr),
	}
	for i := 0; i < sr; i++ {
		s := float32(math.Sin(2 * math.Pi * 1000 * float64(i) / sr))
		src.L[i] = s
		src.R[i] = s
	}
	eng.PushMessage(Message{Type: MsgSetBuffer, Buffer: src})

	params := DefaultCursorParams()
	params.Pitch = 2
	params.Density = 20
	params.GrainSize = 2
	eng.PushMessage(Message{Type: MsgSetParamsFor, Cursor: 0, Params: params})

	silent := DefaultCursorParams()
	silent.Gain = 0
	silent.Density = 0
	eng.PushMessage(Message{Type: MsgSetParamsFor, Cursor: 1, Params: silent})
	eng.PushMessage(Message{Type: MsgSetParamsFor, Cursor: 2, Params: silent})

	eng.PushMessage(Message{Type: MsgSetPositions, Positions: []float32{0, 0, 0}})
	eng.PushMessage(Message{Type: MsgSetPlaying, Playing: true})

	const blockFrames = 128
	const renderSeconds = 2
	const totalFrames = renderSeconds * sr

	var tail []float32
	for rendered := 0; rendered < totalFrames; rendered += blockFrames {
		l, _ := eng.Process(blockFrames)
		tail = append(tail, l...)
		if len(tail) > 4096 {
			tail = tail[len(tail)-4096:]
		}
	}
	require.Len(t, tail, 4096)

	bins := make([]complex128, 4096)
	for i, v := range tail {
		bins[i] = complex(float64(v), 0)
	}
	fft(bins)

	peakBin, peakMag := 1, 0.0
	for i := 1; i < len(bins)/2; i++ {
		mag := cmplx.Abs(bins[i])
		if mag > peakMag {
			peakMag = mag
			peakBin = i
		}
	}

	expectedBin := int(math.Round(2000 * 4096 / float64(sr)))
	diff := peakBin - expectedBin
	if diff < 0 {
		diff = -diff
	}
	require.LessOrEqualf(t, diff, 1, "expected spectral peak near bin %d (2kHz), got bin %d", expectedBin, peakBin)
}
