package granular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestEqualPowerPanLaw(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := rapid.Float32Range(-1, 1).Draw(t, "pan")
		l, r := equalPowerPan(p)
		assert.InDeltaf(t, 1, float64(l*l+r*r), 1e-4, "L^2+R^2 should be ~1 for pan=%v", p)
	})
}

func TestEqualPowerPanCenter(t *testing.T) {
	l, r := equalPowerPan(0)
	want := float32(0.70710678) // sqrt(1/2)
	assert.InDelta(t, want, l, 1e-4)
	assert.InDelta(t, want, r, 1e-4)
}

func TestEqualPowerPanClamps(t *testing.T) {
	lLow, rLow := equalPowerPan(-5)
	lClamped, rClamped := equalPowerPan(-1)
	assert.Equal(t, lClamped, lLow)
	assert.Equal(t, rClamped, rLow)

	lHigh, rHigh := equalPowerPan(5)
	lClampedHi, rClampedHi := equalPowerPan(1)
	assert.Equal(t, lClampedHi, lHigh)
	assert.Equal(t, rClampedHi, rHigh)
}
