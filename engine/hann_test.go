package granular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestHannEnvelopeEndpoints(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		envLen := rapid.Uint32Range(2, 1<<16).Draw(t, "envLen")

		start := hannEnvelope(0, envLen)
		end := hannEnvelope(envLen-1, envLen)

		assert.InDeltaf(t, 0, start, 1e-4, "envelope should be ~0 at p=0 for envLen=%d", envLen)
		assert.InDeltaf(t, 0, end, 1e-4, "envelope should be ~0 at p=envLen-1 for envLen=%d", envLen)
	})
}

func TestHannEnvelopeSymmetric(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		envLen := rapid.Uint32Range(4, 1<<12).Draw(t, "envLen")
		offset := rapid.Uint32Range(0, envLen/2).Draw(t, "offset")

		left := hannEnvelope(offset, envLen)
		right := hannEnvelope(envLen-1-offset, envLen)

		assert.InDeltaf(t, left, right, 1e-3, "envelope should be symmetric around the midpoint")
	})
}

func TestHannEnvelopeTrivialForShortGrains(t *testing.T) {
	assert.Equal(t, float32(1), hannEnvelope(0, 0))
	assert.Equal(t, float32(1), hannEnvelope(0, 1))
}

func TestHannEnvelopeBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		envLen := rapid.Uint32Range(1, 1<<12).Draw(t, "envLen")
		p := rapid.Uint32Range(0, envLen).Draw(t, "p")

		v := hannEnvelope(p, envLen)
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1.0001))
	})
}
