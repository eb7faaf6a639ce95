package granular

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrainPoolAllocAndSwapRemove(t *testing.T) {
	p := newGrainPool(4)

	assert.True(t, p.alloc(0, 0, 1, 100, 0.7, 0.7, 1))
	assert.True(t, p.alloc(1, 0, 1, 100, 0.7, 0.7, 1))
	assert.True(t, p.alloc(2, 0, 1, 100, 0.7, 0.7, 1))
	assert.Equal(t, 3, p.len())

	// Remove the middle grain (index 1); the last grain (index 2) should
	// move into its place.
	lastCursor := p.cursorID[2]
	p.swapRemove(1)

	assert.Equal(t, 2, p.len())
	assert.Equal(t, lastCursor, p.cursorID[1])
}

func TestGrainPoolDropsWhenFull(t *testing.T) {
	p := newGrainPool(2)
	assert.True(t, p.alloc(0, 0, 1, 10, 0, 1, 1))
	assert.True(t, p.alloc(0, 0, 1, 10, 0, 1, 1))
	assert.True(t, p.full())
	assert.False(t, p.alloc(0, 0, 1, 10, 0, 1, 1), "alloc on a full pool must fail silently, not panic")
	assert.Equal(t, 2, p.len())
}

func TestGrainPoolSwapRemoveLastElement(t *testing.T) {
	p := newGrainPool(4)
	p.alloc(0, 0, 1, 10, 0, 1, 1)
	p.alloc(1, 0, 1, 10, 0, 1, 1)
	p.swapRemove(1) // removing the last element should just shrink n
	assert.Equal(t, 1, p.len())
	assert.Equal(t, uint8(0), p.cursorID[0])
}
