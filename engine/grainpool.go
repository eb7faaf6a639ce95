package granular

// grainPool is a struct-of-arrays pool of up to capacity active grains, with
// O(1) alloc/free via swap-remove, per spec.md §3/§4.5/§4.6/§9.
type grainPool struct {
	cursorID []uint8
	phase    []float64
	inc      []float32
	envPos   []uint32
	envLen   []uint32
	panL     []float32
	panR     []float32
	gainComp []float32

	n   int // number of live grains
	cap int
}

func newGrainPool(capacity int) *grainPool {
	return &grainPool{
		cursorID: make([]uint8, capacity),
		phase:    make([]float64, capacity),
		inc:      make([]float32, capacity),
		envPos:   make([]uint32, capacity),
		envLen:   make([]uint32, capacity),
		panL:     make([]float32, capacity),
		panR:     make([]float32, capacity),
		gainComp: make([]float32, capacity),
		cap:      capacity,
	}
}

func (p *grainPool) len() int { return p.n }

func (p *grainPool) full() bool { return p.n >= p.cap }

// alloc appends a new grain and returns false (dropping it silently) if the
// pool is full, per spec.md §4.5.
func (p *grainPool) alloc(cursorID uint8, phase float64, inc float32, envLen uint32, panL, panR, gainComp float32) bool {
	if p.full() {
		return false
	}
	i := p.n
	p.cursorID[i] = cursorID
	p.phase[i] = phase
	p.inc[i] = inc
	p.envPos[i] = 0
	p.envLen[i] = envLen
	p.panL[i] = panL
	p.panR[i] = panR
	p.gainComp[i] = gainComp
	p.n++
	return true
}

// swapRemove deletes grain i in O(1) by moving the last live grain into its
// slot, per spec.md §9 ("swap-remove preserves O(1) deletion").
func (p *grainPool) swapRemove(i int) {
	last := p.n - 1
	if i != last {
		p.cursorID[i] = p.cursorID[last]
		p.phase[i] = p.phase[last]
		p.inc[i] = p.inc[last]
		p.envPos[i] = p.envPos[last]
		p.envLen[i] = p.envLen[last]
		p.panL[i] = p.panL[last]
		p.panR[i] = p.panR[last]
		p.gainComp[i] = p.gainComp[last]
	}
	p.n--
}
