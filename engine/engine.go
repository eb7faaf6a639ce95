package granular

import (
	"math"
	"math/rand"
	"sync/atomic"
	"time"
)

// Engine is the realtime granular synthesis core of spec.md §2-§5: three
// cursors, a shared grain pool, per-cursor filters, and a master limiter,
// driven by Process on a single audio callback thread. All of Engine's
// state is sized at construction; Process never allocates on its steady
//-state path (the limiter ring may grow once if the block size increases,
// per spec.md §5, which is the one documented exception).
type Engine struct {
	cfg Config

	cursors [3]*cursor
	pool    *grainPool
	params  *paramPlane

	bufSlot  bufferSlot
	loudness atomic.Pointer[LoudnessMap]

	inbox  *inbox
	outbox *outbox

	limiter *limiter

	rng  *rand.Rand
	sMax int

	spawnBuf [3][]uint32
	bus      [3]float32Pair
	masterL  []float32
	masterR  []float32
	outL     []float32
	outR     []float32
	scratch  int

	statsDroppedGrains atomic.Uint64
}

// NewEngine constructs an Engine from cfg, applying documented defaults and
// refusing to start on the Fatal conditions of spec.md §4.10.
func NewEngine(cfg Config) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	setEnvTableSize(cfg.EnvTable)

	e := &Engine{
		cfg:    cfg,
		pool:   newGrainPool(cfg.MaxGrains),
		params: newParamPlane(),
		inbox:  &inbox{},
		outbox: newOutbox(cfg.SR),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	e.limiter = newLimiter(cfg.Limiter, cfg.SR)

	e.sMax = cfg.MaxSpawnBlock
	if e.sMax <= 0 {
		e.sMax = spawnCap(cfg.SR)
	}
	for i := range e.cursors {
		e.cursors[i] = newCursor(cfg.SR, cfg.FilterTauMS)
		e.spawnBuf[i] = make([]uint32, e.sMax)
	}
	return e, nil
}

func (e *Engine) nextUniform() float64 {
	return e.rng.Float64()
}

// PushMessage enqueues a control-thread message for application at the
// next block boundary, per spec.md §5. Returns false if the inbox is full.
func (e *Engine) PushMessage(m Message) bool {
	return e.inbox.push(m)
}

// DrainTelemetry delivers all pending outbox events to fn, in FIFO order.
func (e *Engine) DrainTelemetry(fn func(Telemetry)) {
	e.outbox.drain(fn)
}

// Stats reports the core's non-fatal error counters, per spec.md §7.
type Stats struct {
	DroppedGrains    uint64
	DroppedTelemetry uint64
	RingResized      bool
}

func (e *Engine) Stats() Stats {
	return Stats{
		DroppedGrains:    e.statsDroppedGrains.Load(),
		DroppedTelemetry: e.outbox.dropped.Load(),
		RingResized:      e.limiter.resized,
	}
}

func (e *Engine) growScratch(n int) {
	if n <= e.scratch {
		return
	}
	for i := range e.bus {
		e.bus[i].L = make([]float32, n)
		e.bus[i].R = make([]float32, n)
	}
	e.masterL = make([]float32, n)
	e.masterR = make([]float32, n)
	e.outL = make([]float32, n)
	e.outR = make([]float32, n)
	e.scratch = n
}

// Process renders n output frames, running the full data-flow pipeline of
// spec.md §2: inbox -> parameter snapshot -> cursor advance -> scheduler
// -> grain render -> per-cursor filter -> sum -> limiter -> output +
// telemetry. The returned slices are owned by the Engine and are valid
// until the next Process call.
func (e *Engine) Process(n int) (left, right []float32) {
	if n <= 0 {
		return nil, nil
	}
	e.growScratch(n)

	e.inbox.drain(e.applyMessage)

	buf, _ := e.bufSlot.load()
	loudness := e.loudness.Load()

	var drive [3]float32

	for ci := range e.cursors {
		c := e.cursors[ci]
		e.bus[ci].L = e.bus[ci].L[:n]
		e.bus[ci].R = e.bus[ci].R[:n]
		for i := range e.bus[ci].L {
			e.bus[ci].L[i] = 0
			e.bus[ci].R[i] = 0
		}

		snap := e.params.snapshot(ci)
		drive[ci] = mapDrive(snap.Drive)

		if snap.ScanSpeed != 0 {
			c.position += float64(snap.ScanSpeed) * float64(n) / e.cfg.SR
			c.position -= math.Floor(c.position)
		}

		c.lfoPhase += TwoPi * snap.LFOFreq * float32(n) / float32(e.cfg.SR)
		if c.lfoPhase >= TwoPi || c.lfoPhase < 0 {
			c.lfoPhase = float32(math.Mod(float64(c.lfoPhase), float64(TwoPi)))
			if c.lfoPhase < 0 {
				c.lfoPhase += TwoPi
			}
		}

		effectiveCutoff := snap.Cutoff * (1 + snap.LFODepth*fastSin(c.lfoPhase))
		maxFc := float32(0.45 * e.cfg.SR)
		if effectiveCutoff < 20 {
			effectiveCutoff = 20
		} else if effectiveCutoff > maxFc {
			effectiveCutoff = maxFc
		}
		c.filter.setSlope(snap.Slope)
		c.filter.updateSmoothing(effectiveCutoff, mapQ(snap.Q), n)

		k := float32(1 - math.Exp(-(float64(n)/e.cfg.SR)/(float64(e.cfg.GainTauMS)/1000)))
		c.gainSmooth += (snap.Gain - c.gainSmooth) * k

		if buf != nil && snap.Density > 0 {
			spawns := pollScheduler(c, snap.Density, e.pool.len(), e.cfg.MaxGrains, e.cfg.SR, n, e.sMax, e.nextUniform, e.spawnBuf[ci])
			for s := 0; s < spawns; s++ {
				e.spawnGrain(ci, snap, buf, loudness, int(e.spawnBuf[ci][s]), n, e.bus[ci].L, e.bus[ci].R)
			}
		} else {
			c.countdown -= float64(n)
			if c.countdown < 0 {
				c.countdown = 0
			}
		}
	}

	var liveCount [3]int
	e.renderPool(buf, n, e.bus, &liveCount)

	for ci := range e.cursors {
		c := e.cursors[ci]
		if c.softKilling && liveCount[ci] == 0 {
			c.clearSoftKill()
		}
		for i := 0; i < n; i++ {
			e.bus[ci].L[i], e.bus[ci].R[i] = c.filter.processStereo(e.bus[ci].L[i], e.bus[ci].R[i], drive[ci])
		}
	}

	e.masterL = e.masterL[:n]
	e.masterR = e.masterR[:n]
	for i := 0; i < n; i++ {
		e.masterL[i] = e.bus[0].L[i] + e.bus[1].L[i] + e.bus[2].L[i]
		e.masterR[i] = e.bus[0].R[i] + e.bus[1].R[i] + e.bus[2].R[i]
	}

	e.outL = e.outL[:n]
	e.outR = e.outR[:n]
	tpDB, grDB := e.limiter.process(e.masterL, e.masterR, e.outL, e.outR)
	if buf == nil {
		// No source buffer: the block is silent, including the filters'
		// denormal bias that would otherwise pass the limiter.
		for i := range e.outL {
			e.outL[i], e.outR[i] = 0, 0
		}
	}

	if e.outbox.throttle(n) {
		var positions [3]float32
		for ci := range e.cursors {
			positions[ci] = float32(e.cursors[ci].position)
		}
		e.outbox.push(Telemetry{Type: TelPositions, Positions: positions})
		e.outbox.push(Telemetry{Type: TelTelemetry, TPDB: tpDB, GRDB: grDB})
	}

	return e.outL, e.outR
}

// applyMessage dequeues one inbox message and mutates engine state, per
// spec.md §6's consumer contract. Called only from the audio thread at
// block boundaries.
func (e *Engine) applyMessage(m Message) {
	switch m.Type {
	case MsgSetBuffer:
		e.bufSlot.swap(m.Buffer)

	case MsgSetLoudnessMap:
		e.loudness.Store(m.Loudness)

	case MsgSetParamsAll:
		for i := 0; i < 3; i++ {
			e.params.setCursor(i, m.ParamsAll[i])
		}

	case MsgSetParamsFor:
		if m.Cursor >= 0 && m.Cursor < 3 {
			e.params.setCursor(m.Cursor, m.Params)
		}

	case MsgSetPositions:
		// Apply all provided indices, capped at 3 (generalizing the
		// original's hard-coded 0/1-always, 2-if-len>=3 rule).
		for i, pos := range m.Positions {
			if i >= 3 {
				break
			}
			e.cursors[i].position = float64(pos)
		}

	case MsgSetPlaying:
		for _, c := range e.cursors {
			c.setPlaying(m.Playing)
		}

	case MsgNoteOn:
		if m.Cursor >= 0 && m.Cursor < 3 {
			e.cursors[m.Cursor].noteOn(m.Semis)
		}

	case MsgNoteOff:
		if m.Cursor >= 0 && m.Cursor < 3 {
			e.cursors[m.Cursor].noteOff(m.Semis)
		}

	case MsgNoteOnAll:
		for _, c := range e.cursors {
			c.noteOn(m.Semis)
		}

	case MsgNoteOffAll:
		for _, c := range e.cursors {
			c.noteOff(m.Semis)
		}

	case MsgClearKBNotes:
		if m.Cursor == -1 {
			for _, c := range e.cursors {
				c.clearNotes()
			}
		} else if m.Cursor >= 0 && m.Cursor < 3 {
			e.cursors[m.Cursor].clearNotes()
		}

	case MsgKillCursorGrains:
		e.killCursorGrains(m.Cursor)

	case MsgPing:
		e.outbox.push(Telemetry{Type: TelReady})
	}
}

// killCursorGrains implements spec.md §4.6's soft-kill: every live grain of
// cursor (or of all cursors, if target == -1) has its envelope truncated to
// a short tail so it finishes within kill_tail_ms instead of being cut.
func (e *Engine) killCursorGrains(target int) {
	tail := uint32(math.Round(float64(e.cfg.KillTailMS) * e.cfg.SR / 1000))
	if tail < 1 {
		tail = 1
	}
	p := e.pool
	for i := 0; i < p.n; i++ {
		if target != -1 && int(p.cursorID[i]) != target {
			continue
		}
		limit := p.envPos[i] + tail
		if limit < p.envLen[i] {
			p.envLen[i] = limit
		}
	}
	if target == -1 {
		for _, c := range e.cursors {
			c.requestKill()
		}
	} else if target >= 0 && target < 3 {
		e.cursors[target].requestKill()
	}
}
