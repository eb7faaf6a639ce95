//go:build !headless

// Package playback drives the system's audio output device, pulling
// interleaved stereo frames from a granular.Engine on demand. This is the
// "output" half of the borrowed I/O boundary object from spec.md §9.
package playback

import (
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

// Source is anything that can render n stereo frames on demand, satisfied
// by *granular.Engine.
type Source interface {
	Process(n int) (left, right []float32)
}

// Player is an oto-backed pull player: oto calls Read whenever it needs
// more samples, and Read in turn calls Source.Process and interleaves the
// result, per the teacher's OtoPlayer shape generalized from mono to
// stereo.
type Player struct {
	ctx     *oto.Context
	player  *oto.Player
	source  atomic.Pointer[Source]
	started bool
	mutex   sync.Mutex

	interleaveBuf []float32
}

// NewPlayer opens an oto context at sampleRate for 2-channel float32 output.
func NewPlayer(sampleRate int) (*Player, error) {
	opts := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	}
	ctx, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, err
	}
	<-ready
	return &Player{ctx: ctx}, nil
}

// SetSource attaches the engine to pull samples from and creates the
// underlying oto player.
func (p *Player) SetSource(src Source) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.source.Store(&src)
	p.player = p.ctx.NewPlayer(p)
	p.interleaveBuf = make([]float32, 4096)
}

// Read implements io.Reader for oto.Player, converting a pull request for
// len(b) bytes of interleaved stereo float32 into a granular.Engine.Process
// call.
func (p *Player) Read(b []byte) (int, error) {
	srcPtr := p.source.Load()
	if srcPtr == nil {
		for i := range b {
			b[i] = 0
		}
		return len(b), nil
	}
	src := *srcPtr

	frames := len(b) / 8 // 2 channels * 4 bytes
	if frames == 0 {
		return 0, nil
	}
	left, right := src.Process(frames)

	needed := frames * 2
	if len(p.interleaveBuf) < needed {
		p.interleaveBuf = make([]float32, needed)
	}
	buf := p.interleaveBuf[:needed]
	for i := 0; i < frames; i++ {
		buf[2*i] = left[i]
		buf[2*i+1] = right[i]
	}

	n := copy(b, float32BytesView(buf))
	return n, nil
}

func (p *Player) Start() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if !p.started && p.player != nil {
		p.player.Play()
		p.started = true
	}
}

func (p *Player) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.started && p.player != nil {
		p.player.Close()
		p.started = false
	}
}

func (p *Player) Close() {
	p.Stop()
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.player != nil {
		p.player.Close()
		p.player = nil
	}
}
