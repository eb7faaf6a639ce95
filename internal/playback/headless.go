//go:build headless

package playback

// Source is anything that can render n stereo frames on demand, satisfied
// by *granular.Engine.
type Source interface {
	Process(n int) (left, right []float32)
}

// Player is a no-op stand-in used in headless builds and CI, where no
// audio device is available.
type Player struct {
	source Source
}

func NewPlayer(sampleRate int) (*Player, error) {
	return &Player{}, nil
}

func (p *Player) SetSource(src Source) { p.source = src }

func (p *Player) Start() {}

func (p *Player) Stop() {}

func (p *Player) Close() {}
