//go:build headless

package capture

import (
	"fmt"

	"github.com/polygrain/synth/engine"
)

// Recorder is a no-op stand-in used in headless builds and CI, where no
// audio device is available.
type Recorder struct {
	sr float64
}

func NewRecorder(sr float64, framesPerBuffer int) (*Recorder, error) {
	return &Recorder{sr: sr}, nil
}

func (r *Recorder) Start() error { return nil }

func (r *Recorder) Stop() (*granular.SourceBuffer, error) {
	return nil, fmt.Errorf("capture: no audio device in headless build")
}

func (r *Recorder) Close() error { return nil }
