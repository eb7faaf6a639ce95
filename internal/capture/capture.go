//go:build !headless

// Package capture accumulates a microphone take into an engine.SourceBuffer
// over a hold window, the "microphone capture" collaborator of spec.md §6.
package capture

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/polygrain/synth/engine"
)

// Recorder captures mono input from the default device into a growing
// buffer until Stop is called.
type Recorder struct {
	mu     sync.Mutex
	stream *portaudio.Stream
	frames []float32
	sr     float64
}

// NewRecorder opens the default input device at sr with framesPerBuffer
// per callback.
func NewRecorder(sr float64, framesPerBuffer int) (*Recorder, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("capture: init portaudio: %w", err)
	}

	r := &Recorder{sr: sr}

	stream, err := portaudio.OpenDefaultStream(1, 0, sr, framesPerBuffer, func(in []float32) {
		r.mu.Lock()
		r.frames = append(r.frames, in...)
		r.mu.Unlock()
	})
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("capture: open stream: %w", err)
	}
	r.stream = stream
	return r, nil
}

// Start begins recording.
func (r *Recorder) Start() error {
	if r.stream == nil {
		return fmt.Errorf("capture: recorder not initialized")
	}
	return r.stream.Start()
}

// Stop ends recording and returns the accumulated take as a mono
// SourceBuffer (R aliases L).
func (r *Recorder) Stop() (*granular.SourceBuffer, error) {
	if r.stream == nil {
		return nil, fmt.Errorf("capture: recorder not initialized")
	}
	if err := r.stream.Stop(); err != nil {
		return nil, fmt.Errorf("capture: stop stream: %w", err)
	}

	r.mu.Lock()
	frames := r.frames
	r.mu.Unlock()

	if len(frames) == 0 {
		return nil, fmt.Errorf("capture: empty take")
	}
	return &granular.SourceBuffer{
		Channels:   1,
		Frames:     len(frames),
		SampleRate: r.sr,
		L:          frames,
		R:          frames,
	}, nil
}

// Close releases the underlying audio device.
func (r *Recorder) Close() error {
	if r.stream != nil {
		_ = r.stream.Close()
	}
	return portaudio.Terminate()
}
