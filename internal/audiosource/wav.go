// Package audiosource decodes on-disk audio into the granular engine's
// SourceBuffer format. This is the "file decoder" collaborator of
// spec.md §6, kept outside the realtime core.
package audiosource

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"

	"github.com/polygrain/synth/engine"
)

// DecodeWAV decodes a PCM WAV stream into a stereo SourceBuffer. Mono files
// are returned with R aliasing L, per engine.SourceBuffer's contract.
func DecodeWAV(r io.Reader) (*granular.SourceBuffer, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("audiosource: read wav: %w", err)
		}
		rs = &byteReadSeeker{data: b}
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("audiosource: not a valid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("audiosource: decode wav: %w", err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, fmt.Errorf("audiosource: empty or malformed wav buffer")
	}

	numCh := buf.Format.NumChannels
	sr := buf.Format.SampleRate
	if sr <= 0 {
		return nil, fmt.Errorf("audiosource: invalid sample rate %d", sr)
	}

	fbuf := buf.AsFloatBuffer()
	frames := len(fbuf.Data) / numCh
	if frames == 0 {
		return nil, fmt.Errorf("audiosource: empty wav data")
	}

	// AsFloatBuffer keeps the integer sample values; scale them by the
	// source bit depth's full-scale value into [-1,1].
	scale := 1.0
	if buf.SourceBitDepth > 1 {
		scale = float64(int64(1) << uint(buf.SourceBitDepth-1))
	}

	left := make([]float32, frames)
	var right []float32

	if numCh == 1 {
		for i := 0; i < frames; i++ {
			left[i] = float32(fbuf.Data[i] / scale)
		}
		right = left
	} else {
		right = make([]float32, frames)
		for i := 0; i < frames; i++ {
			left[i] = float32(fbuf.Data[i*numCh] / scale)
			right[i] = float32(fbuf.Data[i*numCh+1] / scale)
		}
	}

	channels := 2
	if numCh == 1 {
		channels = 1
	}
	return &granular.SourceBuffer{
		Channels:   channels,
		Frames:     frames,
		SampleRate: float64(sr),
		L:          left,
		R:          right,
	}, nil
}

// LoadWAV opens path and decodes it via DecodeWAV.
func LoadWAV(path string) (*granular.SourceBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audiosource: open %s: %w", path, err)
	}
	defer f.Close()
	return DecodeWAV(f)
}

// byteReadSeeker adapts an in-memory byte slice to io.ReadSeeker for
// decoders given a plain io.Reader.
type byteReadSeeker struct {
	data []byte
	pos  int64
}

func (b *byteReadSeeker) Read(p []byte) (int, error) {
	if b.pos >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += int64(n)
	return n, nil
}

func (b *byteReadSeeker) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = b.pos + offset
	case io.SeekEnd:
		newPos = int64(len(b.data)) + offset
	default:
		return 0, fmt.Errorf("audiosource: invalid whence %d", whence)
	}
	if newPos < 0 {
		return 0, fmt.Errorf("audiosource: negative seek position")
	}
	b.pos = newPos
	return newPos, nil
}
