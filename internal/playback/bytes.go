package playback

import "unsafe"

// float32BytesView reinterprets a []float32 as a []byte without copying,
// per the teacher's oto Read() idiom.
func float32BytesView(f []float32) []byte {
	if len(f) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&f[0])), len(f)*4)
}
