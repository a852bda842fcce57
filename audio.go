package fretdrill

import "io"

type (
	// AudioBuffer is a buffer of stereo frames, left channel first.
	AudioBuffer [][2]float32

	// AudioSource produces audio on demand. ReadAudio fills the whole buffer
	// or returns an error; io.EOF signals that the source has nothing more
	// to play.
	AudioSource interface {
		ReadAudio(buf AudioBuffer) error
	}

	// AudioContext is an output device that can play sources.
	AudioContext interface {
		Play(src AudioSource) CloserWaiter
		Close() error
	}

	// CloserWaiter is a handle to something playing in the background. Close
	// stops it and Wait blocks until it has stopped.
	CloserWaiter interface {
		Close() error
		Wait()
	}

	bufferSource struct {
		buffer AudioBuffer
		pos    int
	}
)

// DefaultSampleRate is used wherever no sample rate is configured.
const DefaultSampleRate = 44100

// Fill sets every frame of the buffer to zero.
func (b AudioBuffer) Fill() {
	for i := range b {
		b[i] = [2]float32{}
	}
}

// Duration returns the length of the buffer in seconds at the given rate.
func (b AudioBuffer) Duration(sampleRate int) float64 {
	return float64(len(b)) / float64(sampleRate)
}

// Source returns an AudioSource that plays the buffer once and then pads
// with silence, returning io.EOF.
func (b AudioBuffer) Source() AudioSource {
	return &bufferSource{buffer: b}
}

func (s *bufferSource) ReadAudio(buf AudioBuffer) error {
	n := copy(buf, s.buffer[s.pos:])
	s.pos += n
	if n < len(buf) {
		buf[n:].Fill()
		return io.EOF
	}
	return nil
}
