// Package oto plays fretdrill.AudioSources on the sound card.
package oto

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/fretdrill/fretdrill"
)

type (
	// OtoContext is an oto/v3 context opened for stereo float32 output.
	OtoContext struct {
		context    *oto.Context
		sampleRate int
	}

	// OtoOutput streams one AudioSource through an oto.Player.
	OtoOutput struct {
		player *oto.Player
		reader *sourceReader
		done   chan struct{}
		once   sync.Once
	}

	// sourceReader adapts an AudioSource to the io.Reader oto pulls from,
	// converting frames to little endian float32 bytes.
	sourceReader struct {
		source fretdrill.AudioSource
		buffer fretdrill.AudioBuffer
		tmp    []byte
		mu     sync.Mutex
		closed bool
	}
)

const (
	bytesPerFrame = 8                                // two float32 samples
	bufferFrames  = fretdrill.DefaultSampleRate / 50 // 20 ms at the default rate
	pollInterval  = 10 * time.Millisecond
)

// NewContext opens the audio device at the given sample rate. Only one oto
// context can exist per process.
func NewContext(sampleRate int) (*OtoContext, error) {
	if sampleRate <= 0 {
		sampleRate = fretdrill.DefaultSampleRate
	}
	context, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &OtoContext{context: context, sampleRate: sampleRate}, nil
}

func (c *OtoContext) SampleRate() int { return c.sampleRate }

// Play starts streaming src in the background. The returned CloserWaiter
// finishes when src returns an error, io.EOF included, or when it is closed.
func (c *OtoContext) Play(src fretdrill.AudioSource) fretdrill.CloserWaiter {
	r := &sourceReader{source: src, buffer: make(fretdrill.AudioBuffer, bufferFrames)}
	o := &OtoOutput{reader: r, done: make(chan struct{})}
	o.player = c.context.NewPlayer(r)
	o.player.SetBufferSize(bufferFrames * bytesPerFrame)
	o.player.Play()
	go o.monitor()
	return o
}

// Close suspends the device. oto contexts cannot be disposed of, so this only
// stops the output.
func (c *OtoContext) Close() error {
	if err := c.context.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

func (o *OtoOutput) monitor() {
	for o.player.IsPlaying() {
		time.Sleep(pollInterval)
	}
	o.once.Do(func() { close(o.done) })
}

// Wait blocks until the source has been played to its end or the output
// has been closed.
func (o *OtoOutput) Wait() { <-o.done }

// Close stops the output and disposes of the player.
func (o *OtoOutput) Close() error {
	o.reader.close()
	err := o.player.Close()
	o.once.Do(func() { close(o.done) })
	if err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}

func (r *sourceReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, io.EOF
	}
	frames := min(len(p)/bytesPerFrame, len(r.buffer))
	if frames == 0 {
		return 0, nil
	}
	buf := r.buffer[:frames]
	err := r.source.ReadAudio(buf)
	r.tmp = FloatBufferToBytes(buf, r.tmp[:0])
	n := copy(p, r.tmp)
	if err != nil {
		r.closed = true
		if errors.Is(err, io.EOF) {
			return n, io.EOF
		}
		return n, fmt.Errorf("cannot read audio source: %w", err)
	}
	return n, nil
}

func (r *sourceReader) close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}

// FloatBufferToBytes appends the frames of buff to out as interleaved little
// endian float32 samples, clamped to [-1, 1].
func FloatBufferToBytes(buff fretdrill.AudioBuffer, out []byte) []byte {
	for _, frame := range buff {
		for _, v := range frame {
			v = max(-1, min(1, v))
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
		}
	}
	return out
}
