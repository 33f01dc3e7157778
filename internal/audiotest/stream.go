// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/ik5/audflow/audio"
	"github.com/samber/mo"
)

// ErrFakeDecode is the cause carried by scripted decode failures.
var ErrFakeDecode = errors.New("audiotest: scripted decode failure")

// FakeStream is a scripted audio.Stream. Packets are generated on the fly
// from Value, and individual packets can be made to fail.
type FakeStream struct {
	mtx sync.Mutex

	track        audio.Track
	packetFrames int
	total        audio.Timestamp
	pos          audio.Timestamp

	value   func(frame, channel int) float32
	fail    map[audio.Timestamp]bool
	resetAt mo.Option[audio.Timestamp]
	seekErr error

	seeks  []audio.Timestamp
	reads  int
	closed bool
	buf    []float32
}

var _ audio.Stream = (*FakeStream)(nil)

// NewFakeStream returns a stream of totalFrames frames cut into packets of
// packetFrames. Every sample defaults to 0.5.
func NewFakeStream(sampleRate, channels, totalFrames, packetFrames int) *FakeStream {
	return &FakeStream{
		track: audio.Track{
			ID:     uuid.New(),
			Path:   "fake",
			Format: "fake",
			Params: audio.CodecParams{
				SampleRate:         sampleRate,
				Channels:           channels,
				TimeBase:           audio.TimeBaseForRate(sampleRate),
				Frames:             mo.Some(uint64(totalFrames)),
				MaxFramesPerPacket: mo.Some(packetFrames),
			},
		},
		packetFrames: packetFrames,
		total:        audio.Timestamp(totalFrames),
		value:        func(int, int) float32 { return 0.5 },
		fail:         make(map[audio.Timestamp]bool),
		buf:          make([]float32, packetFrames*channels),
	}
}

// WithValue replaces the sample generator.
func (s *FakeStream) WithValue(fn func(frame, channel int) float32) *FakeStream {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.value = fn
	return s
}

// FailPacket makes the packet starting at ts come back as a decode error.
func (s *FakeStream) FailPacket(ts audio.Timestamp) *FakeStream {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.fail[ts] = true
	return s
}

// ResetAt makes the first read at or after ts return audio.ErrResetRequired.
func (s *FakeStream) ResetAt(ts audio.Timestamp) *FakeStream {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.resetAt = mo.Some(ts)
	return s
}

// SetSeekError makes every following Seek fail with err.
func (s *FakeStream) SetSeekError(err error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.seekErr = err
}

func (s *FakeStream) Track() audio.Track { return s.track }

func (s *FakeStream) ReadPacket() (audio.Packet, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.closed {
		return audio.Packet{}, errors.New("audiotest: read on closed stream")
	}
	s.reads++

	if at, ok := s.resetAt.Get(); ok && s.pos >= at {
		s.resetAt = mo.None[audio.Timestamp]()
		return audio.Packet{}, fmt.Errorf("%w: scripted", audio.ErrResetRequired)
	}

	if s.pos >= s.total {
		return audio.Packet{}, audio.ErrEndOfStream
	}

	ts := s.pos
	frames := min(s.packetFrames, int(s.total-s.pos))
	s.pos += audio.Timestamp(frames)

	if s.fail[ts] {
		return audio.Packet{}, &audio.DecodeError{TS: ts, Frames: frames, Err: ErrFakeDecode}
	}

	channels := s.track.Params.Channels
	samples := s.buf[:frames*channels]
	for f := range frames {
		for ch := range channels {
			samples[f*channels+ch] = s.value(int(ts)+f, ch)
		}
	}

	return audio.Packet{
		TS:       ts,
		Frames:   frames,
		Channels: channels,
		Samples:  samples,
	}, nil
}

func (s *FakeStream) Seek(ts audio.Timestamp) (audio.Timestamp, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.seeks = append(s.seeks, ts)

	if s.seekErr != nil {
		return s.pos, fmt.Errorf("%w: %w", audio.ErrSeekFailed, s.seekErr)
	}
	if ts > s.total {
		return s.pos, fmt.Errorf("%w: %d", audio.ErrInvalidTimestamp, ts)
	}

	s.pos = ts
	return s.pos, nil
}

func (s *FakeStream) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.closed = true
	return nil
}

// Seeks lists every requested seek target in order.
func (s *FakeStream) Seeks() []audio.Timestamp {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return append([]audio.Timestamp(nil), s.seeks...)
}

// Position is the timestamp of the next packet.
func (s *FakeStream) Position() audio.Timestamp {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.pos
}

func (s *FakeStream) Reads() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.reads
}

func (s *FakeStream) Closed() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.closed
}

// StreamFactory hands out FakeStreams by path. Each Open builds a fresh
// stream so that a playback stream and an analysis stream never share
// state.
type StreamFactory struct {
	mtx      sync.Mutex
	builders map[string]func() *FakeStream
	opened   map[string][]*FakeStream
}

func NewStreamFactory() *StreamFactory {
	return &StreamFactory{
		builders: make(map[string]func() *FakeStream),
		opened:   make(map[string][]*FakeStream),
	}
}

// Add registers a builder for path.
func (f *StreamFactory) Add(path string, build func() *FakeStream) *StreamFactory {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	f.builders[path] = build
	return f
}

func (f *StreamFactory) Open(path string) (audio.Stream, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	build, ok := f.builders[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", audio.ErrNotFound, path)
	}

	s := build()
	s.track.Path = path
	f.opened[path] = append(f.opened[path], s)

	return s, nil
}

// Opened returns the streams built for path, oldest first.
func (f *StreamFactory) Opened(path string) []*FakeStream {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	return append([]*FakeStream(nil), f.opened[path]...)
}
