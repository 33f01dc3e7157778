// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
)

// DefaultPacketFrames matches the frame count of an MPEG layer III packet.
const DefaultPacketFrames = 1152

// Packetizer cuts a pull based Source into fixed size, timestamped packets.
type Packetizer struct {
	src    Source
	track  Track
	frames int

	pos  Timestamp
	buf  []float32
	done bool
}

var _ Stream = (*Packetizer)(nil)

// NewPacketizer wraps src. The packet size comes from the track's
// MaxFramesPerPacket, or DefaultPacketFrames when the track has none.
func NewPacketizer(src Source, track Track) *Packetizer {
	frames := track.Params.MaxFramesPerPacket.OrElse(DefaultPacketFrames)
	if frames <= 0 {
		frames = DefaultPacketFrames
	}

	return &Packetizer{
		src:    src,
		track:  track,
		frames: frames,
		buf:    make([]float32, frames*track.Params.Channels),
	}
}

func (p *Packetizer) Track() Track { return p.track }

// Position is the timestamp of the next packet.
func (p *Packetizer) Position() Timestamp { return p.pos }

func (p *Packetizer) ReadPacket() (Packet, error) {
	if p.done {
		return Packet{}, ErrEndOfStream
	}

	channels := p.track.Params.Channels
	if p.src.Channels() != channels || p.src.SampleRate() != p.track.Params.SampleRate {
		return Packet{}, fmt.Errorf("%w: layout changed to %d Hz/%d ch",
			ErrResetRequired, p.src.SampleRate(), p.src.Channels())
	}

	want := p.frames * channels
	n := 0
	var err error
	for n < want {
		var m int
		m, err = p.src.ReadSamples(p.buf[n:want])
		n += m
		if err != nil || m == 0 {
			break
		}
	}

	n -= n % channels
	frames := n / channels

	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		ts := p.pos
		p.pos += Timestamp(frames)
		return Packet{}, &DecodeError{TS: ts, Frames: frames, Err: err}
	}

	if err != nil || frames < p.frames {
		p.done = true
	}
	if frames == 0 {
		return Packet{}, ErrEndOfStream
	}

	pkt := Packet{
		TS:       p.pos,
		Frames:   frames,
		Channels: channels,
		Samples:  p.buf[:n],
	}
	p.pos += Timestamp(frames)

	return pkt, nil
}

func (p *Packetizer) Seek(ts Timestamp) (Timestamp, error) {
	if total, ok := p.track.Duration().Get(); ok && ts > total {
		return p.pos, fmt.Errorf("%w: %d is past the end (%d)", ErrInvalidTimestamp, ts, total)
	}

	seeker, ok := p.src.(FrameSeeker)
	if !ok {
		return p.pos, fmt.Errorf("%w: %w", ErrSeekFailed, ErrNotSeekable)
	}

	actual, err := seeker.SeekFrame(int64(ts))
	if err != nil {
		return p.pos, fmt.Errorf("%w: %w", ErrSeekFailed, err)
	}
	if actual < 0 {
		return p.pos, fmt.Errorf("%w: source reported frame %d", ErrSeekFailed, actual)
	}

	p.pos = Timestamp(actual)
	p.done = false

	return p.pos, nil
}

func (p *Packetizer) Close() error {
	if err := p.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}
