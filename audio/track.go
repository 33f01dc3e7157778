// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/mo"
)

// CodecParams describes the PCM a track decodes to.
type CodecParams struct {
	SampleRate int
	Channels   int
	TimeBase   TimeBase
	// Frames is the total length of the track when the container declares it.
	Frames mo.Option[uint64]
	// MaxFramesPerPacket bounds the size of every packet the stream returns.
	MaxFramesPerPacket mo.Option[int]
}

// Track identifies one opened audio source. It is immutable once built.
type Track struct {
	// ID is unique per open, so two loads of the same path differ.
	ID     uuid.UUID
	Path   string
	Format string
	Params CodecParams
}

// NewTrack describes src as a track read from path. packetFrames is the
// packet bound the stream will honour.
func NewTrack(path, format string, src Source, packetFrames int) (Track, error) {
	rate, channels := src.SampleRate(), src.Channels()
	if rate <= 0 || channels <= 0 {
		return Track{}, fmt.Errorf("%w: rate=%d channels=%d", ErrNoDecodableTrack, rate, channels)
	}

	params := CodecParams{
		SampleRate: rate,
		Channels:   channels,
		TimeBase:   TimeBaseForRate(rate),
		Frames:     mo.None[uint64](),
	}

	if fc, ok := src.(FrameCounter); ok {
		if n := fc.Frames(); n >= 0 {
			params.Frames = mo.Some(uint64(n))
		}
	}

	if packetFrames > 0 {
		params.MaxFramesPerPacket = mo.Some(packetFrames)
	}

	return Track{
		ID:     uuid.New(),
		Path:   path,
		Format: NormalizeFormat(format),
		Params: params,
	}, nil
}

// Duration returns the track length in timestamp units when known.
func (t Track) Duration() mo.Option[Timestamp] {
	frames, ok := t.Params.Frames.Get()
	if !ok {
		return mo.None[Timestamp]()
	}
	return mo.Some(Timestamp(frames))
}

// Packet is one decoded unit of interleaved PCM.
type Packet struct {
	TS       Timestamp
	Frames   int
	Channels int
	// Samples is only valid until the next ReadPacket call on the stream.
	Samples []float32
}

// End is the timestamp right after the last frame of the packet.
func (p Packet) End() Timestamp { return p.TS + Timestamp(p.Frames) }

// Stream is a packet oriented, seekable view over a decoded track.
//
// ReadPacket returns ErrEndOfStream when the track is exhausted and a
// *DecodeError for a malformed packet that can be skipped. Seek returns the
// timestamp it actually reached, or an error wrapping ErrSeekFailed,
// ErrInvalidTimestamp or ErrResetRequired.
type Stream interface {
	Track() Track
	ReadPacket() (Packet, error)
	Seek(ts Timestamp) (Timestamp, error)
	Close() error
}
