// SPDX-License-Identifier: EPL-2.0

package preview

import (
	"errors"
	"fmt"

	"github.com/ik5/audflow/audio"
)

// ChunkFramesFor picks the chunk size for track: override when positive,
// else the largest packet the track declares, else
// audio.DefaultPacketFrames.
func ChunkFramesFor(track audio.Track, override int) int {
	if override > 0 {
		return override
	}
	if n, ok := track.Params.MaxFramesPerPacket.Get(); ok && n > 0 {
		return n
	}
	return audio.DefaultPacketFrames
}

// Feeder analyses a stream into a Buffer a few packets at a time. Bad
// packets become silent gaps until maxErrors of them come in a row.
type Feeder struct {
	buf       *Buffer
	stream    audio.Stream
	maxErrors int
	errs      int
}

// NewFeeder feeds stream into b. maxErrors of 0 never gives up on bad
// packets.
func NewFeeder(b *Buffer, stream audio.Stream, maxErrors int) *Feeder {
	return &Feeder{buf: b, stream: stream, maxErrors: maxErrors}
}

// Feed analyses up to n packets, or the rest of the stream when n <= 0.
// done is true once the stream ended and the buffer is finished. Any other
// read error, or too many bad packets in a row, stops the analysis and is
// returned.
func (f *Feeder) Feed(n int) (done bool, err error) {
	for i := 0; n <= 0 || i < n; i++ {
		pkt, err := f.stream.ReadPacket()
		if err == nil {
			f.errs = 0
			f.buf.Append(pkt)
			continue
		}

		var de *audio.DecodeError
		switch {
		case errors.As(err, &de):
			f.errs++
			if f.maxErrors > 0 && f.errs >= f.maxErrors {
				return false, fmt.Errorf("%w: %d in a row, last: %w", ErrTooManyDecodeErrors, f.errs, err)
			}
			f.buf.Gap(de.TS, de.Frames)
		case errors.Is(err, audio.ErrEndOfStream):
			f.buf.Finish()
			return true, nil
		default:
			return false, err
		}
	}

	return false, nil
}

// Feed analyses up to n packets of stream into b, or the whole stream when
// n <= 0. See Feeder.
func Feed(b *Buffer, stream audio.Stream, n, maxErrors int) (done bool, err error) {
	return NewFeeder(b, stream, maxErrors).Feed(n)
}
