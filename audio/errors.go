// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// ErrNotFound indicates the media source does not exist.
	ErrNotFound = errors.New("audio source not found")
	// ErrUnsupportedFormat indicates no decoder accepts the container.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrNoDecodableTrack indicates the container holds no playable audio.
	ErrNoDecodableTrack = errors.New("no decodable audio track")

	// ErrEndOfStream is the terminal, non-error result of ReadPacket.
	ErrEndOfStream = errors.New("end of stream")
	ErrSeekFailed  = errors.New("seek failed")
	// ErrResetRequired signals that the stream changed its PCM layout and
	// must be reopened before decoding can continue.
	ErrResetRequired = errors.New("stream reset required")

	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrNotSeekable      = errors.New("source is not seekable")
)

// DecodeError reports a malformed packet. The stream stays usable and the
// caller is expected to skip the packet and keep reading.
type DecodeError struct {
	// TS is the timestamp the failed packet would have started at.
	TS Timestamp
	// Frames is the number of frames dropped with the packet, 0 if unknown.
	Frames int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error at %d: %v", e.TS, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsDecodeError reports whether err is a recoverable per-packet failure.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
