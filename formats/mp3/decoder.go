// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audflow/audio"
	"github.com/ik5/audflow/utils"
)

// go-mp3 always emits interleaved stereo signed 16-bit little endian PCM.
const (
	channels      = 2
	bytesPerFrame = 2 * channels
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
	Length() int64
	SampleRate() int
}

type source struct {
	dec        mp3Reader
	sampleRate int
	buf        []byte
}

var (
	_ audio.FrameSeeker  = (*source)(nil)
	_ audio.FrameCounter = (*source)(nil)
)

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.buf) / 2 } // return sample capacity, not bytes

// Frames is derived from the decoded byte length, -1 when go-mp3 could not
// determine it (non-seekable input).
func (s *source) Frames() int64 {
	n := s.dec.Length()
	if n < 0 {
		return -1
	}
	return n / bytesPerFrame
}

func (s *source) SeekFrame(frame int64) (int64, error) {
	if frame < 0 {
		return 0, fmt.Errorf("%w: %d", audio.ErrInvalidTimestamp, frame)
	}

	pos, err := s.dec.Seek(frame*bytesPerFrame, io.SeekStart)
	if err != nil {
		return 0, fmt.Errorf("%w", err)
	}
	return pos / bytesPerFrame, nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	bytesNeeded := len(dst) * 2
	if cap(s.buf) < bytesNeeded {
		s.buf = make([]byte, bytesNeeded)
	}
	s.buf = s.buf[:bytesNeeded]

	n, err := s.dec.Read(s.buf)
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, nil
	}

	samples := utils.DecodeS16LE(dst, s.buf[:n])

	return samples, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}, nil
}
