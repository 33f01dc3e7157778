// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Limits accepted by Spec.Validate.
const (
	MaxSampleRate = 384000
	MaxChannels   = 8
)

// Spec is the PCM layout a sink accepts: interleaved signed 16-bit little
// endian samples.
type Spec struct {
	SampleRate int
	Channels   int
}

func (s Spec) Validate() error {
	if s.SampleRate <= 0 || s.SampleRate > MaxSampleRate {
		return fmt.Errorf("%w: sample rate %d", ErrUnsupportedSpec, s.SampleRate)
	}
	if s.Channels <= 0 || s.Channels > MaxChannels {
		return fmt.Errorf("%w: %d channels", ErrUnsupportedSpec, s.Channels)
	}
	return nil
}

// FrameBytes is the size of one interleaved frame.
func (s Spec) FrameBytes() int { return 2 * s.Channels }

// Stats are cumulative counters of a sink.
type Stats struct {
	Writes    uint64
	Frames    uint64
	Underruns uint64
	Flushes   uint64
}

// Sink is an audio output.
type Sink interface {
	Spec() Spec
	// Write queues whole frames of S16LE audio. It may block until the
	// device has room, the context ends or the sink gives up with
	// ErrBackpressure.
	Write(ctx context.Context, p []byte) error
	// Flush drops audio that was queued but not played yet.
	Flush() error
	Close() error
	Stats() Stats
}

// Opener opens sinks for a given spec.
type Opener interface {
	Open(spec Spec) (Sink, error)
}

type OpenerFunc func(spec Spec) (Sink, error)

func (f OpenerFunc) Open(spec Spec) (Sink, error) { return f(spec) }

// New returns the opener of the backend named in cfg.
func New(cfg Config, fs afero.Fs, log *zap.Logger) (Opener, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("sink")

	switch cfg.Backend {
	case BackendSpeaker, "":
		return SpeakerOpener(cfg, log), nil
	case BackendWAV:
		return WAVOpener(fs, cfg.RecordPath, log), nil
	case BackendNull:
		return NullOpener(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

type counters struct {
	writes    atomic.Uint64
	frames    atomic.Uint64
	underruns atomic.Uint64
	flushes   atomic.Uint64
}

func (c *counters) wrote(frames int) {
	c.writes.Add(1)
	c.frames.Add(uint64(frames))
}

func (c *counters) snapshot() Stats {
	return Stats{
		Writes:    c.writes.Load(),
		Frames:    c.frames.Load(),
		Underruns: c.underruns.Load(),
		Flushes:   c.flushes.Load(),
	}
}
