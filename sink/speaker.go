// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/ik5/audflow/audio"
	"github.com/ik5/audflow/utils"
	"go.uber.org/zap"
)

// device is the part of the beep speaker a sink drives.
type device interface {
	Play(s beep.Streamer)
	Lock()
	Unlock()
}

type speakerDevice struct{}

func (speakerDevice) Play(s beep.Streamer) { speaker.Play(s) }
func (speakerDevice) Lock()                { speaker.Lock() }
func (speakerDevice) Unlock()              { speaker.Unlock() }

var (
	speakerOnce sync.Once
	speakerErr  error
	speakerRate int
)

// initSpeaker opens the output device once per process. Later calls return
// the result of the first one.
func initSpeaker(rate int, latency time.Duration) (int, error) {
	speakerOnce.Do(func() {
		sr := beep.SampleRate(rate)
		if err := speaker.Init(sr, sr.N(latency)); err != nil {
			speakerErr = fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
			return
		}
		speakerRate = rate
	})
	return speakerRate, speakerErr
}

// SpeakerOpener plays through the system audio device.
func SpeakerOpener(cfg Config, log *zap.Logger) Opener {
	return OpenerFunc(func(spec Spec) (Sink, error) {
		if err := spec.Validate(); err != nil {
			return nil, err
		}

		rate, err := initSpeaker(cfg.DeviceRate, cfg.Latency)
		if err != nil {
			return nil, err
		}

		return newSpeakerSink(spec, speakerDevice{}, rate, cfg, log), nil
	})
}

// speakerSink queues written audio for the device callback. The callback
// pulls from the queue through the cubic Resampler, so tracks play at the
// device rate whatever their own rate is.
type speakerSink struct {
	spec    Spec
	dev     device
	q       *queue
	feed    *feed
	rs      *audio.Resampler
	timeout time.Duration
	log     *zap.Logger

	out     []float32
	scratch []float32

	closed atomic.Bool
	done   chan struct{}
	stats  counters
}

func newSpeakerSink(spec Spec, dev device, deviceRate int, cfg Config, log *zap.Logger) *speakerSink {
	frames := int(audio.TimeBaseForRate(spec.SampleRate).CalcTimestamp(cfg.Buffer))

	s := &speakerSink{
		spec:    spec,
		dev:     dev,
		q:       newQueue(frames, spec.Channels),
		timeout: cfg.WriteTimeout,
		log:     log,
		done:    make(chan struct{}),
	}
	s.feed = &feed{q: s.q, rate: spec.SampleRate, channels: spec.Channels, underruns: &s.stats.underruns}
	s.rs = audio.NewResampler(s.feed, deviceRate)

	dev.Play(&streamer{s: s})

	log.Debug("speaker sink opened",
		zap.Int("rate", spec.SampleRate),
		zap.Int("channels", spec.Channels),
		zap.Int("device_rate", deviceRate),
		zap.Int("queue_frames", frames))

	return s
}

func (s *speakerSink) Spec() Spec   { return s.spec }
func (s *speakerSink) Stats() Stats { return s.stats.snapshot() }

func (s *speakerSink) Write(ctx context.Context, p []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}

	frames := len(p) / s.spec.FrameBytes()
	if frames == 0 {
		return nil
	}

	want := frames * s.spec.Channels
	if cap(s.scratch) < want {
		s.scratch = make([]float32, want)
	}
	samples := s.scratch[:utils.DecodeS16LE(s.scratch[:want], p)]

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		samples = samples[s.q.push(samples):]
		if len(samples) == 0 {
			break
		}

		if timer == nil {
			timer = time.NewTimer(s.timeout)
		}
		select {
		case <-s.q.room:
		case <-ctx.Done():
			return fmt.Errorf("%w", ctx.Err())
		case <-s.done:
			return ErrClosed
		case <-timer.C:
			return fmt.Errorf("%w: queue full for %s", ErrBackpressure, s.timeout)
		}
	}

	s.stats.wrote(frames)
	return nil
}

func (s *speakerSink) Flush() error {
	if s.closed.Load() {
		return ErrClosed
	}

	s.dev.Lock()
	s.q.clear()
	s.feed.reset()
	s.rs.Reset()
	s.dev.Unlock()

	s.stats.flushes.Add(1)
	return nil
}

func (s *speakerSink) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	close(s.done)

	// the streamer reports itself drained on its next callback
	s.dev.Lock()
	s.q.clear()
	s.dev.Unlock()

	s.log.Debug("speaker sink closed", zap.Uint64("underruns", s.stats.underruns.Load()))
	return nil
}

// feed is the audio.Source the Resampler reads. An empty queue yields
// silence instead of ending the stream.
type feed struct {
	q         *queue
	rate      int
	channels  int
	underruns *atomic.Uint64

	local   []float32
	off     int
	started bool
	starved bool
}

var _ audio.Source = (*feed)(nil)

func (f *feed) SampleRate() int { return f.rate }
func (f *feed) Channels() int   { return f.channels }
func (f *feed) BufSize() int    { return 512 * f.channels }
func (f *feed) Close() error    { return nil }

func (f *feed) reset() {
	f.local = f.local[:0]
	f.off = 0
	f.started = false
	f.starved = false
}

func (f *feed) ReadSamples(dst []float32) (int, error) {
	n := 0
	for n < len(dst) {
		if f.off >= len(f.local) {
			if cap(f.local) == 0 {
				f.local = make([]float32, f.BufSize())
			}
			f.local = f.local[:f.q.pop(f.local[:cap(f.local)])]
			f.off = 0
			if len(f.local) == 0 {
				break
			}
		}
		m := copy(dst[n:], f.local[f.off:])
		f.off += m
		n += m
	}

	if n < len(dst) {
		if f.started && !f.starved {
			f.underruns.Add(1)
		}
		f.starved = true
		clear(dst[n:])
	} else {
		f.started = true
		f.starved = false
	}

	return len(dst), nil
}

// streamer adapts a speaker sink to beep. Mono is sent to both outputs and
// only the first two channels of wider layouts are played.
type streamer struct {
	s *speakerSink
}

var _ beep.Streamer = (*streamer)(nil)

func (st *streamer) Stream(samples [][2]float64) (int, bool) {
	s := st.s
	if s.closed.Load() {
		return 0, false
	}

	ch := s.spec.Channels
	need := len(samples) * ch
	if cap(s.out) < need {
		s.out = make([]float32, need)
	}
	out := s.out[:need]

	n, err := s.rs.ReadSamples(out)
	if err != nil {
		s.log.Warn("resampler failed", zap.Error(err))
	}

	frames := n / ch
	for i := range frames {
		l := float64(out[i*ch])
		r := l
		if ch > 1 {
			r = float64(out[i*ch+1])
		}
		samples[i] = [2]float64{l, r}
	}
	for i := frames; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}

	return len(samples), true
}

func (st *streamer) Err() error { return nil }
