// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ik5/audflow/formats/wav"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// WAVOpener records every opened sink to a 16-bit WAV file on fs. A "{n}"
// in pattern is replaced by a counter starting at 1.
func WAVOpener(fs afero.Fs, pattern string, log *zap.Logger) Opener {
	var n atomic.Int64

	return OpenerFunc(func(spec Spec) (Sink, error) {
		if err := spec.Validate(); err != nil {
			return nil, err
		}

		path := strings.ReplaceAll(pattern, "{n}", strconv.FormatInt(n.Add(1), 10))
		file, err := fs.Create(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
		}

		w, err := wav.NewWriter(file, spec.SampleRate, spec.Channels)
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("%w: %w", ErrUnsupportedSpec, err)
		}

		log.Info("recording to file", zap.String("path", path))

		return &wavSink{spec: spec, file: file, w: w, path: path, log: log}, nil
	})
}

type wavSink struct {
	spec Spec
	file afero.File
	w    *wav.Writer
	path string
	log  *zap.Logger

	mtx    sync.Mutex
	closed bool
	stats  counters
}

func (s *wavSink) Spec() Spec   { return s.spec }
func (s *wavSink) Stats() Stats { return s.stats.snapshot() }

func (s *wavSink) Write(ctx context.Context, p []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w", err)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.closed {
		return ErrClosed
	}

	frames := len(p) / s.spec.FrameBytes()
	if err := s.w.WriteS16LE(p[:frames*s.spec.FrameBytes()]); err != nil {
		return fmt.Errorf("%w: %w", ErrDeviceError, err)
	}

	s.stats.wrote(frames)
	return nil
}

// Flush is a no-op: a file has no queued audio to drop.
func (s *wavSink) Flush() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.stats.flushes.Add(1)
	return nil
}

func (s *wavSink) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	werr := s.w.Close()
	ferr := s.file.Close()
	s.log.Info("recording finished", zap.String("path", s.path), zap.Int64("frames", s.w.Frames()))

	if werr != nil {
		return fmt.Errorf("%w: %w", ErrDeviceError, werr)
	}
	if ferr != nil {
		return fmt.Errorf("%w: %w", ErrDeviceError, ferr)
	}
	return nil
}
