// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"context"
	"fmt"
	"sync/atomic"
)

// NullOpener opens sinks that discard audio.
func NullOpener() Opener {
	return OpenerFunc(func(spec Spec) (Sink, error) {
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		return &nullSink{spec: spec}, nil
	})
}

type nullSink struct {
	spec   Spec
	closed atomic.Bool
	stats  counters
}

func (s *nullSink) Spec() Spec   { return s.spec }
func (s *nullSink) Stats() Stats { return s.stats.snapshot() }

func (s *nullSink) Write(ctx context.Context, p []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w", err)
	}
	s.stats.wrote(len(p) / s.spec.FrameBytes())
	return nil
}

func (s *nullSink) Flush() error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.stats.flushes.Add(1)
	return nil
}

func (s *nullSink) Close() error {
	s.closed.Store(true)
	return nil
}
