// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Recorder is an in-memory sink that keeps everything written to it. Writes
// can be made to fail.
type Recorder struct {
	mtx sync.Mutex

	spec    Spec
	data    []byte
	closed  bool
	failN   int
	failErr error
	stats   counters

	// OnWrite runs before each accepted write with the bytes about to be
	// recorded.
	OnWrite func(p []byte)
}

func NewRecorder(spec Spec) *Recorder {
	return &Recorder{spec: spec}
}

// FailWrites makes the next n writes return err wrapped in ErrDeviceError.
func (r *Recorder) FailWrites(n int, err error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.failN, r.failErr = n, err
}

func (r *Recorder) Spec() Spec   { return r.spec }
func (r *Recorder) Stats() Stats { return r.stats.snapshot() }

func (r *Recorder) Write(_ context.Context, p []byte) error {
	r.mtx.Lock()
	if r.closed {
		r.mtx.Unlock()
		return ErrClosed
	}
	if r.failN > 0 {
		r.failN--
		r.mtx.Unlock()
		return fmt.Errorf("%w: %w", ErrDeviceError, r.failErr)
	}
	hook := r.OnWrite
	r.mtx.Unlock()

	// the hook may block, so it runs without the lock held
	if hook != nil {
		hook(p)
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.data = append(r.data, p...)
	r.stats.wrote(len(p) / r.spec.FrameBytes())

	return nil
}

func (r *Recorder) Flush() error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.closed {
		return ErrClosed
	}
	r.stats.flushes.Add(1)
	return nil
}

func (r *Recorder) Close() error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.closed = true
	return nil
}

// Bytes returns a copy of everything written.
func (r *Recorder) Bytes() []byte {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return slices.Clone(r.data)
}

// Frames is the number of frames written.
func (r *Recorder) Frames() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return len(r.data) / r.spec.FrameBytes()
}

func (r *Recorder) Closed() bool {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return r.closed
}

// RecorderOpener opens Recorders and remembers them.
type RecorderOpener struct {
	mtx     sync.Mutex
	opened  []*Recorder
	openErr error
	onWrite func(spec Spec, p []byte)
}

// FailOpen makes every following Open return err.
func (o *RecorderOpener) FailOpen(err error) {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	o.openErr = err
}

// OnWrite installs fn on every Recorder opened afterwards.
func (o *RecorderOpener) OnWrite(fn func(spec Spec, p []byte)) {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	o.onWrite = fn
}

func (o *RecorderOpener) Open(spec Spec) (Sink, error) {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	if o.openErr != nil {
		return nil, o.openErr
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	r := NewRecorder(spec)
	if fn := o.onWrite; fn != nil {
		r.OnWrite = func(p []byte) { fn(spec, p) }
	}
	o.opened = append(o.opened, r)

	return r, nil
}

// Opened returns every Recorder in open order.
func (o *RecorderOpener) Opened() []*Recorder {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	return slices.Clone(o.opened)
}

// Last returns the most recently opened Recorder, or nil.
func (o *RecorderOpener) Last() *Recorder {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	if len(o.opened) == 0 {
		return nil
	}
	return o.opened[len(o.opened)-1]
}
