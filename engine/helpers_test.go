// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ik5/audflow/audio"
	"github.com/ik5/audflow/internal/audiotest"
	"github.com/ik5/audflow/preview"
	"github.com/ik5/audflow/sink"
)

const testPath = "/music/track.wav"

// tenPackets is one second of 8 kHz mono in ten packets of 800 frames.
func tenPackets() *audiotest.FakeStream {
	return audiotest.NewFakeStream(8000, 1, 8000, 800)
}

func noPrescan() preview.Config {
	cfg := preview.DefaultConfig()
	cfg.Prescan = false
	return cfg
}

type harness struct {
	e       *Engine
	streams *audiotest.StreamFactory
	sinks   *sink.RecorderOpener

	cancel context.CancelFunc
	runErr chan error
}

func newHarness(t *testing.T, build func() *audiotest.FakeStream, opts ...Option) *harness {
	t.Helper()

	h := &harness{
		streams: audiotest.NewStreamFactory().Add(testPath, build),
		sinks:   &sink.RecorderOpener{},
		runErr:  make(chan error, 1),
	}

	e, err := New(h.streams, h.sinks, append([]Option{WithPreview(noPrescan())}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	h.e = e

	return h
}

// start runs the engine until the test ends.
func (h *harness) start(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.runErr <- h.e.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case <-h.e.Done():
		case <-time.After(5 * time.Second):
			t.Error("engine did not stop")
		}
	})
}

func (h *harness) do(t *testing.T, cmd Command) error {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return h.e.Do(ctx, cmd)
}

func (h *harness) mustDo(t *testing.T, cmd Command) {
	t.Helper()

	if err := h.do(t, cmd); err != nil {
		t.Fatalf("%s: %v", cmd.Kind, err)
	}
}

// playback is the stream the engine plays from (the first one it opened).
func (h *harness) playback(t *testing.T) *audiotest.FakeStream {
	t.Helper()

	opened := h.streams.Opened(testPath)
	if len(opened) == 0 {
		t.Fatal("no stream opened")
	}
	return opened[0]
}

func (h *harness) head(t *testing.T) audio.Timestamp {
	t.Helper()

	p, ok := h.e.Playhead().Get()
	if !ok {
		t.Fatal("no playhead")
	}
	return p.TS
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func (h *harness) waitFinished(t *testing.T) {
	t.Helper()
	eventually(t, "end of track", func() bool { return h.e.Status().Kind == EventFinished })
}

// gate holds every sink write until a token is granted, which pins the
// engine at a known packet while it is playing.
type gate struct {
	tokens chan struct{}
	once   sync.Once
}

func newGate(t *testing.T, h *harness) *gate {
	g := &gate{tokens: make(chan struct{}, 1024)}
	h.sinks.OnWrite(func(sink.Spec, []byte) { <-g.tokens })
	t.Cleanup(g.open)
	return g
}

func (g *gate) allow(n int) {
	for range n {
		g.tokens <- struct{}{}
	}
}

// open lets every write through from now on.
func (g *gate) open() { g.once.Do(func() { close(g.tokens) }) }

// doBlocked sends cmd while the engine is parked in a gated write and
// releases that write so the command gets picked up.
func (h *harness) doBlocked(t *testing.T, g *gate, cmd Command) error {
	t.Helper()

	res := make(chan error, 1)
	go func() { res <- h.do(t, cmd) }()

	eventually(t, "command queued", func() bool { return len(h.e.inbox) == 1 })
	g.allow(1)

	return <-res
}

// collect reads events until one of kind arrives.
func collect(t *testing.T, e *Engine, kind EventKind) []Event {
	t.Helper()

	var got []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-e.Events():
			if !ok {
				t.Fatalf("events closed before %s", kind)
			}
			got = append(got, ev)
			if ev.Kind == kind {
				return got
			}
		case <-timeout:
			t.Fatalf("no %s event", kind)
		}
	}
}

func countKind(events []Event, kind EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
