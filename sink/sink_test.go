// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func TestSpec_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		spec Spec
		ok   bool
	}{
		{Spec{44100, 2}, true},
		{Spec{8000, 1}, true},
		{Spec{MaxSampleRate, MaxChannels}, true},
		{Spec{0, 2}, false},
		{Spec{44100, 0}, false},
		{Spec{MaxSampleRate + 1, 2}, false},
		{Spec{44100, MaxChannels + 1}, false},
	}

	for _, tt := range tests {
		err := tt.spec.Validate()
		if tt.ok && err != nil {
			t.Errorf("Validate(%+v) = %v, want nil", tt.spec, err)
		}
		if !tt.ok && !errors.Is(err, ErrUnsupportedSpec) {
			t.Errorf("Validate(%+v) = %v, want ErrUnsupportedSpec", tt.spec, err)
		}
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()

	cfg := DefaultConfig()
	cfg.Backend = BackendNull
	opener, err := New(cfg, fs, zap.NewNop())
	if err != nil {
		t.Fatalf("New(null) error = %v", err)
	}
	s, err := opener.Open(Spec{8000, 1})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.Write(context.Background(), frameData(10, 0.1)); err != nil {
		t.Errorf("Write() error = %v", err)
	}
	if got := s.Stats().Frames; got != 10 {
		t.Errorf("Frames = %d, want 10", got)
	}
	_ = s.Close()
	if err := s.Write(context.Background(), frameData(1, 0)); !errors.Is(err, ErrClosed) {
		t.Errorf("Write() after Close error = %v, want ErrClosed", err)
	}

	cfg.Backend = BackendWAV
	cfg.RecordPath = "out.wav"
	if _, err := New(cfg, fs, nil); err != nil {
		t.Errorf("New(wav) error = %v", err)
	}

	cfg.Backend = "alsa"
	if _, err := New(cfg, fs, nil); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("New(alsa) error = %v, want ErrUnknownBackend", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Backend = "jack" }},
		{"zero device rate", func(c *Config) { c.DeviceRate = 0 }},
		{"zero latency", func(c *Config) { c.Latency = 0 }},
		{"buffer under latency", func(c *Config) { c.Buffer = 10 * time.Millisecond }},
		{"zero timeout", func(c *Config) { c.WriteTimeout = 0 }},
		{"wav without path", func(c *Config) { c.Backend = BackendWAV; c.RecordPath = "" }},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.modify(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: Validate() = nil, want an error", tt.name)
		}
	}

	null := DefaultConfig()
	null.Backend = BackendNull
	null.DeviceRate = 0
	if err := null.Validate(); err != nil {
		t.Errorf("null backend ignores device settings, Validate() = %v", err)
	}
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	opener := &RecorderOpener{}
	var seen int
	opener.OnWrite(func(spec Spec, p []byte) { seen += len(p) / spec.FrameBytes() })

	s, err := opener.Open(Spec{8000, 2})
	if err != nil {
		t.Fatal(err)
	}
	r := opener.Last()

	ctx := context.Background()
	if err := s.Write(ctx, frameData(5, 0.5, 0.5)); err != nil {
		t.Fatal(err)
	}

	cause := errors.New("unplugged")
	r.FailWrites(1, cause)
	if err := s.Write(ctx, frameData(5, 0.5, 0.5)); !errors.Is(err, ErrDeviceError) || !errors.Is(err, cause) {
		t.Errorf("failed Write() error = %v", err)
	}
	if err := s.Write(ctx, frameData(3, 0.5, 0.5)); err != nil {
		t.Errorf("Write() after the failure error = %v", err)
	}

	if r.Frames() != 8 || seen != 8 {
		t.Errorf("recorded %d frames, hook saw %d, want 8", r.Frames(), seen)
	}
	if len(r.Bytes()) != 32 {
		t.Errorf("len(Bytes()) = %d, want 32", len(r.Bytes()))
	}

	_ = s.Close()
	if !r.Closed() {
		t.Error("Closed() = false after Close")
	}

	opener.FailOpen(ErrDeviceUnavailable)
	if _, err := opener.Open(Spec{8000, 2}); !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("Open() error = %v, want ErrDeviceUnavailable", err)
	}
	if len(opener.Opened()) != 1 {
		t.Errorf("Opened() has %d recorders, want 1", len(opener.Opened()))
	}
}
