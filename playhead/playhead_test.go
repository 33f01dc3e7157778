// SPDX-License-Identifier: EPL-2.0

package playhead

import (
	"errors"
	"testing"
	"time"

	"github.com/ik5/audflow/audio"
	"github.com/samber/mo"
)

func testHead(ts audio.Timestamp) Playhead {
	return Playhead{
		TS:       ts,
		TimeBase: audio.TimeBaseForRate(44100),
		Duration: mo.Some(audio.Timestamp(441000)),
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	track := audio.Track{Params: audio.CodecParams{
		SampleRate: 8000,
		Channels:   1,
		TimeBase:   audio.TimeBaseForRate(8000),
		Frames:     mo.Some(uint64(16000)),
	}}

	p := New(track)
	if p.TS != 0 {
		t.Errorf("TS = %d, want 0", p.TS)
	}
	if total, ok := p.Total().Get(); !ok || total != 2*time.Second {
		t.Errorf("Total() = (%v, %v), want (2s, true)", total, ok)
	}
}

func TestPlayhead_AddTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		start audio.Timestamp
		d     time.Duration
		want  audio.Timestamp
	}{
		{"forward", 0, time.Second, 44100},
		{"backward", 88200, -time.Second, 44100},
		{"backward to start", 44100, -time.Second, 0},
		{"saturates at zero", 22050, -5 * time.Second, 0},
		{"zero offset", 1000, 0, 1000},
		{"sub frame offset", 1000, time.Microsecond, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			start := testHead(tt.start)
			got := start.AddTime(tt.d)
			if got.TS != tt.want {
				t.Errorf("AddTime(%v) from %d = %d, want %d", tt.d, tt.start, got.TS, tt.want)
			}
			if start.TS != tt.start {
				t.Error("AddTime modified the receiver")
			}
		})
	}
}

func TestPlayhead_Offset(t *testing.T) {
	t.Parallel()

	p := testHead(0)

	if ts, err := p.Offset(2 * time.Second); err != nil || ts != 88200 {
		t.Errorf("Offset(2s) = (%d, %v), want (88200, nil)", ts, err)
	}
	if ts, err := p.Offset(10 * time.Second); err != nil || ts != 441000 {
		t.Errorf("Offset(10s) = (%d, %v), want the last frame", ts, err)
	}

	_, err := p.Offset(-time.Second)
	if !errors.Is(err, audio.ErrInvalidTimestamp) || !errors.Is(err, ErrNegativeOffset) {
		t.Errorf("Offset(-1s) error = %v, want ErrInvalidTimestamp and ErrNegativeOffset", err)
	}
	if _, err := p.Offset(11 * time.Second); !errors.Is(err, audio.ErrInvalidTimestamp) {
		t.Errorf("Offset(11s) error = %v, want ErrInvalidTimestamp", err)
	}

	unknown := Playhead{TimeBase: audio.TimeBaseForRate(44100), Duration: mo.None[audio.Timestamp]()}
	if _, err := unknown.Offset(time.Hour); err != nil {
		t.Errorf("Offset() on unknown length error = %v, want nil", err)
	}
}

func TestPlayhead_Progress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		head Playhead
		want mo.Option[float64]
	}{
		{testHead(0), mo.Some(0.0)},
		{testHead(220500), mo.Some(0.5)},
		{testHead(441000), mo.Some(1.0)},
		{Playhead{TS: 10, TimeBase: audio.TimeBaseForRate(44100)}, mo.None[float64]()},
		{Playhead{TimeBase: audio.TimeBaseForRate(44100), Duration: mo.Some(audio.Timestamp(0))}, mo.Some(1.0)},
	}

	for _, tt := range tests {
		got := tt.head.Progress()
		if got.IsPresent() != tt.want.IsPresent() || got.OrEmpty() != tt.want.OrEmpty() {
			t.Errorf("Progress() at %d = %v, want %v", tt.head.TS, got, tt.want)
		}
	}
}

func TestPlayhead_ConversionIsPure(t *testing.T) {
	t.Parallel()

	p := testHead(12345)
	first := p.Elapsed()
	for range 100 {
		if got := p.Elapsed(); got != first {
			t.Fatalf("Elapsed() changed between calls: %v then %v", first, got)
		}
	}
	if p.Seconds() != first.Seconds() {
		t.Errorf("Seconds() = %v, want %v", p.Seconds(), first.Seconds())
	}
}

func TestClock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00.00"},
		{1500 * time.Millisecond, "0:01.50"},
		{61*time.Second + 5*time.Millisecond, "1:01.00"},
		{12*time.Minute + 3*time.Second + 990*time.Millisecond, "12:03.99"},
		{-time.Second, "0:00.00"},
	}

	for _, tt := range tests {
		if got := Clock(tt.d); got != tt.want {
			t.Errorf("Clock(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestPlayhead_String(t *testing.T) {
	t.Parallel()

	if got, want := testHead(66150).String(), "0:01.50 / 0:10.00"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	unknown := Playhead{TS: 44100, TimeBase: audio.TimeBaseForRate(44100)}
	if got, want := unknown.String(), "0:01.00 / --:--"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func BenchmarkPlayhead_AddTime(b *testing.B) {
	p := testHead(220500)
	for b.Loop() {
		p = p.AddTime(-time.Millisecond).AddTime(time.Millisecond)
	}
}
