// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"slices"
	"testing"
)

func newTestPacketizer(t *testing.T, src Source, packetFrames int) *Packetizer {
	t.Helper()

	track, err := NewTrack("test.wav", "wav", src, packetFrames)
	if err != nil {
		t.Fatalf("NewTrack() error = %v", err)
	}
	return NewPacketizer(src, track)
}

func TestPacketizer_TimestampsAndSizes(t *testing.T) {
	t.Parallel()

	p := newTestPacketizer(t, newConstantSource(8000, 2, 2500, 0.5), 1000)

	wantTS := []Timestamp{0, 1000, 2000}
	wantFrames := []int{1000, 1000, 500}

	for i := range wantTS {
		pkt, err := p.ReadPacket()
		if err != nil {
			t.Fatalf("packet %d: ReadPacket() error = %v", i, err)
		}
		if pkt.TS != wantTS[i] || pkt.Frames != wantFrames[i] {
			t.Errorf("packet %d = (ts %d, frames %d), want (%d, %d)", i, pkt.TS, pkt.Frames, wantTS[i], wantFrames[i])
		}
		if len(pkt.Samples) != pkt.Frames*2 || pkt.Channels != 2 {
			t.Errorf("packet %d has %d samples for %d channels", i, len(pkt.Samples), pkt.Channels)
		}
	}

	if _, err := p.ReadPacket(); !errors.Is(err, ErrEndOfStream) {
		t.Errorf("ReadPacket() after last = %v, want ErrEndOfStream", err)
	}
	if _, err := p.ReadPacket(); !errors.Is(err, ErrEndOfStream) {
		t.Errorf("ReadPacket() end of stream is not sticky: %v", err)
	}
}

func TestPacketizer_DecodeErrorIsRecoverable(t *testing.T) {
	t.Parallel()

	src := newConstantSource(8000, 1, 500, 0.25)
	src.failAt = map[int]bool{200: true}
	p := newTestPacketizer(t, src, 100)

	var got []Timestamp
	var failed []Timestamp
	for {
		pkt, err := p.ReadPacket()
		if errors.Is(err, ErrEndOfStream) {
			break
		}
		var de *DecodeError
		if errors.As(err, &de) {
			failed = append(failed, de.TS)
			continue
		}
		if err != nil {
			t.Fatalf("ReadPacket() error = %v", err)
		}
		got = append(got, pkt.TS)
	}

	if len(failed) != 1 || failed[0] != 200 {
		t.Errorf("decode errors at %v, want [200]", failed)
	}
	if want := []Timestamp{0, 100, 300, 400}; !slices.Equal(got, want) {
		t.Errorf("packets at %v, want %v", got, want)
	}
}

func TestPacketizer_Seek(t *testing.T) {
	t.Parallel()

	p := newTestPacketizer(t, newSineSource(8000, 1, 8000, 440), 256)

	ts, err := p.Seek(4000)
	if err != nil || ts != 4000 {
		t.Fatalf("Seek(4000) = (%d, %v), want (4000, nil)", ts, err)
	}

	pkt, err := p.ReadPacket()
	if err != nil || pkt.TS != 4000 {
		t.Errorf("ReadPacket() after seek = (ts %d, %v), want ts 4000", pkt.TS, err)
	}

	if _, err := p.Seek(9000); !errors.Is(err, ErrInvalidTimestamp) {
		t.Errorf("Seek past end error = %v, want ErrInvalidTimestamp", err)
	}
	if p.Position() != 4256 {
		t.Errorf("Position() after failed seek = %d, want 4256", p.Position())
	}
}

func TestPacketizer_SeekRevivesEndOfStream(t *testing.T) {
	t.Parallel()

	p := newTestPacketizer(t, newSilentSource(8000, 1, 300), 256)
	for {
		if _, err := p.ReadPacket(); errors.Is(err, ErrEndOfStream) {
			break
		}
	}

	if _, err := p.Seek(0); err != nil {
		t.Fatalf("Seek(0) error = %v", err)
	}
	if pkt, err := p.ReadPacket(); err != nil || pkt.TS != 0 {
		t.Errorf("ReadPacket() after rewind = (%d, %v), want (0, nil)", pkt.TS, err)
	}
}

func TestPacketizer_SeekUnsupported(t *testing.T) {
	t.Parallel()

	src := struct{ Source }{newSilentSource(8000, 1, 300)}
	p := newTestPacketizer(t, src, 64)

	_, err := p.Seek(10)
	if !errors.Is(err, ErrSeekFailed) || !errors.Is(err, ErrNotSeekable) {
		t.Errorf("Seek() on plain source error = %v, want ErrSeekFailed wrapping ErrNotSeekable", err)
	}
}

type layoutSwitchSource struct {
	*mockSource
	reads int
}

func (s *layoutSwitchSource) Channels() int {
	if s.reads > 0 {
		return 1
	}
	return s.mockSource.Channels()
}

func (s *layoutSwitchSource) ReadSamples(dst []float32) (int, error) {
	s.reads++
	return s.mockSource.ReadSamples(dst)
}

func TestPacketizer_LayoutChangeNeedsReset(t *testing.T) {
	t.Parallel()

	src := &layoutSwitchSource{mockSource: newSilentSource(8000, 2, 1000)}
	p := newTestPacketizer(t, src, 100)

	if _, err := p.ReadPacket(); err != nil {
		t.Fatalf("first ReadPacket() error = %v", err)
	}
	if _, err := p.ReadPacket(); !errors.Is(err, ErrResetRequired) {
		t.Errorf("ReadPacket() after layout change = %v, want ErrResetRequired", err)
	}
}

func TestNewTrack(t *testing.T) {
	t.Parallel()

	track, err := NewTrack("/music/a.MP3", ".MP3", newSilentSource(44100, 2, 441000), 1152)
	if err != nil {
		t.Fatalf("NewTrack() error = %v", err)
	}

	if track.Format != "mp3" {
		t.Errorf("Format = %q, want mp3", track.Format)
	}
	if d, ok := track.Duration().Get(); !ok || d != 441000 {
		t.Errorf("Duration() = (%d, %v), want (441000, true)", d, ok)
	}
	if n, _ := track.Params.MaxFramesPerPacket.Get(); n != 1152 {
		t.Errorf("MaxFramesPerPacket = %d, want 1152", n)
	}
	if track.Params.TimeBase != TimeBaseForRate(44100) {
		t.Errorf("TimeBase = %+v", track.Params.TimeBase)
	}

	other, _ := NewTrack("/music/a.MP3", "mp3", newSilentSource(44100, 2, 10), 0)
	if other.ID == track.ID {
		t.Error("two tracks share an ID")
	}
	if other.Params.MaxFramesPerPacket.IsPresent() {
		t.Error("MaxFramesPerPacket set for packetFrames=0")
	}

	if _, err := NewTrack("x", "wav", newSilentSource(0, 2, 10), 0); !errors.Is(err, ErrNoDecodableTrack) {
		t.Errorf("NewTrack() with zero rate error = %v, want ErrNoDecodableTrack", err)
	}
}
