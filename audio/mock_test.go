// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"math"
)

var errMockRead = errors.New("mock: corrupt frame")

// mockSource generates a waveform on the fly. It is seekable and counts
// frames so it can back a Packetizer in tests.
type mockSource struct {
	sampleRate   int
	channels     int
	totalSamples int // frames to generate
	generated    int // frames generated so far
	waveform     func(sample int, channel int) float32

	// failAt makes the read that starts at this frame fail with errMockRead.
	failAt map[int]bool
}

func newMockSource(sampleRate, channels, totalSamples int, waveform func(sample int, channel int) float32) *mockSource {
	return &mockSource{
		sampleRate:   sampleRate,
		channels:     channels,
		totalSamples: totalSamples,
		waveform:     waveform,
	}
}

func newSilentSource(sampleRate, channels, totalSamples int) *mockSource {
	return newMockSource(sampleRate, channels, totalSamples, func(int, int) float32 { return 0 })
}

func newSineSource(sampleRate, channels, totalSamples int, frequency float64) *mockSource {
	return newMockSource(sampleRate, channels, totalSamples, func(sample int, channel int) float32 {
		t := float64(sample) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

func newConstantSource(sampleRate, channels, totalSamples int, value float32) *mockSource {
	return newMockSource(sampleRate, channels, totalSamples, func(int, int) float32 { return value })
}

func (m *mockSource) SampleRate() int { return m.sampleRate }
func (m *mockSource) Channels() int   { return m.channels }
func (m *mockSource) BufSize() int    { return 4096 }
func (m *mockSource) Close() error    { return nil }
func (m *mockSource) Frames() int64   { return int64(m.totalSamples) }

func (m *mockSource) Reset() { m.generated = 0 }

func (m *mockSource) SeekFrame(frame int64) (int64, error) {
	if frame < 0 {
		return 0, errors.New("mock: negative frame")
	}
	m.generated = min(int(frame), m.totalSamples)
	return int64(m.generated), nil
}

func (m *mockSource) ReadSamples(dst []float32) (int, error) {
	if m.generated >= m.totalSamples {
		return 0, io.EOF
	}

	framesToWrite := min(len(dst)/m.channels, m.totalSamples-m.generated)

	if m.failAt[m.generated] {
		delete(m.failAt, m.generated)
		m.generated += framesToWrite
		return framesToWrite * m.channels, errMockRead
	}

	for frame := range framesToWrite {
		for ch := range m.channels {
			dst[frame*m.channels+ch] = m.waveform(m.generated+frame, ch)
		}
	}

	m.generated += framesToWrite
	if m.generated >= m.totalSamples {
		return framesToWrite * m.channels, io.EOF
	}

	return framesToWrite * m.channels, nil
}
