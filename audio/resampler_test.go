// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"math"
	"testing"
)

func drainResampler(t *testing.T, r *Resampler, bufSize int) []float32 {
	t.Helper()

	buf := make([]float32, bufSize)
	var out []float32
	for {
		n, err := r.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
}

func TestResampler_Metadata(t *testing.T) {
	t.Parallel()

	src := newSilentSource(44100, 2, 1000)
	resampler := NewResampler(src, 48000)

	if resampler.SampleRate() != 48000 {
		t.Errorf("Resampler.SampleRate() = %d, want 48000", resampler.SampleRate())
	}

	if resampler.Channels() != 2 {
		t.Errorf("Resampler.Channels() = %d, want 2", resampler.Channels())
	}
}

func TestResampler_OutputLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		srcRate   int
		dstRate   int
		tolerance int
	}{
		{"same rate", 22050, 22050, 10},
		{"44.1k to 48k", 44100, 48000, 100},
		{"48k to 44.1k", 48000, 44100, 100},
		{"8k to 44.1k", 8000, 44100, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// one second of audio in, one second out
			src := newSineSource(tt.srcRate, 1, tt.srcRate, 440.0)
			out := drainResampler(t, NewResampler(src, tt.dstRate), 1024)

			if len(out) < tt.dstRate-tt.tolerance || len(out) > tt.dstRate+tt.tolerance {
				t.Errorf("resampled %d samples, want ≈%d (±%d)", len(out), tt.dstRate, tt.tolerance)
			}

			for i, s := range out {
				if s < -1.5 || s > 1.5 {
					t.Fatalf("out[%d] = %v, outside [-1.5, 1.5]", i, s)
				}
			}
		})
	}
}

func TestResampler_StereoPreserved(t *testing.T) {
	t.Parallel()

	src := newMockSource(44100, 2, 1000, func(sample int, channel int) float32 {
		if channel == 0 {
			return 0.3
		}
		return 0.7
	})

	out := drainResampler(t, NewResampler(src, 48000), 20)

	for f := 0; f+1 < len(out); f += 2 {
		if math.Abs(float64(out[f]-0.3)) > 0.05 || math.Abs(float64(out[f+1]-0.7)) > 0.05 {
			t.Fatalf("frame %d = (%v, %v), want ≈(0.3, 0.7)", f/2, out[f], out[f+1])
		}
	}
}

func TestResampler_EOFIsSticky(t *testing.T) {
	t.Parallel()

	resampler := NewResampler(newSilentSource(44100, 1, 100), 8000)

	if out := drainResampler(t, resampler, 1024); len(out) == 0 {
		t.Error("no samples read before EOF")
	}

	n, err := resampler.ReadSamples(make([]float32, 16))
	if err != io.EOF || n != 0 {
		t.Errorf("after EOF ReadSamples() = (%d, %v), want (0, io.EOF)", n, err)
	}
}

func TestResampler_InvalidDstSize(t *testing.T) {
	t.Parallel()

	resampler := NewResampler(newSilentSource(44100, 2, 1000), 8000)

	if _, err := resampler.ReadSamples(make([]float32, 7)); err != ErrInvalidDstSize {
		t.Errorf("ReadSamples() error = %v, want ErrInvalidDstSize", err)
	}
}

func TestResampler_Reset(t *testing.T) {
	t.Parallel()

	src := newConstantSource(48000, 1, 4800, 0.8)
	resampler := NewResampler(src, 48000)

	_ = drainResampler(t, resampler, 256)

	// new material after a reset must not be blended with the old tail
	src.Reset()
	src.waveform = func(int, int) float32 { return -0.4 }
	resampler.Reset()

	buf := make([]float32, 64)
	n, err := resampler.ReadSamples(buf)
	if err != nil {
		t.Fatalf("ReadSamples() after Reset error = %v", err)
	}
	for i := range n {
		if math.Abs(float64(buf[i]+0.4)) > 1e-4 {
			t.Fatalf("buf[%d] = %v, want -0.4", i, buf[i])
		}
	}
}

func BenchmarkResampler_44k1To48k(b *testing.B) {
	src := newSineSource(44100, 2, 100000, 440.0)
	resampler := NewResampler(src, 48000)
	buf := make([]float32, 4096)

	b.ReportAllocs()

	for b.Loop() {
		src.Reset()
		resampler.Reset()
		for {
			if _, err := resampler.ReadSamples(buf); err == io.EOF {
				break
			}
		}
	}
}
