// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"fmt"
	"math"

	"github.com/ik5/audflow/formats/wav"
	"github.com/spf13/afero"
)

// SineSamples returns frames of interleaved sine at freq Hz and amplitude 0.5.
func SineSamples(sampleRate, channels, frames int, freq float64) []float32 {
	out := make([]float32, frames*channels)
	for f := range frames {
		v := float32(0.5 * math.Sin(2*math.Pi*freq*float64(f)/float64(sampleRate)))
		for ch := range channels {
			out[f*channels+ch] = v
		}
	}
	return out
}

// WriteWAVFixture stores samples as a 16-bit WAV file at path on fs.
func WriteWAVFixture(fs afero.Fs, path string, sampleRate, channels int, samples []float32) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("creating fixture %s: %w", path, err)
	}
	defer f.Close()

	return wav.WriteWAV16(f, sampleRate, channels, samples)
}

// NewWAVFs returns an in-memory filesystem holding one sine WAV at path.
func NewWAVFs(path string, sampleRate, channels, frames int) (afero.Fs, error) {
	fs := afero.NewMemMapFs()
	if err := WriteWAVFixture(fs, path, sampleRate, channels, SineSamples(sampleRate, channels, frames, 440)); err != nil {
		return nil, err
	}
	return fs, nil
}
