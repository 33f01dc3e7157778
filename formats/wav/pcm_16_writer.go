// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ik5/audflow/utils"
)

// Writer streams interleaved float32 audio into a 16-bit PCM WAV file.
// The header is patched with the final sizes on Close.
type Writer struct {
	enc      *wav.Encoder
	channels int
	buf      *goaudio.IntBuffer
	frames   int64
}

func NewWriter(w io.WriteSeeker, sampleRate, channels int) (*Writer, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: rate=%d channels=%d", ErrUnsupportedWavLayout, sampleRate, channels)
	}

	return &Writer{
		enc:      wav.NewEncoder(w, sampleRate, 16, channels, formatPCM),
		channels: channels,
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: 16,
		},
	}, nil
}

// WriteSamples encodes whole frames from samples; a trailing partial frame
// is dropped.
func (w *Writer) WriteSamples(samples []float32) error {
	n := len(samples) - len(samples)%w.channels
	if n == 0 {
		return nil
	}

	data := w.data(n)
	for i, s := range samples[:n] {
		data[i] = int(utils.Float32ToInt16(s))
	}
	return w.encode()
}

// WriteS16LE encodes little endian 16-bit PCM without converting it, so
// the file holds exactly the given samples. A trailing partial frame is
// dropped.
func (w *Writer) WriteS16LE(p []byte) error {
	n := len(p) / 2
	n -= n % w.channels
	if n == 0 {
		return nil
	}

	data := w.data(n)
	for i := range data {
		data[i] = int(int16(binary.LittleEndian.Uint16(p[2*i:])))
	}
	return w.encode()
}

func (w *Writer) data(n int) []int {
	if cap(w.buf.Data) < n {
		w.buf.Data = make([]int, n)
	}
	w.buf.Data = w.buf.Data[:n]
	return w.buf.Data
}

func (w *Writer) encode() error {
	n := len(w.buf.Data)
	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("%w", err)
	}
	w.frames += int64(n / w.channels)

	return nil
}

// Frames is the number of frames written so far.
func (w *Writer) Frames() int64 { return w.frames }

// Close finalises the header. The underlying writer is left open.
func (w *Writer) Close() error {
	if w.frames == 0 {
		// forces the RIFF and data headers out for an empty file
		w.buf.Data = w.buf.Data[:0]
		if err := w.enc.Write(w.buf); err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// WriteWAV16 writes samples as a complete 16-bit PCM WAV file.
func WriteWAV16(w io.WriteSeeker, sampleRate, channels int, samples []float32) error {
	ww, err := NewWriter(w, sampleRate, channels)
	if err != nil {
		return err
	}
	if err := ww.WriteSamples(samples); err != nil {
		return err
	}
	return ww.Close()
}
