// SPDX-License-Identifier: EPL-2.0

// Package wav provides WAV audio file decoding and encoding.
//
// Decoding and encoding are built on github.com/go-audio/wav, which walks
// the RIFF chunks so files with LIST or other extra chunks before the data
// chunk decode correctly.
//
// # Supported Formats
//
//   - Integer PCM at 8 (unsigned), 16, 24 and 32 bits
//   - Any channel count
//   - Any sample rate
//
// # Decoding WAV Files
//
//	file, _ := fs.Open("audio.wav")
//	source, err := wav.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
// The returned source implements audio.FrameSeeker and audio.FrameCounter.
// Seeking rewinds to the start of the data chunk and skips forward, which is
// exact for uncompressed audio. Decode buffers non-seekable readers in memory.
//
// # Writing WAV Files
//
// Writer streams float32 samples into a 16-bit PCM file and is what the
// recording sink uses:
//
//	w, _ := wav.NewWriter(file, 44100, 2)
//	_ = w.WriteSamples(samples)
//	_ = w.Close()
//
// WriteWAV16 writes a whole buffer in one call.
//
// # Error Handling
//
//   - ErrNotWavFile: the input is not a RIFF/WAVE file
//   - ErrOnlyPCMSupported: the format tag is not integer PCM
//   - ErrUnsupportedBitDepth: the bit depth is not 8, 16, 24 or 32
//   - ErrUnsupportedWavLayout: no channels or no sample rate
//   - ErrUnsupportedWavChunks: the data chunk could not be located
package wav
