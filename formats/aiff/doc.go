// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding.
//
// This package uses github.com/go-audio/aiff to decode AIFF files, Apple's
// uncompressed PCM container.
//
// # Supported Formats
//
//   - PCM at 8, 16, 24 and 32 bits
//   - Any channel count
//   - Any sample rate
//
// # Decoding AIFF Files
//
//	file, _ := fs.Open("audio.aif")
//	source, err := aiff.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
// The decoder returns an audio.Source that provides samples as float32
// values normalized to the range [-1.0, 1.0]. The frame count comes from the
// COMM chunk.
//
// # Seeking
//
// aiff.Decoder cannot rewind, so seeking backwards parses the file again
// from the start and then skips forward to the requested frame. Forward
// seeks only skip. Non-seekable inputs are buffered in memory by Decode.
//
// # Error Handling
//
//   - ErrNotAiffFile: the input is not a FORM/AIFF file
//   - ErrUnsupportedBitDepth: the sample size is not supported
//   - ErrUnsupportedAiffLayout: no channels or no sample rate
package aiff
