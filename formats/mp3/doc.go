// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 audio file decoding.
//
// This package uses github.com/hajimehoshi/go-mp3 to decode MP3 files into
// an audio.Source. Output is always interleaved stereo float32 in
// [-1.0, 1.0] at the file's sample rate.
//
// When the input is an io.Seeker the source also reports its length in
// frames and seeks natively:
//
//	file, _ := fs.Open("audio.mp3")
//	source, err := mp3.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//	frames := source.(audio.FrameCounter).Frames()
//	_, _ = source.(audio.FrameSeeker).SeekFrame(frames / 2)
//
// MP3 writing is not supported.
package mp3
