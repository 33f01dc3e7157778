// SPDX-License-Identifier: EPL-2.0

// Package audio provides the decoding contract and low-level PCM primitives
// the player is built on.
//
// # Sources
//
// Every format decoder produces a Source, a pull based reader of interleaved
// float32 samples:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Sources that can reposition implement FrameSeeker, and those that know
// their length implement FrameCounter.
//
// # Streams and packets
//
// The playback engine does not read sources directly. It reads a Stream,
// which hands out timestamped Packets and can seek to a Timestamp:
//
//	track, _ := audio.NewTrack(path, "wav", src, audio.DefaultPacketFrames)
//	stream := audio.NewPacketizer(src, track)
//	pkt, err := stream.ReadPacket()
//
// Timestamps count frames. A TimeBase converts them to time.Duration and
// back with pure integer arithmetic, so the same input always yields the
// same output.
//
// # Errors
//
// ReadPacket reports three kinds of failure:
//   - ErrEndOfStream: the track is over, this is not an error condition
//   - *DecodeError: one packet was malformed, skip it and keep reading
//   - ErrResetRequired: the PCM layout changed, the stream must be reopened
//
// Opening reports ErrNotFound, ErrUnsupportedFormat or ErrNoDecodableTrack.
// Seeking reports ErrSeekFailed or ErrInvalidTimestamp and leaves the
// stream position untouched.
//
// # Resampling and mixing
//
// The Resampler changes the sample rate of a Source using cubic
// interpolation and is used to bridge a track to the output device rate:
//
//	resampler := audio.NewResampler(source, 48000)
//
// MixDown averages interleaved frames to mono and is used by the preview
// analysis.
//
// # Sample Format
//
// Audio samples are represented as float32 in the range [-1.0, 1.0]:
//   - 0.0 represents silence
//   - 1.0 represents maximum positive amplitude
//   - -1.0 represents maximum negative amplitude
package audio
