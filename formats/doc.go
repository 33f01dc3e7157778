// SPDX-License-Identifier: EPL-2.0

// Package formats wires the container decoders to a filesystem.
//
// DefaultRegistry maps file extensions to the wav, mp3, vorbis and aiff
// decoders. An Opener resolves a path through the registry, decodes it from
// an afero.Fs and returns an audio.Stream of fixed size packets:
//
//	opener := formats.NewOpener(afero.NewOsFs(), nil, 0)
//	stream, err := opener.Open("song.mp3")
//	if err != nil {
//	    // audio.ErrNotFound or audio.ErrUnsupportedFormat
//	}
//	defer stream.Close()
package formats
