// SPDX-License-Identifier: EPL-2.0

package formats

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/ik5/audflow/audio"
	"github.com/ik5/audflow/formats/aiff"
	"github.com/ik5/audflow/formats/mp3"
	"github.com/ik5/audflow/formats/vorbis"
	"github.com/ik5/audflow/formats/wav"
	"github.com/spf13/afero"
)

// DefaultRegistry returns a registry with every built in decoder keyed by
// file extension.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()

	for _, ext := range []string{"wav", "wave"} {
		reg.Register(ext, wav.Decoder{})
	}
	reg.Register("mp3", mp3.Decoder{})
	for _, ext := range []string{"ogg", "oga"} {
		reg.Register(ext, vorbis.Decoder{})
	}
	for _, ext := range []string{"aif", "aiff"} {
		reg.Register(ext, aiff.Decoder{})
	}

	return reg
}

// Opener opens tracks from a filesystem and exposes them as packet streams.
type Opener struct {
	fs           afero.Fs
	registry     *audio.Registry
	packetFrames int
}

// NewOpener builds an Opener. A nil registry selects DefaultRegistry and a
// packetFrames of 0 selects audio.DefaultPacketFrames.
func NewOpener(fsys afero.Fs, registry *audio.Registry, packetFrames int) *Opener {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if packetFrames <= 0 {
		packetFrames = audio.DefaultPacketFrames
	}

	return &Opener{
		fs:           fsys,
		registry:     registry,
		packetFrames: packetFrames,
	}
}

// Format returns the registry key for path.
func Format(path string) string {
	return audio.NormalizeFormat(filepath.Ext(path))
}

// Open decodes the file at path. The returned stream owns the file and
// closes it on Close.
func (o *Opener) Open(path string) (audio.Stream, error) {
	format := Format(path)
	dec, ok := o.registry.Get(format)
	if !ok {
		return nil, fmt.Errorf("%w: %q", audio.ErrUnsupportedFormat, path)
	}

	file, err := o.fs.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", audio.ErrNotFound, path)
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	src, err := dec.Decode(file)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("%w: %s: %w", audio.ErrUnsupportedFormat, path, err)
	}

	track, err := audio.NewTrack(path, format, src, o.packetFrames)
	if err != nil {
		_ = src.Close()
		_ = file.Close()
		return nil, err
	}

	return &fileStream{
		Packetizer: audio.NewPacketizer(src, track),
		file:       file,
	}, nil
}

type fileStream struct {
	*audio.Packetizer
	file afero.File
}

func (s *fileStream) Close() error {
	err := s.Packetizer.Close()
	if cerr := s.file.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w", cerr)
	}
	return err
}
