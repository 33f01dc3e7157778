// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files with github.com/jfreymuth/oggvorbis.
//
// Sources keep the stream's native channel count and sample rate. Length and
// seeking use the reader's sample-accurate SetPosition and need a seekable
// input; on plain readers Frames returns -1 and SeekFrame fails.
package vorbis
