// SPDX-License-Identifier: EPL-2.0

// Package sink provides audio outputs for the playback engine.
//
// A Sink accepts interleaved signed 16-bit little endian PCM in the layout
// given by its Spec. Three backends are available through New:
//
//   - speaker: the system audio device via github.com/gopxl/beep/v2. The
//     device is opened once per process at Config.DeviceRate; each sink keeps
//     a bounded queue that the device callback drains through the cubic
//     audio.Resampler. An empty queue plays silence and counts an underrun.
//   - wav: records to a 16-bit WAV file on an afero filesystem.
//   - null: discards audio, keeping only the counters.
//
// Write on a speaker sink blocks while the queue is full, until the context
// ends or Config.WriteTimeout passes, in which case it returns
// ErrBackpressure. Flush drops queued audio so a paused track does not
// replay stale samples when it resumes.
//
// Recorder and RecorderOpener keep written audio in memory and can inject
// failures, for tests of code that drives a sink.
package sink
