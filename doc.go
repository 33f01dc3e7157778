// SPDX-License-Identifier: EPL-2.0

// Command audflow is a terminal audio player with a streaming waveform
// preview.
//
// A track is decoded packet by packet on a single engine goroutine. Each
// packet is written to the audio sink and collapsed into the preview
// buffer, which the terminal UI reads without locking to draw a live window
// around the playhead and an overview of the whole track.
//
// # Usage
//
//	audflow play song.mp3
//	audflow play --headless --backend wav --record out-{n}.wav song.ogg
//	audflow analyze --width 100 --strategy bands song.wav
//	audflow config show
//
// # Supported Formats
//
//   - WAV (PCM 16-bit) via formats/wav
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - AIFF (PCM 16-bit) via formats/aiff
//
// # Configuration
//
// Settings come from defaults, then ./audflow.yaml or
// $HOME/.config/audflow/audflow.yaml, then AUDFLOW_* environment variables
// (audio.backend is AUDFLOW_AUDIO_BACKEND), then flags. Run
// "audflow config show" for the full list of keys.
//
// # Packages
//
//   - audio: the decoder service contract, packets, time bases, resampling
//   - formats: container decoders and the file opener
//   - playhead: playback position and cue points
//   - preview: the waveform preview buffer
//   - sink: audio outputs (speaker, wav recording, null)
//   - engine: the playback state machine
//   - tui: the terminal front-end
package main
