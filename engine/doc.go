// SPDX-License-Identifier: EPL-2.0

// Package engine is the playback state machine.
//
// An Engine owns at most one loaded track. A single goroutine, the one
// running Run, reads packets from the track's stream, hands their PCM to the
// sink, advances the playhead and feeds the preview buffer. Everything else
// talks to it through commands:
//
//	e, _ := engine.New(opener, sinks)
//	go e.Run(ctx)
//
//	_ = e.Do(ctx, engine.Load("song.mp3"))
//	_ = e.Post(engine.TogglePlay())
//
// Readers such as a UI use the snapshot accessors (State, Playhead, Preview,
// Cues, Status) from any goroutine without locking, and may follow Events.
//
// The playhead is moved to a packet before that packet is written, so it
// never runs ahead of the audio given to the sink. Seeks that fail leave it
// where it was.
package engine
