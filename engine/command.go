// SPDX-License-Identifier: EPL-2.0

package engine

import "time"

// CommandKind names an engine operation.
type CommandKind int

const (
	KindLoad CommandKind = iota + 1
	KindTogglePlay
	KindCue
	KindSkipForward
	KindSkipBackward
	KindSeekTo
	KindStop
	KindClose
)

func (k CommandKind) String() string {
	switch k {
	case KindLoad:
		return "load"
	case KindTogglePlay:
		return "toggle-play"
	case KindCue:
		return "cue"
	case KindSkipForward:
		return "skip-forward"
	case KindSkipBackward:
		return "skip-backward"
	case KindSeekTo:
		return "seek"
	case KindStop:
		return "stop"
	case KindClose:
		return "close"
	default:
		return "unknown"
	}
}

// Command is a request for the engine goroutine. Build one with the
// constructors below.
type Command struct {
	Kind   CommandKind
	Path   string
	Offset time.Duration
	CueID  string

	reply chan error
}

func (c Command) respond(err error) {
	if c.reply != nil {
		c.reply <- err
	}
}

// Load opens path, replacing the current track.
func Load(path string) Command { return Command{Kind: KindLoad, Path: path} }

// TogglePlay switches between playing and paused.
func TogglePlay() Command { return Command{Kind: KindTogglePlay} }

// Cue stores the playhead under id while not playing and jumps back to it
// while playing. The main cue has id "".
func Cue(id string) Command { return Command{Kind: KindCue, CueID: id} }

func SkipForward(d time.Duration) Command {
	return Command{Kind: KindSkipForward, Offset: d}
}

func SkipBackward(d time.Duration) Command {
	return Command{Kind: KindSkipBackward, Offset: d}
}

// SeekTo jumps to an absolute position.
func SeekTo(d time.Duration) Command { return Command{Kind: KindSeekTo, Offset: d} }

// Stop pauses and returns to the start of the track.
func Stop() Command { return Command{Kind: KindStop} }

// Close ends Run. It is the only command that stops the engine.
func Close() Command { return Command{Kind: KindClose} }
