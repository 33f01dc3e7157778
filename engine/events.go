// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/ik5/audflow/audio"
	"github.com/ik5/audflow/playhead"
)

// EventKind classifies engine notifications.
type EventKind int

const (
	EventNone EventKind = iota
	EventLoaded
	EventStateChanged
	EventPacketPlayed
	EventFinished
	EventDecodeFailed
	EventSinkFailed
	EventSeekFailed
	EventReset
	EventLoadFailed
	EventClosed
)

func (k EventKind) String() string {
	switch k {
	case EventLoaded:
		return "loaded"
	case EventStateChanged:
		return "state-changed"
	case EventPacketPlayed:
		return "packet-played"
	case EventFinished:
		return "finished"
	case EventDecodeFailed:
		return "decode-failed"
	case EventSinkFailed:
		return "sink-failed"
	case EventSeekFailed:
		return "seek-failed"
	case EventReset:
		return "reset"
	case EventLoadFailed:
		return "load-failed"
	case EventClosed:
		return "closed"
	default:
		return "none"
	}
}

// Event is a notification from the engine goroutine.
type Event struct {
	Kind    EventKind
	State   State
	TrackID uuid.UUID
	Path    string
	// Head is the playhead when the event was emitted.
	Head playhead.Playhead
	// TS is the timestamp the event is about, such as the packet played or
	// the packet that failed to decode.
	TS  audio.Timestamp
	Err error
}

// String renders the event as status text.
func (e Event) String() string {
	at := playhead.Clock(e.Head.TimeBase.CalcTime(e.TS))

	switch e.Kind {
	case EventLoaded:
		return "loaded " + filepath.Base(e.Path)
	case EventStateChanged:
		return e.State.String()
	case EventPacketPlayed:
		return "playing " + at
	case EventFinished:
		return "finished"
	case EventDecodeFailed:
		return fmt.Sprintf("decode error at %s: %v", at, e.Err)
	case EventSinkFailed:
		return fmt.Sprintf("audio output error: %v", e.Err)
	case EventSeekFailed:
		return fmt.Sprintf("seek failed: %v", e.Err)
	case EventReset:
		return "stream changed format, restarted track"
	case EventLoadFailed:
		return fmt.Sprintf("cannot load %s: %v", filepath.Base(e.Path), e.Err)
	case EventClosed:
		return "closed"
	default:
		return ""
	}
}
