// SPDX-License-Identifier: EPL-2.0

package engine

// State is the playback state of an Engine.
type State int32

const (
	Unloaded State = iota
	Paused
	Playing
	Closed
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Paused:
		return "paused"
	case Playing:
		return "playing"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}
