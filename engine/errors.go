// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

var (
	// ErrNoTrack is returned by commands that need a loaded track.
	ErrNoTrack = errors.New("no track loaded")
	ErrClosed  = errors.New("engine closed")
	// ErrInboxFull means Post found the command inbox full.
	ErrInboxFull      = errors.New("engine inbox full")
	ErrAlreadyRunning = errors.New("engine already running")
	ErrUnknownCommand = errors.New("unknown command")
)
