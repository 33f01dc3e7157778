// SPDX-License-Identifier: EPL-2.0

package sink

import "errors"

var (
	// ErrDeviceUnavailable means no output device could be opened.
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	ErrUnsupportedSpec   = errors.New("unsupported sink spec")
	// ErrBackpressure is returned when the device did not drain in time.
	ErrBackpressure = errors.New("sink is not draining")
	ErrDeviceError  = errors.New("audio device error")
	ErrClosed       = errors.New("sink closed")

	ErrUnknownBackend = errors.New("unknown sink backend")
)
