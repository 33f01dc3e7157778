// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"errors"
	"fmt"
	"time"
)

const (
	BackendSpeaker = "speaker"
	BackendWAV     = "wav"
	BackendNull    = "null"
)

// Config selects and tunes the output backend.
type Config struct {
	Backend string `mapstructure:"backend"`
	// DeviceRate is the rate the speaker is opened at. Tracks at other rates
	// are resampled.
	DeviceRate int `mapstructure:"device_rate"`
	// Latency is the device callback buffer.
	Latency time.Duration `mapstructure:"latency"`
	// Buffer is how much audio a speaker sink queues ahead of the device.
	Buffer       time.Duration `mapstructure:"buffer"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// RecordPath is the file the wav backend writes. "{n}" is replaced by
	// the number of the recording.
	RecordPath string `mapstructure:"record_path"`
}

func DefaultConfig() Config {
	return Config{
		Backend:      BackendSpeaker,
		DeviceRate:   44100,
		Latency:      100 * time.Millisecond,
		Buffer:       500 * time.Millisecond,
		WriteTimeout: 2 * time.Second,
		RecordPath:   "audflow-{n}.wav",
	}
}

func (c Config) Validate() error {
	var errs []error

	switch c.Backend {
	case BackendSpeaker, BackendWAV, BackendNull:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend))
	}

	if c.Backend == BackendSpeaker {
		if err := (Spec{SampleRate: c.DeviceRate, Channels: 2}).Validate(); err != nil {
			errs = append(errs, fmt.Errorf("device_rate: %w", err))
		}
		if c.Latency <= 0 {
			errs = append(errs, fmt.Errorf("latency must be positive, got %s", c.Latency))
		}
		if c.Buffer < c.Latency {
			errs = append(errs, fmt.Errorf("buffer %s is shorter than latency %s", c.Buffer, c.Latency))
		}
		if c.WriteTimeout <= 0 {
			errs = append(errs, fmt.Errorf("write_timeout must be positive, got %s", c.WriteTimeout))
		}
	}

	if c.Backend == BackendWAV && c.RecordPath == "" {
		errs = append(errs, errors.New("record_path is required for the wav backend"))
	}

	return errors.Join(errs...)
}
