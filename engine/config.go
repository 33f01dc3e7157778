// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"fmt"
	"time"
)

type Config struct {
	InboxSize   int `mapstructure:"inbox_size"`
	EventBuffer int `mapstructure:"event_buffer"`
	// MaxDecodeErrors ends the track after that many consecutive bad
	// packets. 0 never gives up.
	MaxDecodeErrors int `mapstructure:"max_decode_errors"`
	// MaxResets bounds how often one load may reopen its stream in total.
	// Every reset starts the track over, so the count is kept until the
	// next Load.
	MaxResets int `mapstructure:"max_resets"`
	// SkipStep is the default skip distance of front-ends.
	SkipStep time.Duration `mapstructure:"skip_step"`
}

func DefaultConfig() Config {
	return Config{
		InboxSize:       16,
		EventBuffer:     64,
		MaxDecodeErrors: 32,
		MaxResets:       3,
		SkipStep:        5 * time.Second,
	}
}

func (c Config) Validate() error {
	var errs []error

	if c.InboxSize <= 0 {
		errs = append(errs, fmt.Errorf("inbox_size must be positive, got %d", c.InboxSize))
	}
	if c.EventBuffer < 0 {
		errs = append(errs, fmt.Errorf("event_buffer must not be negative, got %d", c.EventBuffer))
	}
	if c.MaxDecodeErrors < 0 {
		errs = append(errs, fmt.Errorf("max_decode_errors must not be negative, got %d", c.MaxDecodeErrors))
	}
	if c.MaxResets < 0 {
		errs = append(errs, fmt.Errorf("max_resets must not be negative, got %d", c.MaxResets))
	}
	if c.SkipStep <= 0 {
		errs = append(errs, fmt.Errorf("skip_step must be positive, got %s", c.SkipStep))
	}

	return errors.Join(errs...)
}
