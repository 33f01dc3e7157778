// SPDX-License-Identifier: EPL-2.0

package preview

import (
	"errors"
	"fmt"
)

// Config controls how the engine builds and fills preview buffers.
type Config struct {
	// ChunkFrames overrides the chunk size. 0 derives it from the track.
	ChunkFrames int    `mapstructure:"chunk_frames"`
	Strategy    string `mapstructure:"strategy"`
	// Prescan analyses the whole track on a second stream ahead of playback.
	Prescan bool `mapstructure:"prescan"`
	// PrescanStep is the number of packets analysed per engine iteration.
	PrescanStep int `mapstructure:"prescan_step"`
}

func DefaultConfig() Config {
	return Config{
		Strategy:    string(StrategyMono),
		Prescan:     true,
		PrescanStep: 4,
	}
}

func (c Config) Validate() error {
	var errs []error

	if c.ChunkFrames < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidChunkSize, c.ChunkFrames))
	}
	if _, err := ParseStrategy(c.Strategy); err != nil {
		errs = append(errs, err)
	}
	if c.Prescan && c.PrescanStep <= 0 {
		errs = append(errs, fmt.Errorf("prescan_step must be positive, got %d", c.PrescanStep))
	}

	return errors.Join(errs...)
}
