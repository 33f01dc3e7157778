// SPDX-License-Identifier: EPL-2.0

// Package tui is the terminal front-end of the player. Keys become engine
// commands; every frame is drawn from the engine's snapshots.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the player until the user quits, the engine closes or ctx ends.
func Run(ctx context.Context, player Player, title string, skip time.Duration) error {
	prog := tea.NewProgram(New(player, title, skip), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := prog.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
