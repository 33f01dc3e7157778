// SPDX-License-Identifier: EPL-2.0

package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	togglePlay, cue, hotCue,
	forward, backward, stop,
	help, quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		togglePlay: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "play/pause"),
		),
		cue: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cue"),
		),
		hotCue: key.NewBinding(
			key.WithKeys("1", "2", "3", "4"),
			key.WithHelp("1-4", "hot cue"),
		),
		forward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "skip forward"),
		),
		backward: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "skip back"),
		),
		stop: key.NewBinding(
			key.WithKeys("s", "home"),
			key.WithHelp("s", "stop"),
		),
		help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.togglePlay, k.cue, k.backward, k.forward, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.togglePlay, k.stop, k.cue, k.hotCue},
		{k.backward, k.forward},
		{k.help, k.quit},
	}
}
