// SPDX-License-Identifier: EPL-2.0

package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ik5/audflow/engine"
	"github.com/ik5/audflow/playhead"
	"github.com/ik5/audflow/preview"
	"github.com/samber/mo"
)

// Player is the part of the engine the UI drives.
type Player interface {
	Post(cmd engine.Command) error
	State() engine.State
	Playhead() mo.Option[playhead.Playhead]
	Preview() *preview.Buffer
	Cues() playhead.CueSet
	Status() engine.Event
	Events() <-chan engine.Event
}

const (
	refreshEvery = 50 * time.Millisecond
	defaultWidth = 80
	waveHeight   = 8
	overHeight   = 2
	waveGain     = 2.5
)

type (
	tickMsg         time.Time
	eventMsg        engine.Event
	eventsClosedMsg struct{}
)

func tick() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func waitEvent(events <-chan engine.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

type Model struct {
	player Player
	title  string
	skip   time.Duration

	keys  keyMap
	help  help.Model
	bar   progress.Model
	width int

	status string
}

// New returns the UI model for a player that is loading or has loaded
// title.
func New(player Player, title string, skip time.Duration) Model {
	m := Model{
		player: player,
		title:  title,
		skip:   skip,
		keys:   newKeyMap(),
		help:   help.New(),
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
	m.resize(defaultWidth)
	return m
}

func (m *Model) resize(width int) {
	m.width = max(width, 20)
	m.help.Width = m.width
	m.bar.Width = m.width - 24
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), waitEvent(m.player.Events()))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width)
		return m, nil

	case tickMsg:
		return m, tick()

	case eventMsg:
		if ev := engine.Event(msg); ev.Kind != engine.EventPacketPlayed {
			m.status = ev.String()
		}
		return m, waitEvent(m.player.Events())

	case eventsClosedMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd engine.Command

	switch {
	case key.Matches(msg, m.keys.quit):
		_ = m.player.Post(engine.Close())
		return m, tea.Quit
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.togglePlay):
		cmd = engine.TogglePlay()
	case key.Matches(msg, m.keys.cue):
		cmd = engine.Cue(playhead.MainCue)
	case key.Matches(msg, m.keys.hotCue):
		cmd = engine.Cue(msg.String())
	case key.Matches(msg, m.keys.forward):
		cmd = engine.SkipForward(m.skip)
	case key.Matches(msg, m.keys.backward):
		cmd = engine.SkipBackward(m.skip)
	case key.Matches(msg, m.keys.stop):
		cmd = engine.Stop()
	default:
		return m, nil
	}

	if err := m.player.Post(cmd); err != nil {
		m.status = err.Error()
	}
	return m, nil
}
