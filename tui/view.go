// SPDX-License-Identifier: EPL-2.0

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ik5/audflow/engine"
	"github.com/ik5/audflow/playhead"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	stateStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	statusStyle = lipgloss.NewStyle().Faint(true)
	cueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

func (m Model) View() string {
	var sb strings.Builder

	state := m.player.State()
	sb.WriteString(titleStyle.Render(m.title) + "  " + stateStyle.Render(state.String()) + "\n\n")

	head, loaded := m.player.Playhead().Get()
	buf := m.player.Preview()

	if loaded && buf != nil {
		center := buf.IndexOf(head.TS)
		sb.WriteString(renderWave(buf.Window(center, m.width), m.width, waveHeight, waveGain) + "\n")
		sb.WriteString(renderMarker(m.width, m.width/2) + "\n\n")

		sb.WriteString(renderWave(buf.Overview(m.width), m.width, overHeight, waveGain) + "\n")
		pos := 0
		if p, ok := head.Progress().Get(); ok {
			pos = int(p * float64(m.width-1))
		}
		sb.WriteString(renderMarker(m.width, pos) + "\n")

		if analysed, ok := buf.Progress().Get(); ok && analysed < 100 {
			sb.WriteString(statusStyle.Render(fmt.Sprintf("analysing %d%%", analysed)) + "\n")
		}
		sb.WriteString("\n")

		sb.WriteString(m.bar.ViewAs(head.Progress().OrEmpty()) + "  " + head.String() + "\n")
		sb.WriteString(renderCues(m.player.Cues()) + "\n")
	} else if state == engine.Unloaded {
		sb.WriteString(statusStyle.Render("no track loaded") + "\n")
	}

	sb.WriteString("\n" + statusStyle.Render(m.status) + "\n")
	sb.WriteString(m.help.View(m.keys))

	return sb.String()
}

func renderCues(cues playhead.CueSet) string {
	parts := make([]string, 0, cues.Len())
	for _, c := range cues.List() {
		name := c.ID
		if name == playhead.MainCue {
			name = "cue"
		}
		parts = append(parts, cueStyle.Render(name)+" "+playhead.Clock(c.Head.Elapsed()))
	}
	return strings.Join(parts, "  ")
}
