// SPDX-License-Identifier: EPL-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ik5/audflow/preview"
)

// eighths of a cell, from empty to full
var blocks = []rune(" ▁▂▃▄▅▆▇█")

// transientRise is the level increase between neighbouring columns that
// marks a transient.
const transientRise = 0.1

var (
	waveStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	transientStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	lowStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	midStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	highStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	markerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// column returns the cells of one bar from the bottom row up.
func column(level float32, height int, gain float32) []rune {
	v := min(level*gain, 1) * float32(height)

	cells := make([]rune, height)
	for row := range height {
		fill := min(max(v-float32(row), 0), 1)
		cells[row] = blocks[int(fill*8+0.5)]
	}
	return cells
}

// magnitude is the bar height of s; mono levels are signed.
func magnitude(s preview.Sample) float32 {
	if s.Level < 0 {
		return -s.Level
	}
	return s.Level
}

func styleFor(prev, cur preview.Sample) lipgloss.Style {
	if magnitude(cur)-magnitude(prev) > transientRise {
		return transientStyle
	}

	switch {
	case cur.Low == 0 && cur.Mid == 0 && cur.High == 0:
		return waveStyle
	case cur.Low >= cur.Mid && cur.Low >= cur.High:
		return lowStyle
	case cur.Mid >= cur.High:
		return midStyle
	default:
		return highStyle
	}
}

// renderWave draws samples as bars height rows tall, one column per sample.
// Columns past the end of samples stay blank up to width.
func renderWave(samples []preview.Sample, width, height int, gain float32) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	cols := make([][]rune, width)
	styles := make([]lipgloss.Style, width)
	var prev preview.Sample
	for x := range width {
		if x >= len(samples) {
			cols[x] = column(0, height, gain)
			styles[x] = waveStyle
			continue
		}
		cols[x] = column(magnitude(samples[x]), height, gain)
		styles[x] = styleFor(prev, samples[x])
		prev = samples[x]
	}

	rows := make([]string, height)
	var sb strings.Builder
	for r := range height {
		sb.Reset()
		row := height - 1 - r
		for x := range width {
			sb.WriteString(styles[x].Render(string(cols[x][row])))
		}
		rows[r] = sb.String()
	}

	return strings.Join(rows, "\n")
}

// renderMarker is a line of width cells with a marker at pos.
func renderMarker(width, pos int) string {
	if width <= 0 {
		return ""
	}
	pos = min(max(pos, 0), width-1)
	return strings.Repeat(" ", pos) + markerStyle.Render("▲") + strings.Repeat(" ", width-pos-1)
}

// Wave renders a static waveform, as printed by the analyze command.
func Wave(samples []preview.Sample, width, height int) string {
	return renderWave(samples, width, height, waveGain)
}
