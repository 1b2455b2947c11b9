// SPDX-License-Identifier: MIT

// Package tui holds the terminal surfaces: the live engine monitor and
// the capture device browser.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"kinetic/internal/kinetic"
	"kinetic/pkg/utils"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	lockedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C6C6C"))
)

const (
	meterWidth = 24
	trailRows  = 6
)

type tickMsg time.Time

// MonitorModel is the live dashboard over a running engine. It polls
// telemetry on its own refresh ticker; the engine keeps ticking in the
// main loop regardless.
type MonitorModel struct {
	engine  *kinetic.Engine
	refresh time.Duration

	telemetry kinetic.Telemetry
	width     int
	height    int
	ready     bool
	paused    bool
}

// NewMonitorModel builds a monitor polling at the given interval.
func NewMonitorModel(engine *kinetic.Engine, refresh time.Duration) MonitorModel {
	if refresh <= 0 {
		refresh = 33 * time.Millisecond
	}
	return MonitorModel{engine: engine, refresh: refresh}
}

func (m MonitorModel) Init() tea.Cmd {
	return m.tick()
}

func (m MonitorModel) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case tickMsg:
		if !m.paused {
			m.telemetry = m.engine.Telemetry()
		}
		return m, m.tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("q", "ctrl+c"))):
			return m, tea.Quit

		case key.Matches(msg, key.NewBinding(key.WithKeys(" "))):
			m.paused = !m.paused

		case key.Matches(msg, key.NewBinding(key.WithKeys("s"))):
			m.engine.TriggerStutter()

		case key.Matches(msg, key.NewBinding(key.WithKeys("g"))):
			m.engine.TriggerGlitch()

		case key.Matches(msg, key.NewBinding(key.WithKeys("a"))):
			m.engine.SetAutoBPM(!m.telemetry.AutoBPM)

		case key.Matches(msg, key.NewBinding(key.WithKeys("r"))):
			m.engine.ResetDetectors()
		}
	}

	return m, nil
}

func (m MonitorModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	t := m.telemetry

	header := titleStyle.Render("Kinetic Monitor")
	if m.paused {
		header += "  " + lockedStyle.Render("PAUSED")
	}
	header += "  " + dimStyle.Render("session "+t.SessionID)

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n\n")
	sb.WriteString(m.renderState(t))
	sb.WriteString("\n")
	sb.WriteString(m.renderTempo(t))
	sb.WriteString("\n")
	sb.WriteString(m.renderBands(t))
	sb.WriteString("\n")
	sb.WriteString(m.renderTrail(t))
	sb.WriteString("\n")
	sb.WriteString(m.renderPool(t))
	sb.WriteString("\n")
	sb.WriteString(m.renderHistory(t))
	sb.WriteString("\n")
	sb.WriteString(infoStyle.Render("s: stutter • g: glitch • a: auto bpm • r: reset detectors • space: pause • q: quit"))

	return sb.String()
}

func (m MonitorModel) renderState(t kinetic.Telemetry) string {
	lock := ""
	if t.Locked {
		lock = "  " + lockedStyle.Render("LOCKED")
	}
	line1 := fmt.Sprintf("%s  mode %s%s",
		highlightStyle.Render(string(t.Node)), t.Mode, lock)
	line2 := fmt.Sprintf("frame %s  pose %s  %s %3.0f%%",
		t.FrameID, t.PoseID, t.TransitionStyle, clamp01(t.TransitionProgress)*100)
	return line1 + "\n" + line2 + "\n"
}

func (m MonitorModel) renderTempo(t kinetic.Telemetry) string {
	auto := "manual"
	if t.AutoBPM {
		auto = "auto"
	}
	line1 := fmt.Sprintf("bpm %.1f (%s)  detected %.1f @ %.0f%%  beats %d",
		t.TargetBPM, auto, t.DetectedBPM, t.BPMConfidence*100, t.Beats)

	flags := ""
	if t.UpcomingBeat {
		flags += "  " + highlightStyle.Render("beat!")
	}
	if t.Peak {
		flags += "  " + highlightStyle.Render("peak!")
	}
	line2 := fmt.Sprintf("beat %s  bar %d  phrase %d%s",
		renderBeatBar(t.BeatPos, meterWidth), t.Bar, t.Phrase, flags)
	return line1 + "\n" + line2 + "\n"
}

func (m MonitorModel) renderBands(t kinetic.Telemetry) string {
	return renderMeter("bass", t.Bass, meterWidth) + "\n" +
		renderMeter("mid", t.Mid, meterWidth) + "\n" +
		renderMeter("high", t.High, meterWidth) + "\n" +
		renderMeter("energy", t.Energy, meterWidth) +
		fmt.Sprintf("  predicted %.2f  transients %d\n", t.PredictedEnergy, t.Transients)
}

func (m MonitorModel) renderTrail(t kinetic.Telemetry) string {
	trail := t.EnergyTrail
	if len(trail) < 2 {
		return dimStyle.Render("energy trail warming up") + "\n"
	}

	width := m.width - 12
	if width < 16 {
		width = 16
	}
	if len(trail) > width {
		trail = trail[len(trail)-width:]
	}

	peak := utils.FindPeakIndex(trail, 0, len(trail)-1)
	graph := asciigraph.Plot(trail,
		asciigraph.Height(trailRows),
		asciigraph.Precision(2),
		asciigraph.Caption(fmt.Sprintf("energy trail, peak %d ticks ago", len(trail)-1-peak)),
	)
	return graph + "\n"
}

func (m MonitorModel) renderPool(t kinetic.Telemetry) string {
	p := t.Pool
	if p.Total == 0 {
		return lockedStyle.Render("frame pool empty") + "\n"
	}
	return dimStyle.Render(fmt.Sprintf(
		"pool %d  low/mid/high %d/%d/%d  closeups %d  hands %d  feet %d  mandalas %d  acro %d  virtual %d",
		p.Total, p.Low, p.Mid, p.High, p.Closeups, p.Hands, p.Feet, p.Mandalas, p.Acrobatics, p.Virtuals)) + "\n"
}

func (m MonitorModel) renderHistory(t kinetic.Telemetry) string {
	if len(t.History) == 0 {
		return dimStyle.Render("no transitions yet") + "\n"
	}

	shown := 5
	if len(t.History) < shown {
		shown = len(t.History)
	}

	var sb strings.Builder
	sb.WriteString("recent moves\n")
	for i := len(t.History) - 1; i >= len(t.History)-shown; i-- {
		tr := t.History[i]
		sb.WriteString(fmt.Sprintf("  %s → %s  (%s, %s)\n", tr.From, tr.To, tr.Style, tr.Mode))
	}
	return sb.String()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// renderMeter draws a fixed-width level bar in [0,1].
func renderMeter(label string, v float64, width int) string {
	v = clamp01(v)
	filled := int(v*float64(width) + 0.5)
	return fmt.Sprintf("%-6s %s%s %.2f", label,
		strings.Repeat("█", filled), strings.Repeat("░", width-filled), v)
}

// renderBeatBar draws the playhead position within the current beat.
func renderBeatBar(pos float64, width int) string {
	pos = clamp01(pos)
	at := int(pos * float64(width-1))
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < width; i++ {
		if i == at {
			sb.WriteRune('▌')
		} else {
			sb.WriteRune('·')
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

// StartMonitor runs the dashboard until the user quits.
func StartMonitor(engine *kinetic.Engine, refresh time.Duration) error {
	p := tea.NewProgram(NewMonitorModel(engine, refresh), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
