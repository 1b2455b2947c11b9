// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"kinetic/internal/capture"
)

// browserScreen selects which device browser screen is active.
type browserScreen int

const (
	deviceList browserScreen = iota
	deviceDetail
)

// DeviceBrowserModel lists capture devices and shows per-device
// details, so an operator can pick an input_device index for the
// config file.
type DeviceBrowserModel struct {
	devices  []capture.Device
	selected int
	screen   browserScreen
	viewport viewport.Model
	ready    bool
	err      error
}

// NewDeviceBrowserModel builds the browser in its initial state.
func NewDeviceBrowserModel() DeviceBrowserModel {
	return DeviceBrowserModel{screen: deviceList}
}

type devicesMsg struct {
	devices []capture.Device
}

type errMsg struct {
	err error
}

// fetchDevices enumerates host devices in a one-shot PortAudio
// session.
func fetchDevices() tea.Msg {
	if err := capture.Initialize(); err != nil {
		return errMsg{err}
	}
	defer capture.Terminate()

	devices, err := capture.HostDevices()
	if err != nil {
		return errMsg{err}
	}
	return devicesMsg{devices}
}

func (m DeviceBrowserModel) Init() tea.Cmd {
	return fetchDevices
}

func (m DeviceBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.ready = true
			if len(m.devices) > 0 {
				m.viewport.SetContent(m.renderList())
			}
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}

	case devicesMsg:
		m.devices = msg.devices
		if m.ready {
			m.viewport.SetContent(m.renderList())
		}

	case errMsg:
		m.err = msg.err

	case tea.KeyMsg:
		if key.Matches(msg, key.NewBinding(key.WithKeys("q", "ctrl+c"))) {
			return m, tea.Quit
		}

		switch m.screen {
		case deviceList:
			switch {
			case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
				if m.selected > 0 {
					m.selected--
					m.viewport.SetContent(m.renderList())
				}

			case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
				if m.selected < len(m.devices)-1 {
					m.selected++
					m.viewport.SetContent(m.renderList())
				}

			case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
				if len(m.devices) > 0 {
					m.screen = deviceDetail
					m.viewport.SetContent(m.renderDetail())
				}
			}

		case deviceDetail:
			if key.Matches(msg, key.NewBinding(key.WithKeys("esc"))) {
				m.screen = deviceList
				m.viewport.SetContent(m.renderList())
			}
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m DeviceBrowserModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to exit.", m.err)
	}
	if !m.ready {
		return "Initializing..."
	}

	var title, help string
	if m.screen == deviceList {
		title = titleStyle.Render("Capture Devices")
		help = infoStyle.Render("↑/↓: Navigate • Enter: Details • q: Quit")
	} else {
		title = titleStyle.Render("Device Details")
		help = infoStyle.Render("Esc: Back • q: Quit")
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

func (m DeviceBrowserModel) renderList() string {
	if len(m.devices) == 0 {
		return "No audio devices found."
	}

	var sb strings.Builder
	for i, device := range m.devices {
		kind := "output"
		switch {
		case device.Input() && device.MaxOutputChannels > 0:
			kind = "input/output"
		case device.Input():
			kind = "input"
		}

		entry := fmt.Sprintf("[%d] %s (%s)\n", device.ID, device.Name, kind)
		entry += fmt.Sprintf("    in %d / out %d channels, %.0f Hz\n",
			device.MaxInputChannels, device.MaxOutputChannels, device.DefaultSampleRate)

		if i == m.selected {
			entry = highlightStyle.Render(entry)
		}
		sb.WriteString(entry)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m DeviceBrowserModel) renderDetail() string {
	device := m.devices[m.selected]

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s\n\n", highlightStyle.Render(device.Name)))
	sb.WriteString(fmt.Sprintf("  device id           %d\n", device.ID))
	sb.WriteString(fmt.Sprintf("  input channels      %d\n", device.MaxInputChannels))
	sb.WriteString(fmt.Sprintf("  output channels     %d\n", device.MaxOutputChannels))
	sb.WriteString(fmt.Sprintf("  default sample rate %.0f Hz\n", device.DefaultSampleRate))
	sb.WriteString(fmt.Sprintf("  low latency         %s\n", device.LowInputLatency))
	sb.WriteString(fmt.Sprintf("  high latency        %s\n", device.HighInputLatency))

	if device.Input() {
		sb.WriteString(fmt.Sprintf("\nUse input_device: %d in kinetic.yaml to capture here.\n", device.ID))
	} else {
		sb.WriteString("\nThis device cannot capture audio.\n")
	}
	return sb.String()
}

// StartDeviceBrowser runs the device browser until the user quits.
func StartDeviceBrowser() error {
	p := tea.NewProgram(NewDeviceBrowserModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
