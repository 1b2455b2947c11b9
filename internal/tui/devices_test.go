// SPDX-License-Identifier: MIT
package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"kinetic/internal/capture"
)

func fakeDevices() []capture.Device {
	return []capture.Device{
		{
			ID:                0,
			Name:              "Built-in Microphone",
			MaxInputChannels:  2,
			DefaultSampleRate: 44100,
			LowInputLatency:   5 * time.Millisecond,
			HighInputLatency:  40 * time.Millisecond,
		},
		{
			ID:                1,
			Name:              "HDMI Out",
			MaxOutputChannels: 2,
			DefaultSampleRate: 48000,
		},
	}
}

func sizedBrowser(t *testing.T) DeviceBrowserModel {
	t.Helper()
	m := NewDeviceBrowserModel()
	resized, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	loaded, _ := resized.(DeviceBrowserModel).Update(devicesMsg{devices: fakeDevices()})
	return loaded.(DeviceBrowserModel)
}

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestDeviceBrowserListsDevices(t *testing.T) {
	t.Parallel()

	m := sizedBrowser(t)
	view := m.View()

	for _, fragment := range []string{"Built-in Microphone", "HDMI Out", "Capture Devices"} {
		if !strings.Contains(view, fragment) {
			t.Errorf("view missing %q:\n%s", fragment, view)
		}
	}
}

func TestDeviceBrowserNavigationAndDetail(t *testing.T) {
	t.Parallel()

	m := sizedBrowser(t)

	updated, _ := m.Update(keyMsg('j'))
	m = updated.(DeviceBrowserModel)
	if m.selected != 1 {
		t.Fatalf("selected = %d after down, want 1", m.selected)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(DeviceBrowserModel)
	if m.screen != deviceDetail {
		t.Fatal("enter should open the detail screen")
	}
	view := m.View()
	if !strings.Contains(view, "HDMI Out") || !strings.Contains(view, "cannot capture") {
		t.Errorf("detail view for an output device wrong:\n%s", view)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(DeviceBrowserModel)
	if m.screen != deviceList {
		t.Error("esc should return to the list")
	}

	// Up past the first entry stays put.
	updated, _ = m.Update(keyMsg('k'))
	m = updated.(DeviceBrowserModel)
	updated, _ = m.Update(keyMsg('k'))
	m = updated.(DeviceBrowserModel)
	if m.selected != 0 {
		t.Errorf("selected = %d, want 0", m.selected)
	}
}

func TestDeviceBrowserShowsConfigHint(t *testing.T) {
	t.Parallel()

	m := sizedBrowser(t)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(DeviceBrowserModel)

	if !strings.Contains(m.View(), "input_device: 0") {
		t.Errorf("capture device detail missing the config hint:\n%s", m.View())
	}
}

func TestDeviceBrowserError(t *testing.T) {
	t.Parallel()

	m := NewDeviceBrowserModel()
	loaded, _ := m.Update(errMsg{err: errors.New("portaudio unavailable")})
	m = loaded.(DeviceBrowserModel)

	if !strings.Contains(m.View(), "Error: portaudio unavailable") {
		t.Errorf("error view missing:\n%s", m.View())
	}
}

func TestDeviceBrowserEmptyList(t *testing.T) {
	t.Parallel()

	m := NewDeviceBrowserModel()
	resized, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	loaded, _ := resized.(DeviceBrowserModel).Update(devicesMsg{})
	m = loaded.(DeviceBrowserModel)

	if !strings.Contains(m.View(), "No audio devices found.") {
		t.Errorf("empty list message missing:\n%s", m.View())
	}
}
