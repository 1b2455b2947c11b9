// SPDX-License-Identifier: MIT

// Package config loads the engine configuration from YAML with
// environment overrides. Load order: built-in defaults, then file,
// then KINETIC_* environment variables, then validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	applog "kinetic/internal/log"
	"kinetic/pkg/bitint"
)

// Boundaries for validated fields.
const (
	MinDeviceID     = -1 // -1 selects the system default device
	MinSampleRate   = 8000
	MaxSampleRate   = 192000
	MaxBufferFrames = 8192
	MaxTickRate     = 240
)

// Commands the CLI can select. An empty Command means the invocation
// was handled inside argument parsing (help, version).
const (
	CommandRun     = "run"
	CommandDevices = "devices"
	CommandGraph   = "graph"
)

// Config is the full application configuration.
type Config struct {
	Debug    bool   `yaml:"debug"`
	LogLevel string `yaml:"log_level"`

	Engine    EngineConfig    `yaml:"engine"`
	Audio     AudioConfig     `yaml:"audio"`
	Transport TransportConfig `yaml:"transport"`
	Monitor   MonitorConfig   `yaml:"monitor"`

	// Command is set during argument parsing, never from the file.
	Command string `yaml:"-"`
}

// EngineConfig drives the choreography core.
type EngineConfig struct {
	// BPM is the manual tempo. With AutoBPM set it is only the
	// starting tempo until detection becomes confident.
	BPM     float64 `yaml:"bpm"`
	AutoBPM bool    `yaml:"auto_bpm"`

	// Seed fixes the random source; 0 seeds from the clock.
	Seed int64 `yaml:"seed"`

	// TickRate is the update frequency in Hz.
	TickRate int `yaml:"tick_rate"`

	// FramePool is the path to the frame manifest YAML.
	FramePool string `yaml:"frame_pool"`

	// LookaheadMs sizes the prediction horizon.
	LookaheadMs int64 `yaml:"lookahead_ms"`
}

// AudioConfig selects and shapes the input feed.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"` // -1 for system default
	SampleRate      float64 `yaml:"sample_rate"`
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // power of two, also the FFT size
	InputChannels   int     `yaml:"input_channels"`
	LowLatency      bool    `yaml:"low_latency"`
	FFTWindow       string  `yaml:"fft_window"`
	GateThreshold   float64 `yaml:"gate_threshold"`

	// File, when set, replays a WAV file instead of capturing live.
	File string `yaml:"file,omitempty"`
}

// TransportConfig wires the telemetry outputs.
type TransportConfig struct {
	WSEnabled        bool          `yaml:"ws_enabled"`
	WSAddress        string        `yaml:"ws_address"`
	UDPEnabled       bool          `yaml:"udp_enabled"`
	UDPTargetAddress string        `yaml:"udp_target_address"`
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`
}

// MonitorConfig controls the terminal dashboard.
type MonitorConfig struct {
	Enabled   bool `yaml:"enabled"`
	RefreshMs int  `yaml:"refresh_ms"`
}

// NewConfig returns the built-in defaults.
func NewConfig() *Config {
	return &Config{
		Debug:    false,
		LogLevel: "info",
		Engine: EngineConfig{
			BPM:         120,
			AutoBPM:     true,
			Seed:        0,
			TickRate:    60,
			LookaheadMs: 100,
		},
		Audio: AudioConfig{
			InputDevice:     MinDeviceID,
			SampleRate:      44100,
			FramesPerBuffer: 1024,
			InputChannels:   1,
			LowLatency:      false,
			FFTWindow:       "hann",
			GateThreshold:   0.02,
		},
		Transport: TransportConfig{
			WSEnabled:        false,
			WSAddress:        ":8090",
			UDPEnabled:       false,
			UDPTargetAddress: "127.0.0.1:9090",
			UDPSendInterval:  16 * time.Millisecond,
		},
		Monitor: MonitorConfig{
			Enabled:   true,
			RefreshMs: 33,
		},
	}
}

// LoadConfig loads configuration from the YAML file at path. An empty
// path searches the default candidates and falls back to built-in
// defaults when none exist. Environment overrides apply after the
// file, validation last.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		candidates := []string{"kinetic.yaml", "config.yaml"}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.Audio.InputDevice < MinDeviceID {
		return fmt.Errorf("audio.input_device %d is below %d", c.Audio.InputDevice, MinDeviceID)
	}
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("audio.sample_rate %v outside [%d, %d]", c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.Audio.FramesPerBuffer > MaxBufferFrames || !bitint.IsPowerOfTwo(c.Audio.FramesPerBuffer) {
		return fmt.Errorf("audio.frames_per_buffer %d must be a power of two up to %d", c.Audio.FramesPerBuffer, MaxBufferFrames)
	}
	if c.Audio.InputChannels < 1 {
		return fmt.Errorf("audio.input_channels %d must be at least 1", c.Audio.InputChannels)
	}
	if c.Audio.GateThreshold < 0 || c.Audio.GateThreshold > 1 {
		return fmt.Errorf("audio.gate_threshold %v outside [0, 1]", c.Audio.GateThreshold)
	}
	if c.Engine.BPM < 0 {
		return fmt.Errorf("engine.bpm %v cannot be negative", c.Engine.BPM)
	}
	if c.Engine.TickRate < 1 || c.Engine.TickRate > MaxTickRate {
		return fmt.Errorf("engine.tick_rate %d outside [1, %d]", c.Engine.TickRate, MaxTickRate)
	}
	if c.Transport.WSEnabled && !strings.Contains(c.Transport.WSAddress, ":") {
		return fmt.Errorf("transport.ws_address %q needs a port", c.Transport.WSAddress)
	}
	if c.Transport.UDPEnabled {
		if !strings.Contains(c.Transport.UDPTargetAddress, ":") {
			return fmt.Errorf("transport.udp_target_address %q needs a port", c.Transport.UDPTargetAddress)
		}
		if c.Transport.UDPSendInterval <= 0 {
			return fmt.Errorf("transport.udp_send_interval must be positive when UDP is enabled")
		}
	}
	if c.Monitor.RefreshMs < 1 {
		return fmt.Errorf("monitor.refresh_ms %d must be at least 1", c.Monitor.RefreshMs)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("KINETIC_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Debug = bVal
			applog.Debugf("config: debug overridden from env: %v", bVal)
		}
	}
	if val, ok := os.LookupEnv("KINETIC_LOG_LEVEL"); ok {
		c.LogLevel = val
	}
	if val, ok := os.LookupEnv("KINETIC_BPM"); ok {
		if fVal, err := strconv.ParseFloat(val, 64); err == nil {
			c.Engine.BPM = fVal
			applog.Debugf("config: engine.bpm overridden from env: %v", fVal)
		}
	}
	if val, ok := os.LookupEnv("KINETIC_AUTO_BPM"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Engine.AutoBPM = bVal
		}
	}
	if val, ok := os.LookupEnv("KINETIC_WS_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Transport.WSEnabled = bVal
		}
	}
	if val, ok := os.LookupEnv("KINETIC_WS_ADDRESS"); ok {
		c.Transport.WSAddress = val
	}
	if val, ok := os.LookupEnv("KINETIC_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Transport.UDPEnabled = bVal
		}
	}
	if val, ok := os.LookupEnv("KINETIC_UDP_TARGET_ADDRESS"); ok {
		c.Transport.UDPTargetAddress = val
	}
	if val, ok := os.LookupEnv("KINETIC_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			c.Transport.UDPSendInterval = dur
		}
	}
}
