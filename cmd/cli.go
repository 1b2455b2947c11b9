// SPDX-License-Identifier: MIT

// Package cmd parses the command line into a validated configuration.
// The config file loads first, KINETIC_* environment variables second,
// explicit flags last. Only flags the user actually set override the
// file, so a sparse command line never stomps a tuned config.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"kinetic/internal/config"
	"kinetic/pkg/bitint"
	"kinetic/pkg/build"
)

// ParseArgs builds the application configuration from the config file
// and command line. The returned Config names the selected command; a
// nil Config with a nil error means cobra already handled the
// invocation (help, version) and the caller should exit.
func ParseArgs() (*config.Config, error) {
	return parseArgs(os.Args[1:])
}

func parseArgs(args []string) (*config.Config, error) {
	buildInfo := build.GetBuildFlags()

	var (
		cfg     *config.Config
		cfgPath string
	)

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			if err := applyFlagOverrides(cmd, loaded); err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Command = config.CommandRun
			return nil
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "devices",
		Short: "Browse available audio input devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Command = config.CommandDevices
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "graph",
		Short: "Print the animation graph node table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Command = config.CommandGraph
			return nil
		},
	})

	defaults := config.NewConfig()

	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "f", "",
		"Config file path. Default searches kinetic.yaml, then config.yaml.")

	// Audio input
	rootCmd.PersistentFlags().IntP("device", "d", defaults.Audio.InputDevice,
		"Input device ID. Use the 'devices' command to browse. -1 is the system default.")
	rootCmd.PersistentFlags().IntP("channels", "c", defaults.Audio.InputChannels,
		"Input channels to open (analysis always reads the first)")
	rootCmd.PersistentFlags().Float64P("sample-rate", "s", defaults.Audio.SampleRate,
		"Sample rate, measured in Hertz (Hz)")
	rootCmd.PersistentFlags().IntP("frames-per-buffer", "b", defaults.Audio.FramesPerBuffer,
		"Frames per buffer and FFT size. Rounded up to a power of two.")
	rootCmd.PersistentFlags().BoolP("low-latency", "l", defaults.Audio.LowLatency,
		"Request the device's low latency profile")
	rootCmd.PersistentFlags().StringP("input", "i", "",
		"Analyze a WAV file on loop instead of capturing live audio")

	// Engine
	rootCmd.PersistentFlags().Float64("bpm", defaults.Engine.BPM,
		"Playback tempo in beats per minute")
	rootCmd.PersistentFlags().Bool("auto-bpm", defaults.Engine.AutoBPM,
		"Adopt the detected tempo once the estimate is confident")
	rootCmd.PersistentFlags().Int64("seed", defaults.Engine.Seed,
		"Fix the frame selection randomness. 0 seeds from the clock.")

	// Telemetry outputs
	rootCmd.PersistentFlags().Bool("ws", defaults.Transport.WSEnabled,
		"Serve telemetry to websocket clients")
	rootCmd.PersistentFlags().Bool("udp", defaults.Transport.UDPEnabled,
		"Publish binary telemetry packets over UDP")

	// Presentation
	rootCmd.PersistentFlags().Bool("headless", !defaults.Monitor.Enabled,
		"Run without the terminal dashboard")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false,
		"Debug logging")

	// SetArgs(nil) would make cobra fall back to os.Args.
	if args == nil {
		args = []string{}
	}
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyFlagOverrides copies explicitly-set flags over the loaded
// configuration and re-validates the result.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("device") {
		cfg.Audio.InputDevice, _ = flags.GetInt("device")
	}
	if flags.Changed("channels") {
		cfg.Audio.InputChannels, _ = flags.GetInt("channels")
	}
	if flags.Changed("sample-rate") {
		cfg.Audio.SampleRate, _ = flags.GetFloat64("sample-rate")
	}
	if flags.Changed("frames-per-buffer") {
		n, _ := flags.GetInt("frames-per-buffer")
		cfg.Audio.FramesPerBuffer = bitint.NextPowerOfTwo(n)
	}
	if flags.Changed("low-latency") {
		cfg.Audio.LowLatency, _ = flags.GetBool("low-latency")
	}
	if flags.Changed("input") {
		cfg.Audio.File, _ = flags.GetString("input")
	}

	if flags.Changed("bpm") {
		cfg.Engine.BPM, _ = flags.GetFloat64("bpm")
	}
	if flags.Changed("auto-bpm") {
		cfg.Engine.AutoBPM, _ = flags.GetBool("auto-bpm")
	}
	if flags.Changed("seed") {
		cfg.Engine.Seed, _ = flags.GetInt64("seed")
	}

	if flags.Changed("ws") {
		cfg.Transport.WSEnabled, _ = flags.GetBool("ws")
	}
	if flags.Changed("udp") {
		cfg.Transport.UDPEnabled, _ = flags.GetBool("udp")
	}

	if flags.Changed("headless") {
		headless, _ := flags.GetBool("headless")
		cfg.Monitor.Enabled = !headless
	}
	if flags.Changed("verbose") {
		if verbose, _ := flags.GetBool("verbose"); verbose {
			cfg.Debug = true
			cfg.LogLevel = "debug"
		}
	}

	return cfg.Validate()
}
