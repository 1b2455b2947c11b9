// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"

	"kinetic/cmd"
	"kinetic/internal/capture"
	"kinetic/internal/config"
	"kinetic/internal/dsp"
	"kinetic/internal/frames"
	"kinetic/internal/kinetic"
	applog "kinetic/internal/log"
	"kinetic/internal/transport"
	"kinetic/internal/transport/udp"
	"kinetic/internal/tui"
	"kinetic/pkg/build"
)

// main runs in three phases:
//
// 1. Startup (cold): validate build metadata, parse arguments into a
// configuration, dispatch one-off commands.
//
// 2. Concurrent (hot): run the tick loop that feeds audio analysis into
// the engine, with the dashboard and telemetry transports alongside.
//
// 3. Shutdown (cold): stop the loop on quit or signal, flush and close
// every output.
func main() {
	if err := build.Initialize(); err != nil {
		applog.Fatalf("build metadata: %v", err)
	}

	// Cap scheduler parallelism. The capture callback and the tick
	// loop are the only hot goroutines; the rest is UI and I/O.
	runtime.GOMAXPROCS(4)

	cfg, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatalf("%v", err)
	}
	if cfg == nil {
		// Help or version, cobra already printed it.
		return
	}

	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}
	if cfg.Debug {
		applog.SetLevel(applog.LevelDebug)
	}

	switch cfg.Command {
	case config.CommandDevices:
		if err := tui.StartDeviceBrowser(); err != nil {
			applog.Fatalf("device browser: %v", err)
		}
	case config.CommandGraph:
		printGraph(os.Stdout)
	default:
		if err := run(cfg); err != nil {
			applog.Fatalf("%v", err)
		}
	}
}

// run wires the full pipeline and blocks until the dashboard quits or a
// termination signal arrives.
func run(cfg *config.Config) error {
	eng := kinetic.New(kinetic.Options{
		BPM:         cfg.Engine.BPM,
		AutoBPM:     cfg.Engine.AutoBPM,
		Seed:        cfg.Engine.Seed,
		LookaheadMs: int(cfg.Engine.LookaheadMs),
		FeedRate:    cfg.Engine.TickRate,
	})

	pool := frames.DefaultPool()
	if cfg.Engine.FramePool != "" {
		loaded, err := frames.LoadManifest(cfg.Engine.FramePool)
		if err != nil {
			return fmt.Errorf("frame manifest: %w", err)
		}
		pool = loaded
	}
	eng.LoadFramePool(pool)
	applog.Infof("session %s: %d frames in the pool", eng.SessionID(), len(pool))

	window, err := dsp.ParseWindow(cfg.Audio.FFTWindow)
	if err != nil {
		applog.Warnf("%v, falling back to hann", err)
	}

	// Input side. A configured file replays on loop, otherwise open
	// the capture device.
	var feed func(*kinetic.Engine)
	if cfg.Audio.File != "" {
		feeder, err := capture.NewFileFeeder(cfg.Audio.File, cfg.Audio.FramesPerBuffer, cfg.Engine.TickRate, window)
		if err != nil {
			return fmt.Errorf("open %s: %w", cfg.Audio.File, err)
		}
		applog.Infof("replaying %s (%s) on loop", cfg.Audio.File, feeder.Duration().Round(time.Millisecond))
		feed = func(e *kinetic.Engine) {
			b, ok := feeder.Next()
			if !ok {
				feeder.Rewind()
				if b, ok = feeder.Next(); !ok {
					return
				}
			}
			e.FeedAudio(b.Triple())
		}
	} else {
		if err := capture.Initialize(); err != nil {
			return fmt.Errorf("portaudio: %w", err)
		}
		defer capture.Terminate()

		stream, err := capture.NewStream(capture.StreamOptions{
			DeviceID:        cfg.Audio.InputDevice,
			SampleRate:      cfg.Audio.SampleRate,
			FramesPerBuffer: cfg.Audio.FramesPerBuffer,
			Channels:        cfg.Audio.InputChannels,
			LowLatency:      cfg.Audio.LowLatency,
			Window:          window,
			GateThreshold:   cfg.Audio.GateThreshold,
		})
		if err != nil {
			return fmt.Errorf("open input stream: %w", err)
		}
		if err := stream.Start(); err != nil {
			return fmt.Errorf("start input stream: %w", err)
		}
		defer stream.Stop()

		bands := stream.Bands()
		feed = func(e *kinetic.Engine) {
			// Drain whatever the callback produced since last tick.
			for {
				select {
				case b := <-bands:
					e.FeedAudio(b.Triple())
				default:
					return
				}
			}
		}
	}

	// Telemetry outputs.
	var outs transport.Fanout
	if cfg.Transport.WSEnabled {
		ws, err := transport.NewWebSocketTransport(cfg.Transport.WSAddress)
		if err != nil {
			return fmt.Errorf("websocket listener: %w", err)
		}
		applog.Infof("telemetry at ws://%s/ws", ws.Addr())
		outs = append(outs, ws)
	}
	if cfg.Debug {
		outs = append(outs, transport.NewLogTransport())
	}
	defer outs.Close()

	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			return fmt.Errorf("udp sender: %w", err)
		}
		defer sender.Close()

		pub, err := udp.NewPublisher(cfg.Transport.UDPSendInterval, sender, eng.Telemetry)
		if err != nil {
			return err
		}
		pub.Start()
		defer pub.Close()
		applog.Infof("udp telemetry to %s every %s", cfg.Transport.UDPTargetAddress, cfg.Transport.UDPSendInterval)
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		tickLoop(eng, cfg.Engine.TickRate, feed, outs, done)
	}()

	// Foreground: dashboard when enabled, otherwise wait for a signal.
	var uiErr error
	if cfg.Monitor.Enabled {
		uiErr = tui.StartMonitor(eng, time.Duration(cfg.Monitor.RefreshMs)*time.Millisecond)
	} else {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		applog.Info("running headless, ctrl+c to stop")
		<-sig
	}

	close(done)
	wg.Wait()
	return uiErr
}

// tickLoop drives the engine at the configured rate and pushes a
// telemetry snapshot to the fanout after every update.
func tickLoop(eng *kinetic.Engine, tickRate int, feed func(*kinetic.Engine), outs transport.Fanout, done <-chan struct{}) {
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now

			feed(eng)
			eng.Update(dt)

			if len(outs) > 0 {
				if err := outs.Send(eng.Telemetry()); err != nil {
					applog.Debugf("telemetry send: %v", err)
				}
			}
		}
	}
}

// printGraph writes the animation node table, the reference for hand
// written frame manifests and ForceState ids.
func printGraph(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NODE\tENTRY\tEXIT\tDWELL MS\tSTYLE\tSUCCESSORS")
	for _, n := range kinetic.DefaultGraph().Nodes() {
		succ := make([]string, len(n.Successors))
		for i, id := range n.Successors {
			succ[i] = string(id)
		}
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%d\t%s\t%s\n",
			n.ID, n.EnergyRequirement, n.ExitThreshold, n.MinDwellMs, n.Style, strings.Join(succ, " "))
	}
	tw.Flush()
}
