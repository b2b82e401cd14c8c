// ABOUTME: Entry point for the keepaudio tone keepalive tool
// ABOUTME: Parses CLI flags, handles signals and runs a keepalive session
package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/keepaudio/keepaudio-go/internal/audio"
	"github.com/keepaudio/keepaudio-go/internal/autostart"
	"github.com/keepaudio/keepaudio-go/internal/config"
	"github.com/keepaudio/keepaudio-go/internal/version"
	"github.com/keepaudio/keepaudio-go/pkg/keepalive"
)

var (
	freq         = flag.Float64("freq", 1.0, "Tone frequency in Hz (0.1-2000)")
	db           = flag.Float64("db", -100.0, "Tone level in dBFS, negative (-150..-10)")
	rate         = flag.Int("rate", 48000, "Sample rate in Hz (8000-192000)")
	deviceIdx    = flag.Int("device", -1, "Output device index, -1 = system default")
	channels     = flag.Int("channels", 1, "Channel count, 1 (mono) or 2 (stereo)")
	frames       = flag.Int("frames", 1024, "Frames per playback buffer (128-8192)")
	buffers      = flag.Int("buffers", 8, "Number of playback buffers (2-32)")
	encoding     = flag.String("encoding", "auto", "Sample encoding: auto, int16 or float32")
	backend      = flag.String("backend", "oto", "Audio backend: oto or portaudio")
	pollInterval = flag.Duration("poll-interval", 5*time.Millisecond, "Refill loop poll interval")
	listDevices  = flag.Bool("list-devices", false, "List output devices and exit")
	exitWithin   = flag.String("exit-within", "", "Stop after a random duration up to this value (blind testing)")
	autostartCmd = flag.String("autostart", "", "Manage login autostart: install or remove")
	logFile      = flag.String("log-file", "", "Also write logs to this file")
	verbose      = flag.Bool("verbose", false, "Enable debug logging")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	setupLogging()

	if *listDevices {
		if err := printDevices(*backend); err != nil {
			logrus.WithField("error", err.Error()).Error("Device enumeration failed")
			os.Exit(1)
		}
		return
	}

	if *autostartCmd != "" {
		if err := runAutostart(*autostartCmd); err != nil {
			logrus.WithField("error", err.Error()).Error("Autostart command failed")
			os.Exit(1)
		}
		return
	}

	session, err := keepalive.Start(keepalive.Config{
		FrequencyHz:     *freq,
		LevelDB:         *db,
		SampleRateHz:    *rate,
		Channels:        *channels,
		FramesPerBuffer: *frames,
		BufferCount:     *buffers,
		DeviceIndex:     selectedDevice(),
		Encoding:        *encoding,
		Backend:         *backend,
		PollInterval:    *pollInterval,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Tip: run with --list-devices to see available outputs.")
		os.Exit(1)
	}

	fmt.Printf("Playing %.2f Hz at %.1f dBFS, %d Hz, %s, encoding=%s, device=%s\n",
		*freq, *db, *rate,
		channelWord(*channels),
		session.Encoding(),
		deviceWord(*deviceIdx))
	fmt.Println("Press Ctrl+C to stop...")

	// Interrupt, termination and session logoff all translate to the same
	// cooperative stop request.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		sig := <-sigChan
		logrus.WithField("signal", sig.String()).Info("Shutdown signal received")
		session.Stop()
	}()

	if timer := blindExitTimer(); timer != nil {
		go func() {
			<-timer.C
			logrus.Info("Blind-test exit timer elapsed")
			session.Stop()
		}()
	}

	if err := session.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Stopped.")
}

func usage() {
	fmt.Fprintf(os.Stderr, `%s - keep an audio output device active by playing a very low-level tone

Usage:
  %s [--freq F_HZ] [--db NEG_DBFS] [--rate SR] [--device N]
            [--buffers K] [--frames PER_BUFFER] [--channels 1|2]
            [--encoding auto|int16|float32] [--backend oto|portaudio]
  %s --list-devices
  %s --autostart install|remove

Defaults: --freq 1 --db -100 --rate 48000 --channels 1 --buffers 8 --frames 1024
Notes:
  * If your device still powers down, try a slightly higher level (e.g., --db -65).
  * Use --list-devices to see indices, then --device N to pick one.
  * Press Ctrl+C to stop.

Options:
`, version.Product, version.Product, version.Product, version.Product)
	flag.PrintDefaults()
}

func setupLogging() {
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if *logFile == "" {
		return
	}
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		logrus.WithField("error", err.Error()).Warn("Cannot open log file, logging to stderr only")
		return
	}
	logrus.SetOutput(io.MultiWriter(os.Stderr, f))
}

func printDevices(backendName string) error {
	devices, err := keepalive.ListDevices(backendName)
	if err != nil {
		return err
	}

	fmt.Println("Playback devices:")
	for _, d := range devices {
		fmt.Printf("  [%d] %s\n", d.Index, d.Name)
	}
	if len(devices) == 0 {
		fmt.Println("  (No output devices found)")
	}
	return nil
}

func runAutostart(cmd string) error {
	switch cmd {
	case "install":
		cfg := streamConfigFromFlags()
		path, err := autostart.Install(autostart.CommandArgs(cfg, *backend))
		if err != nil {
			return err
		}
		fmt.Printf("Autostart entry installed: %s\n", path)
		return nil
	case "remove":
		path, err := autostart.Remove()
		if err != nil {
			return err
		}
		fmt.Printf("Autostart entry removed: %s\n", path)
		return nil
	default:
		return fmt.Errorf("unknown autostart command %q (use install or remove)", cmd)
	}
}

// streamConfigFromFlags builds the clamped stream config persisted by
// autostart install.
func streamConfigFromFlags() config.Stream {
	cfg := config.Default()
	cfg.FrequencyHz = *freq
	cfg.LevelDB = *db
	cfg.SampleRateHz = *rate
	cfg.Channels = *channels
	cfg.FramesPerBuffer = *frames
	cfg.BufferCount = *buffers
	cfg.Device = *deviceIdx
	if pref, err := audio.ParsePreference(*encoding); err == nil {
		cfg.Encoding = pref
	}
	return cfg.Clamp()
}

func selectedDevice() *int {
	if *deviceIdx < 0 {
		return nil
	}
	return deviceIdx
}

// blindExitTimer arms a timer for a uniform random duration in (0, max]
// when --exit-within is given. Running the tool with and without a bound
// lets a listener A/B the keepalive effect without knowing when playback
// ends.
func blindExitTimer() *time.Timer {
	if *exitWithin == "" {
		return nil
	}
	limit, err := time.ParseDuration(*exitWithin)
	if err != nil || limit <= 0 {
		logrus.WithField("value", *exitWithin).Warn("Ignoring invalid --exit-within duration")
		return nil
	}
	d := rand.N(limit) + time.Nanosecond
	logrus.WithField("deadline", time.Now().Add(d).Format(time.RFC3339)).Debug("Blind-test exit armed")
	return time.NewTimer(d)
}

func channelWord(n int) string {
	if n == 2 {
		return "stereo"
	}
	return "mono"
}

func deviceWord(idx int) string {
	if idx < 0 {
		return "default"
	}
	return fmt.Sprintf("index %d", idx)
}
