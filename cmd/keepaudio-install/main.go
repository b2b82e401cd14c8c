// ABOUTME: Standalone autostart installer for keepaudio
// ABOUTME: Registers or removes the login entry without starting playback
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/keepaudio/keepaudio-go/internal/audio"
	"github.com/keepaudio/keepaudio-go/internal/autostart"
	"github.com/keepaudio/keepaudio-go/internal/config"
)

var (
	freq      = flag.Float64("freq", 1.0, "Tone frequency in Hz (0.1-2000)")
	db        = flag.Float64("db", -100.0, "Tone level in dBFS, negative (-150..-10)")
	rate      = flag.Int("rate", 48000, "Sample rate in Hz (8000-192000)")
	deviceIdx = flag.Int("device", -1, "Output device index, -1 = system default")
	channels  = flag.Int("channels", 1, "Channel count, 1 (mono) or 2 (stereo)")
	frames    = flag.Int("frames", 1024, "Frames per playback buffer (128-8192)")
	buffers   = flag.Int("buffers", 8, "Number of playback buffers (2-32)")
	encoding  = flag.String("encoding", "auto", "Sample encoding: auto, int16 or float32")
	backend   = flag.String("backend", "oto", "Audio backend: oto or portaudio")
	remove    = flag.Bool("remove", false, "Remove the autostart entry instead of installing")
)

func main() {
	flag.Parse()

	if *remove {
		path, err := autostart.Remove()
		if err != nil {
			logrus.WithField("error", err.Error()).Error("Remove failed")
			os.Exit(1)
		}
		fmt.Printf("Autostart entry removed: %s\n", path)
		return
	}

	cfg := config.Stream{
		FrequencyHz:     *freq,
		LevelDB:         *db,
		SampleRateHz:    *rate,
		Channels:        *channels,
		FramesPerBuffer: *frames,
		BufferCount:     *buffers,
		Device:          *deviceIdx,
		PollInterval:    5 * time.Millisecond,
		DrainTimeout:    time.Second,
	}
	if pref, err := audio.ParsePreference(*encoding); err == nil {
		cfg.Encoding = pref
	} else {
		logrus.WithField("error", err.Error()).Warn("Unknown encoding, using auto")
	}

	path, err := autostart.Install(autostart.CommandArgs(cfg.Clamp(), *backend))
	if err != nil {
		logrus.WithField("error", err.Error()).Error("Install failed")
		os.Exit(1)
	}
	fmt.Printf("Autostart entry installed: %s\n", path)
}
