// ABOUTME: Stream configuration with defaults and range clamping
// ABOUTME: Out-of-range values are corrected and logged, never fatal
package config

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/keepaudio/keepaudio-go/internal/audio"
)

// DefaultDevice selects the system default output instead of an index.
const DefaultDevice = -1

// Stream holds the parameters of one keepalive run. It is immutable once
// the engine starts; call Clamp before handing it to the core.
type Stream struct {
	// FrequencyHz is the tone frequency (0.1-2000 Hz).
	FrequencyHz float64
	// LevelDB is the tone level in dBFS (-150..-10).
	LevelDB float64
	// SampleRateHz is the output sample rate (8000-192000).
	SampleRateHz int
	// Channels is 1 (mono) or 2 (stereo).
	Channels int
	// FramesPerBuffer is the size of one playback buffer (128-8192).
	FramesPerBuffer int
	// BufferCount is the fixed number of playback buffers (2-32).
	BufferCount int
	// Device is an output device index, or DefaultDevice.
	Device int
	// Encoding is the sample encoding preference.
	Encoding audio.Preference
	// PollInterval paces the refill loop (1ms-100ms).
	PollInterval time.Duration
	// DrainTimeout bounds the shutdown drain (100ms-10s).
	DrainTimeout time.Duration
}

// Default returns the configuration the original tool ships with:
// a 1 Hz tone at -100 dBFS, mono 48 kHz, 8 buffers of 1024 frames.
func Default() Stream {
	return Stream{
		FrequencyHz:     1.0,
		LevelDB:         -100.0,
		SampleRateHz:    48000,
		Channels:        1,
		FramesPerBuffer: 1024,
		BufferCount:     8,
		Device:          DefaultDevice,
		Encoding:        audio.PreferAuto,
		PollInterval:    5 * time.Millisecond,
		DrainTimeout:    time.Second,
	}
}

// Clamp returns a copy with every field forced into its defined range.
// Each correction is logged at warn level.
func (s Stream) Clamp() Stream {
	s.FrequencyHz = clampFloat("freq", s.FrequencyHz, 0.1, 2000)
	s.LevelDB = clampFloat("db", s.LevelDB, -150, -10)
	s.SampleRateHz = clampInt("rate", s.SampleRateHz, 8000, 192000)
	if s.Channels != 1 && s.Channels != 2 {
		logClamp("channels", s.Channels, 1)
		s.Channels = 1
	}
	s.FramesPerBuffer = clampInt("frames", s.FramesPerBuffer, 128, 8192)
	s.BufferCount = clampInt("buffers", s.BufferCount, 2, 32)
	if s.Device < DefaultDevice {
		logClamp("device", s.Device, DefaultDevice)
		s.Device = DefaultDevice
	}
	s.PollInterval = clampDuration("poll-interval", s.PollInterval, time.Millisecond, 100*time.Millisecond)
	s.DrainTimeout = clampDuration("drain-timeout", s.DrainTimeout, 100*time.Millisecond, 10*time.Second)
	return s
}

func clampFloat(name string, v, lo, hi float64) float64 {
	if v < lo {
		logClamp(name, v, lo)
		return lo
	}
	if v > hi {
		logClamp(name, v, hi)
		return hi
	}
	return v
}

func clampInt(name string, v, lo, hi int) int {
	if v < lo {
		logClamp(name, v, lo)
		return lo
	}
	if v > hi {
		logClamp(name, v, hi)
		return hi
	}
	return v
}

func clampDuration(name string, v, lo, hi time.Duration) time.Duration {
	if v < lo {
		logClamp(name, v, lo)
		return lo
	}
	if v > hi {
		logClamp(name, v, hi)
		return hi
	}
	return v
}

func logClamp(name string, got, corrected any) {
	logrus.WithFields(logrus.Fields{
		"option":    name,
		"value":     got,
		"corrected": corrected,
	}).Warn("Option out of range, clamped")
}
