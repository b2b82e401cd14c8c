// ABOUTME: Session API for the keepalive tone
// ABOUTME: Translates public config into the engine and backend layers
package keepalive

import (
	"fmt"
	"time"

	"github.com/keepaudio/keepaudio-go/internal/audio"
	"github.com/keepaudio/keepaudio-go/internal/config"
	"github.com/keepaudio/keepaudio-go/internal/device"
	"github.com/keepaudio/keepaudio-go/internal/engine"
)

// Config holds session parameters. Zero values fall back to the tool
// defaults; out-of-range values are clamped, never rejected.
type Config struct {
	// FrequencyHz is the tone frequency (default 1 Hz).
	FrequencyHz float64

	// LevelDB is the tone level in dBFS (default -100).
	LevelDB float64

	// SampleRateHz is the output sample rate (default 48000).
	SampleRateHz int

	// Channels is 1 or 2 (default 1).
	Channels int

	// FramesPerBuffer is the playback buffer size (default 1024).
	FramesPerBuffer int

	// BufferCount is the number of playback buffers (default 8).
	BufferCount int

	// DeviceIndex selects an output device by enumeration index;
	// nil selects the system default output.
	DeviceIndex *int

	// Encoding is "auto", "int16" or "float32" (default "auto").
	Encoding string

	// Backend is "oto" or "portaudio" (default "oto").
	Backend string

	// PollInterval paces the refill loop (default 5ms).
	PollInterval time.Duration
}

// DeviceInfo is one enumerable output device.
type DeviceInfo struct {
	Index int
	Name  string
}

// Session is one running keepalive tone. A stopped session cannot be
// restarted; start a new one.
type Session struct {
	engine *engine.Engine
}

// Start opens the device and begins streaming. Errors wrap the engine's
// startup failure, including device negotiation exhaustion.
func Start(cfg Config) (*Session, error) {
	stream, backend, err := toInternal(cfg)
	if err != nil {
		return nil, err
	}

	eng := engine.New(stream, backend)
	if err := eng.Start(); err != nil {
		return nil, err
	}
	return &Session{engine: eng}, nil
}

// Stop requests a graceful drain and close.
func (s *Session) Stop() {
	s.engine.RequestStop()
}

// Wait blocks until the session has closed and returns the run error,
// nil after a clean Stop.
func (s *Session) Wait() error {
	return s.engine.Wait()
}

// Encoding returns the negotiated sample encoding ("int16" or "float32").
func (s *Session) Encoding() string {
	return s.engine.Encoding().String()
}

// State returns the lifecycle state name.
func (s *Session) State() string {
	return s.engine.State().String()
}

// ListDevices enumerates output devices for the named backend.
func ListDevices(backendName string) ([]DeviceInfo, error) {
	backend, err := device.ForName(backendName)
	if err != nil {
		return nil, err
	}
	infos, err := backend.Devices()
	if err != nil {
		return nil, err
	}

	out := make([]DeviceInfo, 0, len(infos))
	for _, d := range infos {
		out = append(out, DeviceInfo{Index: d.Index, Name: d.Name})
	}
	return out, nil
}

// toInternal maps the public config onto the internal stream config and
// resolves the backend.
func toInternal(cfg Config) (config.Stream, device.Backend, error) {
	stream := config.Default()

	if cfg.FrequencyHz != 0 {
		stream.FrequencyHz = cfg.FrequencyHz
	}
	if cfg.LevelDB != 0 {
		stream.LevelDB = cfg.LevelDB
	}
	if cfg.SampleRateHz != 0 {
		stream.SampleRateHz = cfg.SampleRateHz
	}
	if cfg.Channels != 0 {
		stream.Channels = cfg.Channels
	}
	if cfg.FramesPerBuffer != 0 {
		stream.FramesPerBuffer = cfg.FramesPerBuffer
	}
	if cfg.BufferCount != 0 {
		stream.BufferCount = cfg.BufferCount
	}
	if cfg.DeviceIndex != nil {
		stream.Device = *cfg.DeviceIndex
	}
	if cfg.PollInterval != 0 {
		stream.PollInterval = cfg.PollInterval
	}

	pref, err := audio.ParsePreference(cfg.Encoding)
	if err != nil {
		return config.Stream{}, nil, fmt.Errorf("invalid encoding: %w", err)
	}
	stream.Encoding = pref

	backend, err := device.ForName(cfg.Backend)
	if err != nil {
		return config.Stream{}, nil, fmt.Errorf("invalid backend: %w", err)
	}
	return stream, backend, nil
}
